package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"captioner/internal/captions"
	"captioner/internal/domain"
	"captioner/internal/infra"
	"captioner/internal/infra/google"
	"captioner/internal/middleware"
)

// CaptionGenerator runs the caption pipeline for one validated request.
type CaptionGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*captions.Generation, error)
}

type App struct {
	Logger      *infra.Logger
	Captions    CaptionGenerator
	Sessions    *middleware.SessionGuard
	Usage       domain.UsageRepository
	MaxCaptions int
	Provider    string

	OAuth         *oauth2.Config
	Verifier      *google.Verifier
	SecureCookies bool
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// flush pushes a written response to the client before follow-up work.
func (a *App) flush(w http.ResponseWriter) {
	if err := http.NewResponseController(w).Flush(); err != nil {
		a.logger().Debug().Err(err).Msg("flush response failed")
	}
}

func (a *App) error(w http.ResponseWriter, status int, msg string) {
	a.json(w, status, map[string]string{"error": msg})
}

func (a *App) logger() *infra.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
