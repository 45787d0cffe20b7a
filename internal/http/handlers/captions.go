package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"captioner/internal/captions"
	"captioner/internal/domain"
	"captioner/internal/middleware"
)

const (
	msgUnauthorized      = "Unauthorized"
	msgMissingParameters = "Missing parameters"
	msgGenerationFailed  = "Failed to generate captions"
	msgTimeout           = "Caption generation timed out"

	maxRequestBody     = 64 << 10
	usageRecordTimeout = 3 * time.Second
)

type generateRequest struct {
	Industry *string `json:"industry"`
	Tone     *string `json:"tone"`
	Length   *int    `json:"length"`
}

func (a *App) GenerateCaptions(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var body generateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, msgMissingParameters)
		return
	}
	if body.Industry == nil || body.Tone == nil || body.Length == nil {
		a.error(w, http.StatusBadRequest, msgMissingParameters)
		return
	}
	req, err := domain.NewGenerationRequest(*body.Industry, *body.Tone, *body.Length, a.MaxCaptions)
	if err != nil {
		a.error(w, http.StatusBadRequest, msgMissingParameters)
		return
	}

	start := time.Now()
	event := domain.UsageEvent{
		Email:     identity.Email,
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Count:     req.Count,
		Provider:  a.Provider,
	}
	gen, err := a.Captions.Generate(r.Context(), req)
	event.Latency = time.Since(start)
	if err != nil {
		status, msg, outcome := classifyGenerationError(err)
		event.Outcome = outcome
		a.logger().Warn().
			Err(err).
			Str("request_id", event.RequestID).
			Int("status", status).
			Msg("caption generation failed")
		a.error(w, status, msg)
		a.flush(w)
		a.recordUsage(r.Context(), event)
		return
	}

	payload := captions.Assemble(gen.Captions, gen.Image, req.Topic)
	event.Outcome = domain.OutcomeSuccess
	event.Captions = len(gen.Captions)
	event.ImageFound = gen.Image != nil
	a.json(w, http.StatusOK, payload)
	a.flush(w)
	a.recordUsage(r.Context(), event)
}

func classifyGenerationError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, msgMissingParameters, domain.OutcomeError
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, msgTimeout, domain.OutcomeTimeout
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, msgGenerationFailed, domain.OutcomeGenerationFailed
	default:
		return http.StatusInternalServerError, msgGenerationFailed, domain.OutcomeError
	}
}

// recordUsage runs after the response is flushed. It outlives client
// disconnects but never fails the request.
func (a *App) recordUsage(ctx context.Context, event domain.UsageEvent) {
	if a.Usage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageRecordTimeout)
	defer cancel()
	if err := a.Usage.Record(ctx, event); err != nil {
		a.logger().Error().Err(err).Str("request_id", event.RequestID).Msg("record usage failed")
	}
}
