package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"captioner/internal/domain"
)

const (
	sessionName     = "captioner-session"
	sessionEmailKey = "user_email"
	defaultMaxAge   = 86400 * 7
)

const identityKey contextKey = "identity"

type SessionOptions struct {
	Secret     string
	EncryptKey string
	Secure     bool
	MaxAge     int
}

// SessionGuard reads and writes the signed-in identity held in an encrypted
// cookie session.
type SessionGuard struct {
	store sessions.Store
}

func NewSessionGuard(opts SessionOptions) *SessionGuard {
	keys := [][]byte{[]byte(opts.Secret)}
	if key := strings.TrimSpace(opts.EncryptKey); key != "" {
		keys = append(keys, []byte(key))
	}
	store := sessions.NewCookieStore(keys...)
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionGuard{store: store}
}

// NewSessionGuardWithStore is used when the caller owns the session store.
func NewSessionGuardWithStore(store sessions.Store) *SessionGuard {
	return &SessionGuard{store: store}
}

// Identify returns the signed-in identity or domain.ErrUnauthorized.
func (g *SessionGuard) Identify(r *http.Request) (domain.Identity, error) {
	if g == nil || g.store == nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	session, err := g.store.Get(r, sessionName)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	email, ok := session.Values[sessionEmailKey].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return domain.Identity{Email: email}, nil
}

func (g *SessionGuard) SignIn(w http.ResponseWriter, r *http.Request, identity domain.Identity) error {
	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return errors.New("session: email is required")
	}
	// A stale or undecodable cookie still yields a fresh session.
	session, _ := g.store.Get(r, sessionName)
	session.Values[sessionEmailKey] = email
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (g *SessionGuard) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := g.store.Get(r, sessionName)
	delete(session.Values, sessionEmailKey)
	if session.Options == nil {
		session.Options = &sessions.Options{Path: "/"}
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// RequireSession rejects requests without a signed-in identity before any
// downstream handler runs.
func (g *SessionGuard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Identify(r)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

func ContextWithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
