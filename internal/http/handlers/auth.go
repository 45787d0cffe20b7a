package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"captioner/internal/domain"
	"captioner/internal/infra/google"
)

const (
	stateCookieName = "oauth_state"
	stateCookiePath = "/auth/callback"
	exchangeTimeout = 10 * time.Second

	usageWindow       = 24 * time.Hour
	usageQueryTimeout = 2 * time.Second
)

type meResponse struct {
	Email string        `json:"email"`
	Usage *usageSummary `json:"usage,omitempty"`
}

type usageSummary struct {
	WindowHours int `json:"windowHours"`
	Generations int `json:"generations"`
	Captions    int `json:"captions"`
}

func (a *App) oauthEnabled() bool {
	return a.OAuth != nil && a.Verifier != nil && a.Sessions != nil
}

// Login redirects to Google's consent page with a CSRF state cookie.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if !a.oauthEnabled() {
		a.error(w, http.StatusServiceUnavailable, "Sign-in is not configured")
		return
	}
	state, err := generateState()
	if err != nil {
		a.logger().Error().Err(err).Msg("generate oauth state failed")
		a.error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		MaxAge:   600,
		HttpOnly: true,
		Secure:   a.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     stateCookiePath,
	})
	http.Redirect(w, r, a.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback exchanges the authorization code, validates the ID token and
// stores the email in the session.
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	if !a.oauthEnabled() {
		a.error(w, http.StatusServiceUnavailable, "Sign-in is not configured")
		return
	}
	queryState := r.URL.Query().Get("state")
	cookieState, err := r.Cookie(stateCookieName)
	if err != nil || queryState == "" || cookieState.Value != queryState {
		a.logger().Warn().Err(err).Msg("oauth state mismatch")
		a.error(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.SecureCookies,
		Path:     stateCookiePath,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		a.error(w, http.StatusBadRequest, "Code not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()
	token, err := a.OAuth.Exchange(ctx, code)
	if err != nil {
		a.logger().Error().Err(err).Msg("oauth token exchange failed")
		a.error(w, http.StatusBadGateway, "Failed to exchange token")
		return
	}
	rawIDToken, _ := token.Extra("id_token").(string)
	claims, err := a.Verifier.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, google.ErrEmailNotAllowed) {
			status = http.StatusForbidden
		}
		a.logger().Warn().Err(err).Msg("google sign-in rejected")
		a.error(w, status, msgUnauthorized)
		return
	}
	if err := a.Sessions.SignIn(w, r, domain.Identity{Email: claims.Email}); err != nil {
		a.logger().Error().Err(err).Msg("save session failed")
		a.error(w, http.StatusInternalServerError, "Failed to save session")
		return
	}
	a.logger().Info().Str("email", claims.Email).Msg("sign-in succeeded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if a.Sessions != nil {
		if err := a.Sessions.SignOut(w, r); err != nil {
			a.logger().Error().Err(err).Msg("clear session failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := a.Sessions.Identify(r)
	if err != nil {
		a.error(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	a.json(w, http.StatusOK, meResponse{Email: identity.Email, Usage: a.recentUsage(r.Context(), identity.Email)})
}

// recentUsage returns nil when the usage log is not configured or fails.
func (a *App) recentUsage(ctx context.Context, email string) *usageSummary {
	if a.Usage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, usageQueryTimeout)
	defer cancel()
	summary, err := a.Usage.Summary(ctx, email, time.Now().Add(-usageWindow))
	if err != nil {
		if !errors.Is(err, domain.ErrUsageUnavailable) {
			a.logger().Warn().Err(err).Msg("usage summary failed")
		}
		return nil
	}
	return &usageSummary{
		WindowHours: int(usageWindow / time.Hour),
		Generations: summary.Generations,
		Captions:    summary.Captions,
	}
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.New("failed to generate state")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
