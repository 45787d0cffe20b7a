package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

var (
	ErrEmailNotVerified = errors.New("google: email not verified")
	ErrEmailNotAllowed  = errors.New("google: email not allowed")
)

// ValidateFunc matches idtoken.Validate so tests can stand in for Google.
type ValidateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type Options struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	AllowedEmails  []string
	AllowedDomains []string
	Validate       ValidateFunc
}

// Claims holds the fields read from a validated Google ID token.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// Verifier validates Google ID tokens and applies the sign-in allowlist.
type Verifier struct {
	clientID       string
	validate       ValidateFunc
	allowedEmails  map[string]struct{}
	allowedDomains map[string]struct{}
}

func NewVerifier(opts Options) *Verifier {
	validate := opts.Validate
	if validate == nil {
		validate = idtoken.Validate
	}
	return &Verifier{
		clientID:       strings.TrimSpace(opts.ClientID),
		validate:       validate,
		allowedEmails:  toSet(opts.AllowedEmails),
		allowedDomains: toSet(opts.AllowedDomains),
	}
}

// OAuthConfig returns the authorization code flow settings for Google.
func OAuthConfig(opts Options) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURL,
		Scopes:       []string{"openid", "email"},
		Endpoint:     googleoauth.Endpoint,
	}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("google: id token missing")
	}
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google: validate id token: %w", err)
	}
	claims := &Claims{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = strings.ToLower(strings.TrimSpace(email))
	}
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		claims.EmailVerified = verified
	case string:
		claims.EmailVerified = verified == "true"
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !v.Allowed(claims.Email) {
		return nil, fmt.Errorf("%w: %s", ErrEmailNotAllowed, claims.Email)
	}
	return claims, nil
}

// Allowed applies ALLOWED_EMAILS and ALLOWED_DOMAINS. Empty lists admit any
// verified address.
func (v *Verifier) Allowed(email string) bool {
	if len(v.allowedEmails) == 0 && len(v.allowedDomains) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := v.allowedEmails[email]; ok {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, ok := v.allowedDomains[email[at+1:]]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
