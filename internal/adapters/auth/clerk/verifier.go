package clerk

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"dog-breed-predictor/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrClerkNotConfigured = errors.New("clerk verifier not configured")
	ErrClerkUnauthorized  = errors.New("clerk unauthorized")
	ErrClerkUpstream      = errors.New("clerk upstream error")
)

// Config del verifier de Clerk.
// Con PublishableKey alcanza: el dominio del frontend API va codificado en
// la key. FrontendAPI lo pisa explícitamente si hace falta.
type Config struct {
	PublishableKey string
	FrontendAPI    string

	Timeout time.Duration
}

// Verifier valida session tokens de Clerk (JWT RS256 firmados con las
// claves del JWKS del frontend API de la instancia).
type Verifier struct {
	jwks *jwksCache
}

func NewVerifier(cfg Config) (*Verifier, error) {
	domain := strings.TrimSpace(cfg.FrontendAPI)
	if domain == "" {
		var err error
		domain, err = frontendAPIFromKey(cfg.PublishableKey)
		if err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
	return &Verifier{jwks: newJWKSCache(jwksURL, timeout)}, nil
}

// frontendAPIFromKey decodifica el dominio del frontend API desde la
// publishable key (pk_test_<base64> / pk_live_<base64>, con un '$' final
// dentro del payload decodificado).
func frontendAPIFromKey(publishableKey string) (string, error) {
	publishableKey = strings.TrimSpace(publishableKey)
	if publishableKey == "" {
		return "", ErrClerkNotConfigured
	}

	parts := strings.SplitN(publishableKey, "_", 3)
	if len(parts) != 3 || parts[0] != "pk" {
		return "", fmt.Errorf("%w: malformed publishable key", ErrClerkNotConfigured)
	}

	decoded, err := base64.StdEncoding.WithPadding(base64.NoPadding).DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode publishable key: %v", ErrClerkNotConfigured, err)
	}

	domain := strings.TrimSuffix(strings.TrimSpace(string(decoded)), "$")
	if domain == "" {
		return "", fmt.Errorf("%w: empty frontend api domain", ErrClerkNotConfigured)
	}
	return domain, nil
}

// Verify valida firma y expiración del token y devuelve los claims que el
// resto del servicio necesita. La audiencia no se verifica: los session
// tokens de Clerk no la incluyen de forma estable.
func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrClerkUnauthorized
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	)

	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("token missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrClerkUnauthorized, err)
	}
	if tok == nil || !tok.Valid {
		return auth.Claims{}, ErrClerkUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrClerkUnauthorized)
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if name == "" {
		name, _ = claims["full_name"].(string)
	}

	return auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(email),
		Name:   strings.TrimSpace(name),
	}, nil
}
