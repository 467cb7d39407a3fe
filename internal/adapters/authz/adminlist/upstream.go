package adminlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dog-breed-predictor/internal/platform/httpclient"
)

var (
	ErrRolesNotConfigured = errors.New("roles client not configured")
	ErrRolesUnauthorized  = errors.New("roles upstream unauthorized")
	ErrRolesUpstream      = errors.New("roles upstream error")
)

type UpstreamConfig struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

// Upstream resuelve el rol de admin contra un servicio de roles HTTP.
// Alternativa a la allowlist local cuando los roles viven fuera del proceso.
type Upstream struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewUpstream(cfg UpstreamConfig) *Upstream {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		// BaseURL inválida => cliente sin base; IsConfigured lo reporta.
		c = httpclient.New(timeout)
	}

	return &Upstream{
		http:         c,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}
}

func (u *Upstream) IsConfigured() bool {
	return u != nil && u.http != nil && u.http.BaseURL != "" && u.apiKey != ""
}

type rolesResponse struct {
	// Ejemplo: {"admin": true, "moderator": false}
	Roles map[string]bool `json:"roles"`
}

// IsAdmin consulta los roles de userID y responde si incluye admin.
// Preferimos fallar explícito antes que permitir sin control.
func (u *Upstream) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if !u.IsConfigured() {
		return false, ErrRolesNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("userID required")
	}

	path := "/v1/roles?user_id=" + url.QueryEscape(userID)
	headers := map[string]string{u.apiKeyHeader: u.apiKey}

	var out rolesResponse
	if err := u.http.DoJSON(ctx, http.MethodGet, path, headers, nil, &out); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return false, ErrRolesUnauthorized
			default:
				return false, fmt.Errorf("%w: status=%d", ErrRolesUpstream, httpErr.StatusCode)
			}
		}
		return false, fmt.Errorf("%w: %v", ErrRolesUpstream, err)
	}

	return out.Roles["admin"], nil
}
