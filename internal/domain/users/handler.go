package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dog-breed-predictor/internal/middleware"
	"dog-breed-predictor/internal/ports/docstore"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/user", func(ur chi.Router) {
		ur.Get("/profile", getProfileHandler(svc))
		ur.Post("/profile", updateProfileHandler(svc))
	})
}

type profileResponse struct {
	UserID           string         `json:"user_id"`
	Email            string         `json:"email"`
	Name             string         `json:"name"`
	TotalPredictions int            `json:"total_predictions"`
	Preferences      map[string]any `json:"preferences"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	LastActive       time.Time      `json:"last_active"`
}

func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.EnsureExists(r.Context(), claims); err != nil {
			writeUserError(w, err)
			return
		}

		profile, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    toProfileResponse(profile),
		})
	}
}

func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.EnsureExists(r.Context(), claims); err != nil {
			writeUserError(w, err)
			return
		}

		// Body opcional y de forma libre: se mergea tal cual al perfil,
		// menos los campos de identidad que Update protege.
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		updates := docstore.Document{
			"email": claims.Email,
			"name":  claims.Name,
		}
		for k, v := range body {
			updates[k] = v
		}

		if err := svc.Update(r.Context(), claims.UserID, updates); err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "User profile updated",
			"user_id": claims.UserID,
		})
	}
}

func toProfileResponse(p Profile) profileResponse {
	return profileResponse{
		UserID:           p.UserID,
		Email:            p.Email,
		Name:             p.Name,
		TotalPredictions: p.TotalPredictions,
		Preferences:      p.Preferences,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		LastActive:       p.LastActive,
	}
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, docstore.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, docstore.ErrUnavailable):
		http.Error(w, "database temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
