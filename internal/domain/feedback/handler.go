package feedback

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/middleware"
	"dog-breed-predictor/internal/ports/auth"
	"dog-breed-predictor/internal/ports/authz"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, admin authz.AdminResolver) {
	r.Route("/feedback", func(fr chi.Router) {
		fr.Post("/", submitFeedbackHandler(svc))
		fr.Get("/my", myFeedbackHandler(svc))
		fr.Get("/public", publicFeedbackHandler(svc))
		fr.Put("/{feedbackID}/privacy", updatePrivacyHandler(svc))

		// Moderación: solo admins.
		fr.Get("/all", allFeedbackHandler(svc, admin))
		fr.Put("/{feedbackID}/status", updateStatusHandler(svc, admin))
		fr.Get("/stats", feedbackStatsHandler(svc, admin))
	})
}

type submitFeedbackRequest struct {
	Type           string         `json:"feedback_type"`
	Message        string         `json:"message"`
	Rating         *int           `json:"rating"` // 1-5
	PredictionID   *string        `json:"prediction_id"`
	BreedPredicted *string        `json:"breed_predicted"`
	ActualBreed    *string        `json:"actual_breed"`
	IsPrivate      bool           `json:"is_private"`
	Metadata       map[string]any `json:"metadata"`
}

type updatePrivacyRequest struct {
	IsPrivate bool `json:"is_private"`
}

type updateStatusRequest struct {
	Status        string `json:"status"`
	AdminResponse string `json:"admin_response"`
}

type feedbackResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Type             string         `json:"type"`
	Message          string         `json:"message"`
	Rating           *int           `json:"rating"`
	PredictionID     *string        `json:"prediction_id"`
	BreedPredicted   *string        `json:"breed_predicted"`
	ActualBreed      *string        `json:"actual_breed"`
	IsPrivate        bool           `json:"is_private"`
	Status           string         `json:"status"`
	AdminResponse    *string        `json:"admin_response"`
	AdminRespondedAt *time.Time     `json:"admin_responded_at"`
	HelpfulCount     int            `json:"helpful_count"`
	Metadata         map[string]any `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func submitFeedbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitFeedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			Type:           Type(req.Type),
			Message:        req.Message,
			Rating:         req.Rating,
			PredictionID:   req.PredictionID,
			BreedPredicted: req.BreedPredicted,
			ActualBreed:    req.ActualBreed,
			IsPrivate:      req.IsPrivate,
			Metadata:       req.Metadata,
		})
		if err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success":     true,
			"message":     "Thank you for your feedback!",
			"feedback_id": f.ID,
			"type":        string(f.Type),
		})
	}
}

func myFeedbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := queryInt(r, "limit", DefaultUserLimit)
		ftype := strings.TrimSpace(r.URL.Query().Get("feedback_type"))

		items, err := svc.ListMine(r.Context(), claims.UserID, ftype, limit)
		if err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"total":    len(items),
			"feedback": toFeedbackResponses(items),
		})
	}
}

func publicFeedbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := queryInt(r, "limit", DefaultUserLimit)
		ftype := strings.TrimSpace(r.URL.Query().Get("feedback_type"))

		items, err := svc.ListPublic(r.Context(), ftype, limit)
		if err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"total":    len(items),
			"feedback": toFeedbackResponses(items),
		})
	}
}

func updatePrivacyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updatePrivacyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "feedbackID")
		if err := svc.UpdatePrivacy(r.Context(), id, claims.UserID, req.IsPrivate); err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Privacy setting updated",
			"feedback_id": id,
			"is_private":  req.IsPrivate,
		})
	}
}

func allFeedbackHandler(svc *Service, admin authz.AdminResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r, admin); !ok {
			return
		}

		limit := queryInt(r, "limit", DefaultAdminLimit)
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		ftype := strings.TrimSpace(r.URL.Query().Get("feedback_type"))

		items, err := svc.ListAll(r.Context(), status, ftype, limit)
		if err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"total":    len(items),
			"feedback": toFeedbackResponses(items),
		})
	}
}

func updateStatusHandler(svc *Service, admin authz.AdminResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r, admin); !ok {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "feedbackID")
		if err := svc.UpdateStatus(r.Context(), id, Status(req.Status), req.AdminResponse); err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Feedback status updated",
			"feedback_id": id,
			"status":      req.Status,
		})
	}
}

func feedbackStatsHandler(svc *Service, admin authz.AdminResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r, admin); !ok {
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeFeedbackError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats":   stats,
		})
	}
}

// requireAdmin corta con 401 sin claims y 403 sin rol admin.
// Escribe la respuesta de error; el caller solo chequea ok.
func requireAdmin(w http.ResponseWriter, r *http.Request, admin authz.AdminResolver) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}

	// Sin resolver configurado, nadie es admin.
	if admin == nil {
		http.Error(w, "admin access required", http.StatusForbidden)
		return auth.Claims{}, false
	}

	isAdmin, err := admin.IsAdmin(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "authorization check failed", http.StatusInternalServerError)
		return auth.Claims{}, false
	}
	if !isAdmin {
		http.Error(w, "admin access required", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

func toFeedbackResponses(items []Feedback) []feedbackResponse {
	out := make([]feedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, feedbackResponse{
			ID:               f.ID,
			UserID:           f.OwnerUserID,
			Type:             string(f.Type),
			Message:          f.Message,
			Rating:           f.Rating,
			PredictionID:     f.PredictionID,
			BreedPredicted:   f.BreedPredicted,
			ActualBreed:      f.ActualBreed,
			IsPrivate:        f.IsPrivate,
			Status:           string(f.Status),
			AdminResponse:    f.AdminResponse,
			AdminRespondedAt: f.AdminRespondedAt,
			HelpfulCount:     f.HelpfulCount,
			Metadata:         f.Metadata,
			CreatedAt:        f.CreatedAt,
			UpdatedAt:        f.UpdatedAt,
		})
	}
	return out
}

func writeFeedbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, records.ErrNotFound):
		http.Error(w, "feedback not found or you don't have access", http.StatusNotFound)
	case errors.Is(err, records.ErrUnavailable):
		http.Error(w, "database temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func queryInt(r *http.Request, name string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
