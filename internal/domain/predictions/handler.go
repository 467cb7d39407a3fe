package predictions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/history", historyHandler(svc))
	r.Get("/stats", userStatsHandler(svc))
}

type predictionResponse struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Breed          string          `json:"breed"`
	Confidence     float64         `json:"confidence"`
	Percentage     float64         `json:"percentage"`
	ImageName      *string         `json:"image_name"`
	TopPredictions []TopPrediction `json:"top_predictions"`
	ImageURL       *string         `json:"image_url"`
	ThumbnailURL   *string         `json:"thumbnail_url"`
	CreatedAt      time.Time       `json:"created_at"`
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := queryInt(r, "limit", DefaultHistoryLimit)

		items, err := svc.History(r.Context(), claims.UserID, limit)
		if err != nil {
			writePredictionError(w, err)
			return
		}
		total, err := svc.Count(r.Context(), claims.UserID)
		if err != nil {
			writePredictionError(w, err)
			return
		}

		out := make([]predictionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPredictionResponse(p))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"total_predictions": total,
			"predictions":       out,
		})
	}
}

func userStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stats, err := svc.BreedStats(r.Context(), claims.UserID)
		if err != nil {
			writePredictionError(w, err)
			return
		}
		total, err := svc.Count(r.Context(), claims.UserID)
		if err != nil {
			writePredictionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"total_predictions": total,
			"breed_statistics":  stats,
			"user_id":           claims.UserID,
		})
	}
}

func toPredictionResponse(p Prediction) predictionResponse {
	return predictionResponse{
		ID:             p.ID,
		UserID:         p.OwnerUserID,
		Breed:          p.Breed,
		Confidence:     p.Confidence,
		Percentage:     p.Percentage,
		ImageName:      p.ImageName,
		TopPredictions: p.TopPredictions,
		ImageURL:       p.ImageURL,
		ThumbnailURL:   p.ThumbnailURL,
		CreatedAt:      p.CreatedAt,
	}
}

func writePredictionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, records.ErrNotFound):
		http.Error(w, "prediction not found", http.StatusNotFound)
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
