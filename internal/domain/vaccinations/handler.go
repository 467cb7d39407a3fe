package vaccinations

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
	r.Route("/vaccinations", func(vr chi.Router) {
		vr.Post("/", createVaccinationHandler(svc))
		vr.Get("/", listVaccinationsHandler(svc))

		// Rutas estáticas antes de {vaccinationID}
		vr.Get("/stats/summary", vaccinationStatsHandler(svc))
		vr.Get("/upcoming/next", upcomingVaccinationsHandler(svc))

		vr.Get("/{vaccinationID}", getVaccinationHandler(svc))
		vr.Put("/{vaccinationID}", updateVaccinationHandler(svc))
		vr.Delete("/{vaccinationID}", deleteVaccinationHandler(svc))
	})
}

type createVaccinationRequest struct {
	Name     string  `json:"name"`
	DueDate  string  `json:"due_date"` // YYYY-MM-DD
	Status   string  `json:"status"`
	LastDate *string `json:"last_date"`
	Notes    string  `json:"notes"`
	Required bool    `json:"required"`
	PetName  *string `json:"pet_name"`
}

type updateVaccinationRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string `json:"name"`
	DueDate  *string `json:"due_date"`
	Status   *string `json:"status"`
	LastDate *string `json:"last_date"`
	Notes    *string `json:"notes"`
	Required *bool   `json:"required"`
	PetName  *string `json:"pet_name"`
}

type vaccinationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	DueDate   string    `json:"due_date"`
	Status    string    `json:"status"`
	LastDate  *string   `json:"last_date"`
	Notes     string    `json:"notes"`
	Required  bool      `json:"required"`
	PetName   *string   `json:"pet_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type upcomingResponse struct {
	vaccinationResponse
	DaysUntilDue int `json:"days_until_due"`
}

func createVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:     req.Name,
			DueDate:  req.DueDate,
			Status:   Status(req.Status),
			LastDate: req.LastDate,
			Notes:    req.Notes,
			Required: req.Required,
			PetName:  req.PetName,
		})
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success":        true,
			"message":        "Vaccination record created successfully",
			"vaccination_id": v.ID,
			"vaccination":    toVaccinationResponse(v),
		})
	}
}

func listVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := queryInt(r, "limit", DefaultListLimit)
		status := strings.TrimSpace(r.URL.Query().Get("status"))

		items, err := svc.List(r.Context(), claims.UserID, status, limit)
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		out := make([]vaccinationResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVaccinationResponse(v))
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"total":        len(out),
			"vaccinations": out,
			"user_id":      claims.UserID,
		})
	}
}

func getVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		v, err := svc.Get(r.Context(), chi.URLParam(r, "vaccinationID"), claims.UserID)
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"vaccination": toVaccinationResponse(v),
		})
	}
}

func updateVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.Update(r.Context(), chi.URLParam(r, "vaccinationID"), claims.UserID, UpdateInput{
			Name:     req.Name,
			DueDate:  req.DueDate,
			Status:   req.Status,
			LastDate: req.LastDate,
			Notes:    req.Notes,
			Required: req.Required,
			PetName:  req.PetName,
		})
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Vaccination record updated successfully",
			"vaccination": toVaccinationResponse(v),
		})
	}
}

func deleteVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "vaccinationID")
		if err := svc.Delete(r.Context(), id, claims.UserID); err != nil {
			writeVaccinationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"message":        "Vaccination record deleted successfully",
			"vaccination_id": id,
		})
	}
}

func vaccinationStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stats, err := svc.Stats(r.Context(), claims.UserID)
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats":   stats,
			"user_id": claims.UserID,
		})
	}
}

func upcomingVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		days := queryInt(r, "days", DefaultWindowDays)

		items, err := svc.UpcomingWithin(r.Context(), claims.UserID, days)
		if err != nil {
			writeVaccinationError(w, err)
			return
		}

		out := make([]upcomingResponse, 0, len(items))
		for _, u := range items {
			out = append(out, upcomingResponse{
				vaccinationResponse: toVaccinationResponse(u.Vaccination),
				DaysUntilDue:        u.DaysUntilDue,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":               true,
			"total":                 len(out),
			"days_ahead":            days,
			"upcoming_vaccinations": out,
			"user_id":               claims.UserID,
		})
	}
}

func toVaccinationResponse(v Vaccination) vaccinationResponse {
	return vaccinationResponse{
		ID:        v.ID,
		UserID:    v.OwnerUserID,
		Name:      v.Name,
		DueDate:   v.DueDate,
		Status:    string(v.Status),
		LastDate:  v.LastDate,
		Notes:     v.Notes,
		Required:  v.Required,
		PetName:   v.PetName,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func writeVaccinationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, records.ErrNotFound):
		http.Error(w, "vaccination record not found or you don't have access", http.StatusNotFound)
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
