package breeds

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone el catálogo de razas. Endpoints públicos, sin auth.
func RegisterRoutes(r chi.Router, catalog *Catalog) {
	r.Get("/breeds", listBreedsHandler(catalog))
	r.Get("/breed/{breedName}", breedDetailsHandler(catalog))
}

func listBreedsHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := catalog.Names()
		writeJSON(w, http.StatusOK, map[string]any{
			"total":  len(names),
			"breeds": names,
		})
	}
}

func breedDetailsHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "breedName")

		info, found := catalog.Info(name)
		if !found {
			http.Error(w, "no information available for this breed", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"breed": DisplayName(name),
			"info":  info,
		})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
