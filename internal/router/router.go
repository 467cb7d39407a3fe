package router

import (
	"encoding/json"
	"net/http"
	"time"

	"dog-breed-predictor/internal/domain/breeds"
	"dog-breed-predictor/internal/domain/feedback"
	"dog-breed-predictor/internal/domain/predictions"
	"dog-breed-predictor/internal/domain/records"
	"dog-breed-predictor/internal/domain/users"
	"dog-breed-predictor/internal/domain/vaccinations"
	"dog-breed-predictor/internal/middleware"
	"dog-breed-predictor/internal/platform/logger"
	"dog-breed-predictor/internal/ports/auth"
	"dog-breed-predictor/internal/ports/authz"
	"dog-breed-predictor/internal/ports/classifier"
	"dog-breed-predictor/internal/ports/docstore"
	"dog-breed-predictor/internal/ports/objectstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Store docstore.Store

	// Opcionales: nil degrada la funcionalidad en vez de romper el server.
	Classifier classifier.Classifier
	Uploader   objectstore.Uploader
	Admin      authz.AdminResolver
	Catalog    *breeds.Catalog
	Log        logger.Logger

	// Nombre del backend de persistencia, solo informativo para /health.
	Backend string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	catalog := opts.Catalog
	if catalog == nil {
		catalog = breeds.Empty()
	}

	// Services por módulo. Todos los dominios con historial por usuario
	// comparten el mismo docstore detrás de un records.Store.
	vaccSvc := vaccinations.NewService(records.NewStore(opts.Store, vaccinations.Collection))
	feedbackSvc := feedback.NewService(records.NewStore(opts.Store, feedback.Collection))
	predSvc := predictions.NewService(records.NewStore(opts.Store, predictions.Collection))
	usersSvc := users.NewService(opts.Store)

	r.Get("/", rootHandler(catalog, opts))
	r.Get("/health", healthHandler(catalog, opts))

	// Rutas por módulo
	vaccinations.RegisterRoutes(r, vaccSvc)
	feedback.RegisterRoutes(r, feedbackSvc, opts.Admin)
	predictions.RegisterRoutes(r, predSvc)
	predictions.RegisterPredict(r, predictions.PredictDeps{
		Predictions: predSvc,
		Users:       usersSvc,
		Catalog:     catalog,
		Classifier:  opts.Classifier,
		Uploader:    opts.Uploader,
		Log:         opts.Log,
	})
	users.RegisterRoutes(r, usersSvc)
	breeds.RegisterRoutes(r, catalog)

	return r
}

func rootHandler(catalog *breeds.Catalog, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Dog Breed Predictor API",
			"version": "2.0",
			"features": []string{
				"breed prediction",
				"vaccination tracking",
				"user feedback",
				"prediction history",
			},
			"total_breeds": catalog.NumBreeds(),
			"primary_db":   opts.Backend,
		})
	}
}

func healthHandler(catalog *breeds.Catalog, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":                "healthy",
			"model_loaded":          opts.Classifier != nil,
			"breeds_in_database":    catalog.NumBreeds(),
			"total_classes":         catalog.NumClasses(),
			"backend":               opts.Backend,
			"cloudinary_configured": opts.Uploader != nil,
			"timestamp":             time.Now().UTC().Format(time.RFC3339),
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
