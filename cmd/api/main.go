package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dog-breed-predictor/internal/adapters/auth/clerk"
	"dog-breed-predictor/internal/adapters/authz/adminlist"
	"dog-breed-predictor/internal/adapters/classifier/tfserving"
	"dog-breed-predictor/internal/adapters/docstore/firestore"
	"dog-breed-predictor/internal/adapters/docstore/memory"
	"dog-breed-predictor/internal/adapters/docstore/mongo"
	"dog-breed-predictor/internal/adapters/docstore/postgres"
	"dog-breed-predictor/internal/adapters/objectstore/cloudinary"
	"dog-breed-predictor/internal/domain/breeds"
	"dog-breed-predictor/internal/platform/config"
	"dog-breed-predictor/internal/platform/logger"
	"dog-breed-predictor/internal/ports/auth"
	"dog-breed-predictor/internal/ports/authz"
	classifierport "dog-breed-predictor/internal/ports/classifier"
	"dog-breed-predictor/internal/ports/docstore"
	"dog-breed-predictor/internal/ports/objectstore"
	"dog-breed-predictor/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("cannot open document store", map[string]any{
			"backend": cfg.Backend,
			"error":   err.Error(),
		})
		os.Exit(1)
	}

	catalog, err := breeds.Load(cfg.BreedInfoPath, cfg.ClassIndicesPath)
	if err != nil {
		log.Error("cannot load breed catalog", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	var verifier auth.AuthVerifier
	if strings.TrimSpace(cfg.ClerkPublishableKey) != "" {
		v, err := clerk.NewVerifier(clerk.Config{PublishableKey: cfg.ClerkPublishableKey})
		if err != nil {
			log.Error("cannot configure clerk verifier", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = v
	} else {
		log.Warn("CLERK_PUBLISHABLE_KEY not set, running in dev auth mode", nil)
	}

	var model classifierport.Classifier
	if strings.TrimSpace(cfg.TFServingURL) != "" {
		c, err := tfserving.New(cfg.TFServingURL, cfg.TFServingModel, cfg.TFServingTimeout)
		if err != nil {
			log.Error("cannot configure classifier client", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		model = c
	} else {
		log.Warn("TF_SERVING_URL not set, /predict will return 503", nil)
	}

	var uploader objectstore.Uploader
	if strings.TrimSpace(cfg.CloudinaryCloudName) != "" {
		u, err := cloudinary.New(cloudinary.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		if err != nil {
			log.Error("cannot configure cloudinary", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		uploader = u
	}

	var admin authz.AdminResolver
	if strings.TrimSpace(cfg.RolesBaseURL) != "" {
		admin = adminlist.NewUpstream(adminlist.UpstreamConfig{
			BaseURL: cfg.RolesBaseURL,
			APIKey:  cfg.RolesAPIKey,
		})
	} else {
		admin = adminlist.New(cfg.AdminUserIDs, cfg.AllowAllAdmin)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Store:        store,
		Classifier:   model,
		Uploader:     uploader,
		Admin:        admin,
		Catalog:      catalog,
		Log:          log,
		Backend:      cfg.Backend,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    cfg.Addr,
			"backend": cfg.Backend,
			"breeds":  catalog.NumBreeds(),
			"classes": catalog.NumClasses(),
		})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", map[string]any{"error": err.Error()})
		}
		if err := store.Close(shutdownCtx); err != nil {
			log.Error("store close error", map[string]any{"error": err.Error()})
		}
	}
}

// openStore abre el backend de documentos configurado. Default: in-memory,
// pensado para dev y tests.
func openStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		return mongo.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.BackendFirestore:
		return firestore.Open(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials)
	case config.BackendPostgres:
		st, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return memory.New(), nil
	}
}
