package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends de persistencia soportados.
const (
	BackendMemory    = "memory"
	BackendMongo     = "mongodb"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

type Config struct {
	Addr    string
	Backend string

	// mongodb
	MongoURI    string
	MongoDBName string

	// firestore
	FirestoreProjectID   string
	FirestoreCredentials string

	// postgres
	PostgresDSN string

	// clerk
	ClerkPublishableKey string

	// cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// clasificador (TensorFlow Serving)
	TFServingURL     string
	TFServingModel   string
	TFServingTimeout time.Duration

	// metadata de razas
	BreedInfoPath    string
	ClassIndicesPath string

	// moderación
	AdminUserIDs  string
	AllowAllAdmin bool
	RolesBaseURL  string
	RolesAPIKey   string
}

// Load lee la configuración desde variables de entorno, cargando antes un
// .env si existe. El .env es opcional: en producción las variables vienen
// del entorno del proceso.
func Load() Config {
	_ = godotenv.Load()

	addr := ":8080"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		addr = ":" + v
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DB_BACKEND")))
	if backend == "" {
		backend = BackendMemory
	}

	return Config{
		Addr:    addr,
		Backend: backend,

		MongoURI:    os.Getenv("MONGODB_URI"),
		MongoDBName: envOr("MONGODB_DB", "dog_breed_predictor"),

		FirestoreProjectID:   os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		ClerkPublishableKey: os.Getenv("CLERK_PUBLISHABLE_KEY"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		TFServingURL:     os.Getenv("TF_SERVING_URL"),
		TFServingModel:   envOr("TF_SERVING_MODEL", "dog_breed_classifier"),
		TFServingTimeout: envDuration("TF_SERVING_TIMEOUT", 30*time.Second),

		BreedInfoPath:    envOr("BREED_INFO_PATH", "models/breed_info.json"),
		ClassIndicesPath: envOr("CLASS_INDICES_PATH", "models/class_indices.json"),

		AdminUserIDs:  os.Getenv("ADMIN_USER_IDS"),
		AllowAllAdmin: envBool("ALLOW_ALL_ADMIN"),
		RolesBaseURL:  os.Getenv("ROLES_BASE_URL"),
		RolesAPIKey:   os.Getenv("ROLES_API_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
