package predictions

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"dog-breed-predictor/internal/domain/breeds"
	"dog-breed-predictor/internal/domain/users"
	"dog-breed-predictor/internal/middleware"
	"dog-breed-predictor/internal/platform/logger"
	"dog-breed-predictor/internal/ports/classifier"
	"dog-breed-predictor/internal/ports/objectstore"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxImageBytes limita el tamaño del upload.
const maxImageBytes = 10 << 20

// PredictDeps son las dependencias del flujo de predicción. Classifier y
// Uploader pueden ser nil: sin classifier el endpoint responde 503, sin
// uploader las predicciones se guardan sin imagen.
type PredictDeps struct {
	Predictions *Service
	Users       *users.Service
	Catalog     *breeds.Catalog
	Classifier  classifier.Classifier
	Uploader    objectstore.Uploader
	Log         logger.Logger
}

// RegisterPredict registra POST /predict. Público: la auth es opcional y
// solo habilita persistir la predicción en el historial del usuario.
func RegisterPredict(r chi.Router, deps PredictDeps) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	r.Post("/predict", predictHandler(deps))
}

func predictHandler(deps PredictDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Classifier == nil {
			http.Error(w, "model not loaded, server is not ready", http.StatusServiceUnavailable)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
			http.Error(w, "file must be an image (JPG, PNG, WebP)", http.StatusBadRequest)
			return
		}

		imageBytes, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "could not read file", http.StatusBadRequest)
			return
		}

		tensor, err := PreprocessImage(imageBytes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		probs, err := deps.Classifier.Predict(r.Context(), tensor)
		if err != nil {
			if errors.Is(err, classifier.ErrUnavailable) {
				http.Error(w, "model unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "prediction failed", http.StatusInternalServerError)
			return
		}

		top := topPredictionsFromProbs(probs, deps.Catalog)
		if len(top) == 0 {
			http.Error(w, "prediction failed", http.StatusInternalServerError)
			return
		}
		best := top[0]
		info, _ := deps.Catalog.Info(best.Breed)

		claims, authenticated := middleware.GetClaims(r.Context())
		authenticated = authenticated && strings.TrimSpace(claims.UserID) != ""

		// Para subir la imagen alcanza un user_id del form; para persistir
		// la predicción hace falta auth real.
		effectiveUserID := claims.UserID
		if effectiveUserID == "" {
			if v := strings.TrimSpace(r.FormValue("user_id")); v != "" && v != "null" && v != "undefined" {
				effectiveUserID = v
			}
		}

		var imageURL, thumbnailURL *string
		if deps.Uploader != nil && effectiveUserID != "" {
			up, err := deps.Uploader.Upload(r.Context(), imageBytes,
				"predictions/"+effectiveUserID, uploadID())
			if err != nil {
				// Fallo tolerado: la predicción sigue sin imagen.
				deps.Log.Warn("image upload failed", map[string]any{
					"user_id": effectiveUserID,
					"error":   err.Error(),
				})
			} else {
				imageURL = &up.URL
				thumbnailURL = &up.ThumbnailURL
			}
		}

		var predictionID *string
		if authenticated {
			if err := deps.Users.EnsureExists(r.Context(), claims); err != nil {
				deps.Log.Warn("ensure user failed", map[string]any{
					"user_id": claims.UserID,
					"error":   err.Error(),
				})
			} else if err := deps.Users.TouchPrediction(r.Context(), claims.UserID); err != nil {
				deps.Log.Warn("touch prediction failed", map[string]any{
					"user_id": claims.UserID,
					"error":   err.Error(),
				})
			}

			imageName := header.Filename
			id, err := deps.Predictions.Save(r.Context(), claims.UserID, SaveInput{
				Breed:          best.Breed,
				Confidence:     best.Confidence,
				Percentage:     best.Percentage,
				ImageName:      &imageName,
				TopPredictions: top,
				ImageURL:       imageURL,
				ThumbnailURL:   thumbnailURL,
			})
			if err != nil {
				writePredictionError(w, err)
				return
			}
			predictionID = &id
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"prediction_id": predictionID,
			"prediction": map[string]any{
				"breed":      best.Breed,
				"confidence": best.Confidence,
				"percentage": best.Percentage,
			},
			"top_predictions": top,
			"breed_info":      info,
			"image_url":       imageURL,
			"thumbnail_url":   thumbnailURL,
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"authenticated":   authenticated,
		})
	}
}

// topPredictionsFromProbs arma el top-3 con nombres de raza listos para
// mostrar. Índices fuera del set de clases se saltan.
func topPredictionsFromProbs(probs []float64, catalog *breeds.Catalog) []TopPrediction {
	out := make([]TopPrediction, 0, 3)
	for _, idx := range TopK(probs, 3) {
		name, ok := catalog.ClassName(idx)
		if !ok {
			continue
		}
		out = append(out, TopPrediction{
			Breed:      breeds.DisplayName(name),
			Confidence: probs[idx],
			Percentage: math.Round(probs[idx]*10000) / 100,
		})
	}
	return out
}

// uploadID genera un public id único por upload (YYYYMMDD_HHMMSS_uuid corto).
func uploadID() string {
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return time.Now().UTC().Format("20060102_150405") + "_" + short
}
