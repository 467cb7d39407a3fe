package classifier

import (
	"context"
	"errors"
)

// ErrUnavailable indica que el modelo no está listo o el servicio de
// inferencia no responde. Los handlers lo traducen a 503.
var ErrUnavailable = errors.New("classifier unavailable")

// InputSize es el lado de la imagen que espera el modelo (cuadrada, RGB).
const InputSize = 224

// Tensor es una imagen preprocesada: alto × ancho × canal, valores en [-1, 1].
type Tensor [][][]float32

// Classifier devuelve un vector de probabilidades sobre el set fijo de
// clases. Sin retries: falla rápido y el caller decide.
type Classifier interface {
	Predict(ctx context.Context, input Tensor) ([]float64, error)
}
