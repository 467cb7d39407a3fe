package objectstore

import "context"

// Upload es el resultado de subir una imagen al CDN.
type Upload struct {
	URL          string
	ThumbnailURL string
	PublicID     string
}

// Uploader sube imágenes y devuelve URLs públicas. Un fallo acá nunca debe
// voltear la operación que lo llama: el caller continúa sin imagen.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, publicID string) (Upload, error)
}
