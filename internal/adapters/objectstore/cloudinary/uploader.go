package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"dog-breed-predictor/internal/ports/objectstore"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// thumbTransform genera la miniatura 150x150 insertando la transformación
// en la URL de entrega, sin segundo upload.
const thumbTransform = "c_fill,g_auto,h_150,w_150,q_auto,f_auto"

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Uploader sube imágenes de predicciones a Cloudinary.
type Uploader struct {
	cld *cloudinary.Cloudinary
}

func New(cfg Config) (*Uploader, error) {
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("cloudinary: incomplete credentials")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Uploader{cld: cld}, nil
}

func (u *Uploader) Upload(ctx context.Context, data []byte, folder, publicID string) (objectstore.Upload, error) {
	resp, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return objectstore.Upload{}, fmt.Errorf("cloudinary: upload: %w", err)
	}
	if resp.SecureURL == "" {
		return objectstore.Upload{}, fmt.Errorf("cloudinary: empty secure url")
	}

	return objectstore.Upload{
		URL:          resp.SecureURL,
		ThumbnailURL: thumbnailURL(resp.SecureURL),
		PublicID:     resp.PublicID,
	}, nil
}

func thumbnailURL(secureURL string) string {
	return strings.Replace(secureURL, "/upload/", "/upload/"+thumbTransform+"/", 1)
}
