package tfserving

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dog-breed-predictor/internal/platform/httpclient"
	"dog-breed-predictor/internal/ports/classifier"
)

const DefaultTimeout = 30 * time.Second

// Client habla con un TensorFlow Serving vía su API REST de predict.
type Client struct {
	http  *httpclient.Client
	model string
}

func New(baseURL, modelName string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("tfserving: base url required")
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("tfserving: model name required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("tfserving: %w", err)
	}
	return &Client{
		http:  hc,
		model: strings.TrimSpace(modelName),
	}, nil
}

type predictRequest struct {
	Instances []classifier.Tensor `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// Predict manda un batch de una sola imagen y devuelve su vector de
// probabilidades. Cualquier fallo de transporte o upstream se reporta como
// ErrUnavailable: el modelo no está en condiciones de responder.
func (c *Client) Predict(ctx context.Context, input classifier.Tensor) ([]float64, error) {
	path := fmt.Sprintf("/v1/models/%s:predict", c.model)

	var out predictResponse
	err := c.http.DoJSON(ctx, http.MethodPost, path, nil, predictRequest{
		Instances: []classifier.Tensor{input},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classifier.ErrUnavailable, err)
	}

	if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
		return nil, fmt.Errorf("%w: empty prediction", classifier.ErrUnavailable)
	}
	return out.Predictions[0], nil
}
