package predictions

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"dog-breed-predictor/internal/ports/classifier"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// PreprocessImage decodifica la imagen, la reescala al tamaño de entrada del
// modelo y la convierte a un tensor RGB con valores en [-1, 1] (el escalado
// que espera EfficientNetV2).
func PreprocessImage(data []byte) (classifier.Tensor, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image preprocessing failed: %w", err)
	}

	size := classifier.InputSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	tensor := make(classifier.Tensor, size)
	for y := 0; y < size; y++ {
		row := make([][]float32, size)
		for x := 0; x < size; x++ {
			i := dst.PixOffset(x, y)
			r := dst.Pix[i]
			g := dst.Pix[i+1]
			b := dst.Pix[i+2]
			row[x] = []float32{
				float32(r)/127.5 - 1,
				float32(g)/127.5 - 1,
				float32(b)/127.5 - 1,
			}
		}
		tensor[y] = row
	}
	return tensor, nil
}
