// Package preprocess turns uploaded image bytes into the normalized CHW
// tensor the classifiers expect.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is returned when the payload is not a decodable image.
var ErrImageDecode = errors.New("cannot identify image file")

const DefaultImageSize = 224

// DefaultMaxPixels rejects images above this many pixels before decoding,
// the same bound PIL enforces against decompression bombs.
const DefaultMaxPixels = 178956970

// Transform resizes to a fixed square and normalizes each channel as
// (x - mean) / std after scaling to [0, 1].
type Transform struct {
	Size uint
	Mean [3]float32
	Std  [3]float32
	// MaxPixels caps width*height of accepted images. Zero means
	// DefaultMaxPixels.
	MaxPixels int64
}

// Default is the transform every registry model was trained with.
var Default = Transform{
	Size: DefaultImageSize,
	Mean: [3]float32{0.5, 0.5, 0.5},
	Std:  [3]float32{0.5, 0.5, 0.5},
}

// Len is the number of values produced by Apply.
func (t Transform) Len() int {
	return 3 * int(t.Size) * int(t.Size)
}

// Shape is the NCHW shape of a single-image batch.
func (t Transform) Shape() []int64 {
	return []int64{1, 3, int64(t.Size), int64(t.Size)}
}

// Decode decodes any registered image format up to DefaultMaxPixels.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit decodes data after checking the dimensions in its header, so
// an oversized image is rejected without allocating its pixels.
func DecodeLimit(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrImageDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && pixels > maxPixels {
		return nil, "", fmt.Errorf("%w: image size (%d pixels) exceeds limit of %d pixels", ErrImageDecode, pixels, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, format, nil
}

// Apply decodes data and returns the normalized tensor.
func (t Transform) Apply(data []byte) ([]float32, error) {
	maxPixels := t.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	img, _, err := DecodeLimit(data, maxPixels)
	if err != nil {
		return nil, err
	}
	return t.Image(img), nil
}

// Image converts an already decoded image. Alpha is dropped, matching an RGB
// conversion of the source.
func (t Transform) Image(img image.Image) []float32 {
	resized := resize.Resize(t.Size, t.Size, img, resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	tensor := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := y*width + x
			tensor[i] = (float32(r>>8)/255.0 - t.Mean[0]) / t.Std[0]
			tensor[plane+i] = (float32(g>>8)/255.0 - t.Mean[1]) / t.Std[1]
			tensor[2*plane+i] = (float32(b>>8)/255.0 - t.Mean[2]) / t.Std[2]
		}
	}

	return tensor
}
