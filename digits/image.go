// Package digits converts 28x28 digit bitmaps to the feature vectors fed to a
// network and back, and reads the datasets the trainer samples from.
package digits

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	Width   = 28
	Height  = 28
	Pixels  = Width * Height
	Classes = 10
)

// ErrImageSize is returned for bitmaps that are not Width x Height.
var ErrImageSize = errors.New("image is not 28x28")

// DecodeImage reads a PNG and returns its features: the opacity of every
// pixel scaled to [0, 1], row by row.
func DecodeImage(r io.Reader) ([]float64, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding png")
	}
	b := img.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return nil, errors.Wrapf(ErrImageSize, "got %dx%d", b.Dx(), b.Dy())
	}

	features := make([]float64, Pixels)
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			a := color.NRGBAModel.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.NRGBA).A
			features[row*Width+col] = float64(a) / 255.0
		}
	}
	return features, nil
}

// ReadImage is DecodeImage on the file at path.
func ReadImage(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	features, err := DecodeImage(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return features, nil
}

// EncodeImage writes features as a PNG of black pixels whose opacity is the
// feature value.
func EncodeImage(w io.Writer, features []float64) error {
	if len(features) != Pixels {
		return errors.Errorf("got %d features, want %d", len(features), Pixels)
	}
	img := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			img.SetNRGBA(col, row, color.NRGBA{A: toByte(features[row*Width+col])})
		}
	}
	return errors.Wrap(png.Encode(w, img), "encoding png")
}

// WriteImage is EncodeImage into a new file at path.
func WriteImage(path string, features []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating image")
	}
	if err := EncodeImage(f, features); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing image")
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// OneHot returns the target vector for digit.
func OneHot(digit int) ([]float64, error) {
	if digit < 0 || digit >= Classes {
		return nil, errors.Errorf("digit %d out of range", digit)
	}
	target := make([]float64, Classes)
	target[digit] = 1
	return target, nil
}
