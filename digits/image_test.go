package digits

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeatures() []float64 {
	features := make([]float64, Pixels)
	for i := range features {
		features[i] = float64(i%256) / 255
	}
	return features
}

func TestImageRoundTrip(t *testing.T) {
	features := testFeatures()

	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, features))
	decoded, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.InDeltaSlice(t, features, decoded, 1e-12)
}

func TestImageLayoutIsRowMajor(t *testing.T) {
	features := make([]float64, Pixels)
	features[2*Width+5] = 1

	path := filepath.Join(t.TempDir(), "one.png")
	require.NoError(t, WriteImage(path, features))
	decoded, err := ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 1.0, decoded[2*Width+5])
	assert.Equal(t, 0.0, decoded[5*Width+2])
}

func TestDecodeImageWrongSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 10, 28))))
	_, err := DecodeImage(&buf)
	assert.ErrorIs(t, err, ErrImageSize)

	_, err = DecodeImage(bytes.NewReader([]byte("not a png")))
	assert.Error(t, err)
}

func TestEncodeImageClamps(t *testing.T) {
	features := make([]float64, Pixels)
	features[0] = -3
	features[1] = 7
	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, features))
	decoded, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0.0, decoded[0])
	assert.Equal(t, 1.0, decoded[1])

	assert.Error(t, EncodeImage(&buf, features[:10]))
}

func TestOneHot(t *testing.T) {
	target, err := OneHot(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, target)

	_, err = OneHot(10)
	assert.Error(t, err)
	_, err = OneHot(-1)
	assert.Error(t, err)
}
