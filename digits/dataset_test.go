package digits

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestDirStoreAndLoad(t *testing.T) {
	d := NewDir(t.TempDir())

	n, err := d.Count(4)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	features := testFeatures()
	for want := 0; want < 3; want++ {
		index, err := d.Store(4, features)
		require.NoError(t, err)
		assert.Equal(t, want, index)
	}
	assert.FileExists(t, filepath.Join(d.Root, "4", "4", "2.png"))

	input, target, err := d.Load(4, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, features, input, 1e-12)
	assert.Equal(t, 1.0, target[4])

	// a fresh Dir rescans the tree
	n, err = NewDir(d.Root).Count(4)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = d.Count(11)
	assert.Error(t, err)
}

func TestDirSample(t *testing.T) {
	d := NewDir(t.TempDir())
	for digit := 0; digit < Classes; digit++ {
		features := make([]float64, Pixels)
		features[digit] = 1
		_, err := d.Store(digit, features)
		require.NoError(t, err)
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		input, target, err := d.Sample(r)
		require.NoError(t, err)
		digit := Line{Inputs: input, Targets: target}.Label()
		require.GreaterOrEqual(t, digit, 0)
		assert.Equal(t, 1.0, input[digit])
	}
}

func TestDirSampleEmpty(t *testing.T) {
	_, _, err := NewDir(t.TempDir()).Sample(rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
