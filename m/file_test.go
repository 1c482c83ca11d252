package m

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestSerialize(t *testing.T) {
	net := getNetwork(t)
	expected := "2 3 2 1\n" +
		"0.1\n0.2\n-0.5\n0.2\n0.3\n0.3\n0.4\n0.5\n0.5\n0.5\n0.6\n0.7\n0.2\n0.5\n0.1\n0.2\n-0.9\n0.3\n0.4\n0.6"

	assert.Equal(t, expected, net.Serialize())

	var buf bytes.Buffer
	n, err := net.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(expected)), n)
	assert.Equal(t, expected, buf.String())
}

func TestSerializeDeserialize(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		net, err := NewNetwork([]int{5, 7, 10, 10}, rand.NewSource(seed))
		require.NoError(t, err)

		deserialized, err := Deserialize(net.Serialize())
		require.NoError(t, err)
		assert.True(t, Equal(net, deserialized), "seed %d", seed)
	}
}

func TestDeserializeIgnoresNonNumericValues(t *testing.T) {
	serialized := "\nlayers\n1 1 1\n\nlayer 1\n0.99\n0.33\n\noutput layer\n0.13\n3.14\n\nthis should be ignored\n"

	deserialized, err := Deserialize(serialized)
	require.NoError(t, err)

	expected, err := FromParams(
		[][][]float64{{{0.99}}, {{0.13}}},
		[][]float64{{0.33}, {3.14}},
	)
	require.NoError(t, err)
	assert.True(t, Equal(expected, deserialized))

	clean, err := Deserialize("1 1 1\n0.99\n0.33\n0.13\n3.14")
	require.NoError(t, err)
	assert.True(t, Equal(clean, deserialized))
}

func TestDeserializeSkipsLongLines(t *testing.T) {
	noise := strings.Repeat("x", 100*1024)
	net, err := Deserialize("1 1 1\n" + noise + "\n0.5\n0.25\n" + noise + "\n0.125\n0.0625")
	require.NoError(t, err)

	expected, err := FromParams(
		[][][]float64{{{0.5}}, {{0.125}}},
		[][]float64{{0.25}, {0.0625}},
	)
	require.NoError(t, err)
	assert.True(t, Equal(expected, net))
}

func TestDeserializeOversizedHeader(t *testing.T) {
	for _, text := range []string{
		"3000000000 3000000000\n0.1\n",
		"4294967295 4294967295 4294967295\n",
		"100000 100000 100000\n0.1\n0.2\n",
	} {
		require.NotPanics(t, func() {
			_, err := Deserialize(text)
			assert.ErrorIs(t, err, ErrInvalidLayers, text)
		})
	}

	// a header within bounds but with too few values only costs what was read
	_, err := Deserialize("10000 10000 10\n0.1\n0.2\n")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDeserializeToleratesCRLF(t *testing.T) {
	text := strings.ReplaceAll(getNetwork(t).Serialize(), "\n", "\r\n")
	net, err := Deserialize(text)
	require.NoError(t, err)
	assert.True(t, Equal(getNetwork(t), net))
}

func TestDeserializeMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"no header":       "0.1\n0.2\nlayers\n",
		"single field":    "3\n0.1\n0.2\n",
		"negative header": "-2 1\n0.1\n0.2\n",
		"truncated":       "2 1\n0.5\n0.25\n",
		"labels only":     "1 1\nweights\nbias\n",
	}
	for name, text := range cases {
		_, err := Deserialize(text)
		assert.ErrorIs(t, err, ErrMalformed, name)
	}

	_, err := Deserialize("2 0 1\n")
	assert.ErrorIs(t, err, ErrInvalidLayers)
}

func TestSaveLoad(t *testing.T) {
	net, err := NewNetwork([]int{4, 3, 2}, rand.NewSource(9))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "network")

	require.NoError(t, net.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, Equal(net, loaded))

	_, err = Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
