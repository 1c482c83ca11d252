package digits

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func csvLine(label int, pixel int) string {
	fields := []string{strconv.Itoa(label)}
	for i := 0; i < Pixels; i++ {
		fields = append(fields, strconv.Itoa(pixel))
	}
	return strings.Join(fields, ",")
}

func TestReadCSV(t *testing.T) {
	text := csvLine(7, 255) + "\n" + csvLine(0, 51) + "\n"
	lines, err := ReadCSV(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 7, lines[0].Label())
	assert.Equal(t, 1.0, lines[0].Inputs[0])
	assert.Equal(t, 0, lines[1].Label())
	assert.InDelta(t, 0.2, lines[1].Inputs[Pixels-1], 1e-12)
}

func TestReadCSVInvalidLine(t *testing.T) {
	text := csvLine(1, 0) + "\n1,2,3\n"
	lines, err := ReadCSV(strings.NewReader(text))
	require.Error(t, err)
	assert.Len(t, lines, 1)

	var invalid errInvalidLine
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.lineNum)
	assert.EqualError(t, err, "at line 2, expected 785 values, got 3")

	_, err = ReadCSV(strings.NewReader(csvLine(12, 0)))
	assert.Error(t, err)
}

func TestLinesSample(t *testing.T) {
	lines, err := ReadCSV(strings.NewReader(csvLine(5, 10)))
	require.NoError(t, err)

	input, target, err := lines.Sample(rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.Len(t, input, Pixels)
	assert.Equal(t, 1.0, target[5])

	_, _, err = Lines{}.Sample(rand.New(rand.NewSource(2)))
	assert.Error(t, err)
}
