package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analysis.csv")
	r := Record{
		Name:         "digits",
		Architecture: []int{784, 100, 10},
		LearningRate: 0.5,
		Steps:        1200,
		End:          time.Unix(1700000000, 0),
		Elapsed:      90 * time.Second,
		Accuracy:     91.25,
	}
	require.NoError(t, AppendAnalysis(path, r))
	require.NoError(t, AppendAnalysis(path, r))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, analysisHeaders, records[0])
	assert.Equal(t, []string{"digits", "784 100 10", "0.5000", "1200", "1700000000", "90", "91.25000"}, records[1])
	assert.Equal(t, records[1], records[2])
}
