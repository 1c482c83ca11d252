package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKIndices(t *testing.T) {
	vals := []float64{0.1, 0.9, 0.3, 0.7}

	assert.Equal(t, []int{1, 3}, topKIndices(vals, 2))
	assert.Equal(t, []int{1, 3, 2, 0}, topKIndices(vals, 10))
	assert.Empty(t, topKIndices(vals, 0))
	assert.Empty(t, topKIndices(vals, -1))
	assert.Equal(t, []float64{0.1, 0.9, 0.3, 0.7}, vals)
}
