package main

import (
	"testing"

	"digitnet/m"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVInts(t *testing.T) {
	got, err := parseCSVInts(" 4, 8,,16 ")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 8, 16}, got)

	_, err = parseCSVInts("4,x")
	assert.ErrorContains(t, err, `invalid int "x"`)
}

func TestParseArchitectures(t *testing.T) {
	got, err := parseArchitectures("784 800 10; ;2 3 1")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{784, 800, 10}, {2, 3, 1}}, got)

	for _, arg := range []string{"784", "-2 -1", "3 0 1"} {
		_, err := parseArchitectures(arg)
		assert.ErrorIs(t, err, m.ErrInvalidLayers, arg)
	}
}
