package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchitecture(t *testing.T) {
	arch, err := ParseArchitecture("784  800 10")
	require.NoError(t, err)
	assert.Equal(t, []int{784, 800, 10}, arch)

	_, err = ParseArchitecture("784 x 10")
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, ValidateConfig(&c))

	cases := map[string]func(c *Config){
		"one layer":     func(c *Config) { c.Architecture = []int{784} },
		"zero layer":    func(c *Config) { c.Architecture = []int{784, 0, 10} },
		"learning rate": func(c *Config) { c.LearningRate = 0 },
		"no stop":       func(c *Config) { c.Duration, c.Steps = 0, 0 },
		"report":        func(c *Config) { c.ReportEvery = 0 },
		"no data":       func(c *Config) { c.DataRoot, c.CSVPath = "", "" },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, ValidateConfig(&c), name)
	}

	c = DefaultConfig()
	c.Duration, c.Steps = 0, 100
	assert.NoError(t, ValidateConfig(&c))
}
