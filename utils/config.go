package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config holds training configuration
type Config struct {
	Architecture []int
	DataRoot     string // PNG dataset tree, see digits.Dir
	CSVPath      string // MNIST CSV, used instead of DataRoot when set
	NetworksDir  string
	Name         string
	LearningRate float64
	Duration     time.Duration
	Steps        int // stops after this many steps when > 0
	ReportEvery  int
	Seed         uint64
}

// DefaultConfig mirrors the trainer's flag defaults.
func DefaultConfig() Config {
	return Config{
		Architecture: []int{784, 800, 10},
		DataRoot:     "dataset",
		NetworksDir:  "networks",
		Name:         "network",
		LearningRate: 0.5,
		Duration:     10 * time.Minute,
		ReportEvery:  500,
	}
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(archStr)
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return errors.New("architecture must have at least 2 layers (input and output)")
	}
	for i, n := range config.Architecture {
		if n <= 0 {
			return errors.Errorf("layer %d must have a positive size, got %d", i, n)
		}
	}

	if config.LearningRate <= 0 {
		return errors.New("learning rate must be positive")
	}

	if config.Duration <= 0 && config.Steps <= 0 {
		return errors.New("either duration or steps must be positive")
	}

	if config.ReportEvery <= 0 {
		return errors.New("report interval must be positive")
	}

	if config.DataRoot == "" && config.CSVPath == "" {
		return errors.New("a dataset directory or csv file is required")
	}

	return nil
}
