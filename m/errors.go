package m

import (
	"fmt"

	"github.com/pkg/errors"
)

// These are the errors returned by the engine. Call sites wrap them with
// details, so compare with errors.Is.
var (
	// ErrSizeMismatch reports an input, target, weight or bias whose length
	// disagrees with the layer layout.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrMalformed reports a serialized network without a header line or
	// with fewer values than the header requires.
	ErrMalformed = errors.New("malformed network")
	// ErrInvalidLayers reports fewer than two layers or a zero-sized layer.
	ErrInvalidLayers = errors.New("invalid layer sizes")
)

func sizeMismatch(what string, got, want int) error {
	return errors.Wrapf(ErrSizeMismatch, "%s has %d values, expected %d", what, got, want)
}

// Names use the external numbering where layer 0 is the input.
func weightsName(l, i int) string {
	return fmt.Sprintf("weights of unit %d in layer %d", i, l+1)
}

func biasName(l int) string {
	return fmt.Sprintf("biases of layer %d", l+1)
}
