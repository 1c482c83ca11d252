package m

import (
	"math"
)

// Sigmoid is the logistic activation used by every non-input layer.
type Sigmoid struct{}

func (s Sigmoid) Activate(sum float64) float64 {
	return sigmoid(sum)
}

// Deactivate returns the slope of the sigmoid expressed in terms of its
// output a = σ(x), i.e. a * (1 - a). Passing a raw pre-activation is wrong.
func (s Sigmoid) Deactivate(a float64) float64 {
	return a * (1 - a)
}

func (s Sigmoid) String() string {
	return "sigmoid"
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// activateInto sets dst[i] = σ(pre[i]).
func activateInto(dst, pre []float64) {
	for i, x := range pre {
		dst[i] = sigmoid(x)
	}
}
