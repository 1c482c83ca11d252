package m

import (
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is a fully-connected feed-forward network of sigmoid units.
//
// Layers are indexed from zero over the non-input layers: weights[l] maps the
// activations of layer l (the input when l == 0) onto the sizes[l+1] units of
// the next layer, so weights[l].At(i, j) is the weight from unit j below to
// unit i above.
//
// Process and Predict allocate their own buffers and only read the
// parameters; any number of them may run at once against a network that is
// not being trained. ProcessMutating and TrainStep reuse the scratch buffers
// held by the Network (TrainStep also rewrites the parameters), so the owner
// must let only one of them run at a time and keep readers out meanwhile.
type Network struct {
	sizes   []int
	weights []*mat.Dense
	biases  [][]float64

	// scratch state, one vector per non-input layer. Not part of the
	// network's identity: Equal and Serialize ignore it.
	preActivations []*mat.VecDense
	activations    []*mat.VecDense
	deltas         []*mat.VecDense

	activator Sigmoid
}

// NewNetwork creates a network with the given layer sizes, input first and
// output last. Weights and biases are drawn uniformly from [-0.2, 0.2] using
// src; a nil src falls back to the global generator.
func NewNetwork(sizes []int, src rand.Source) (*Network, error) {
	net, err := newNetwork(sizes)
	if err != nil {
		return nil, err
	}
	for l := range net.weights {
		rows, cols := net.weights[l].Dims()
		net.weights[l] = mat.NewDense(rows, cols, randomArray(rows*cols, src))
		net.biases[l] = randomArray(rows, src)
	}
	return net, nil
}

// FromParams builds a network from explicit parameters. weights[l][i][j] is
// the weight from unit j of layer l to unit i of layer l+1 and biases[l][i]
// the bias of that unit.
func FromParams(weights [][][]float64, biases [][]float64) (*Network, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidLayers, "no weights given")
	}
	if len(biases) != len(weights) {
		return nil, sizeMismatch("bias list", len(biases), len(weights))
	}

	sizes := []int{len(weights[0][0])}
	for _, w := range weights {
		sizes = append(sizes, len(w))
	}
	net, err := newNetwork(sizes)
	if err != nil {
		return nil, err
	}

	for l, w := range weights {
		for i, row := range w {
			if len(row) != sizes[l] {
				return nil, sizeMismatch(weightsName(l, i), len(row), sizes[l])
			}
			net.weights[l].SetRow(i, row)
		}
		if len(biases[l]) != sizes[l+1] {
			return nil, sizeMismatch(biasName(l), len(biases[l]), sizes[l+1])
		}
		copy(net.biases[l], biases[l])
	}
	return net, nil
}

// maxParameters bounds the weights plus biases of any network, including
// one described by a header read from disk.
const maxParameters = 1 << 28

// parameterCount validates sizes and returns the number of weights and
// biases a network with that layout holds.
func parameterCount(sizes []int) (int, error) {
	if len(sizes) < 2 {
		return 0, errors.Wrapf(ErrInvalidLayers, "got %d layers, need at least 2", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return 0, errors.Wrapf(ErrInvalidLayers, "layer %d has size %d", i, s)
		}
	}

	total := 0
	for l := 1; l < len(sizes); l++ {
		rows, cols := sizes[l], sizes[l-1]
		if cols >= (maxParameters-total)/rows {
			return 0, errors.Wrapf(ErrInvalidLayers, "more than %d parameters", maxParameters)
		}
		total += rows * (cols + 1)
	}
	return total, nil
}

// newNetwork validates sizes and allocates zeroed parameters and scratch.
func newNetwork(sizes []int) (*Network, error) {
	if _, err := parameterCount(sizes); err != nil {
		return nil, err
	}

	n := len(sizes) - 1
	net := &Network{
		sizes:          slices.Clone(sizes),
		weights:        make([]*mat.Dense, n),
		biases:         make([][]float64, n),
		preActivations: make([]*mat.VecDense, n),
		activations:    make([]*mat.VecDense, n),
		deltas:         make([]*mat.VecDense, n),
	}
	for l := 0; l < n; l++ {
		rows, cols := sizes[l+1], sizes[l]
		net.weights[l] = mat.NewDense(rows, cols, nil)
		net.biases[l] = make([]float64, rows)
		net.preActivations[l] = mat.NewVecDense(rows, nil)
		net.activations[l] = mat.NewVecDense(rows, nil)
		net.deltas[l] = mat.NewVecDense(rows, nil)
	}
	return net, nil
}

func (net *Network) lastIndex() int {
	return len(net.weights) - 1
}

// LayerSizes returns a copy of the layer sizes, input first.
func (net *Network) LayerSizes() []int {
	return slices.Clone(net.sizes)
}

// Inputs is the width of the input layer.
func (net *Network) Inputs() int {
	return net.sizes[0]
}

// Outputs is the width of the output layer.
func (net *Network) Outputs() int {
	return net.sizes[len(net.sizes)-1]
}

// Weights returns the live weight matrices, one per non-input layer.
// Changing them changes the network.
func (net *Network) Weights() []*mat.Dense {
	return net.weights
}

// Biases returns the live bias vectors, one per non-input layer.
func (net *Network) Biases() [][]float64 {
	return net.biases
}

func (net *Network) checkInput(input []float64) error {
	if len(input) != net.Inputs() {
		return sizeMismatch("input", len(input), net.Inputs())
	}
	return nil
}

// Process runs the network on input and returns the output activations.
// It leaves the network untouched.
func (net *Network) Process(input []float64) ([]float64, error) {
	if err := net.checkInput(input); err != nil {
		return nil, err
	}
	prev := input
	for l, w := range net.weights {
		pre := Product(w, prev)
		AddInPlace(pre, net.biases[l])
		activateInto(pre, pre)
		prev = pre
	}
	return prev, nil
}

// ProcessMutating is Process computed in the network's own buffers. The
// activations it leaves behind are the ones TrainStep differentiates.
// The returned slice is a copy.
func (net *Network) ProcessMutating(input []float64) ([]float64, error) {
	if err := net.checkInput(input); err != nil {
		return nil, err
	}
	net.forward(input)
	return slices.Clone(net.activations[net.lastIndex()].RawVector().Data), nil
}

func (net *Network) forward(input []float64) {
	var prev mat.Vector = mat.NewVecDense(len(input), input)
	for l, w := range net.weights {
		pre := net.preActivations[l]
		productVec(pre, w, prev)
		AddInPlace(pre.RawVector().Data, net.biases[l])
		activateInto(net.activations[l].RawVector().Data, pre.RawVector().Data)
		prev = net.activations[l]
	}
}

// Predict returns the index of the strongest output unit.
func (net *Network) Predict(input []float64) (int, error) {
	out, err := net.Process(input)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(out), nil
}

// TrainStep performs one step of stochastic gradient descent on the squared
// error between the network's output for input and target. It returns the
// squared error measured before the update.
func (net *Network) TrainStep(input, target []float64, learningRate float64) (float64, error) {
	if err := net.checkInput(input); err != nil {
		return 0, err
	}
	if len(target) != net.Outputs() {
		return 0, sizeMismatch("target", len(target), net.Outputs())
	}

	net.forward(input)
	last := net.lastIndex()
	out := net.activations[last].RawVector().Data
	loss := SquaredError(out, target)

	// output delta keeps the (a - y) sign; the update below subtracts it
	delta := net.deltas[last].RawVector().Data
	for i, a := range out {
		delta[i] = (a - target[i]) * net.activator.Deactivate(a)
	}

	for l := last - 1; l >= 0; l-- {
		// error reaching layer l arrives through the weights of layer l+1
		productVec(net.deltas[l], net.weights[l+1].T(), net.deltas[l+1])
		delta := net.deltas[l].RawVector().Data
		for i, a := range net.activations[l].RawVector().Data {
			delta[i] *= net.activator.Deactivate(a)
		}
	}

	// every delta is computed before any weight moves
	var prev mat.Vector = mat.NewVecDense(len(input), input)
	for l, w := range net.weights {
		w.RankOne(w, -learningRate, net.deltas[l], prev)
		floats.AddScaled(net.biases[l], -learningRate, net.deltas[l].RawVector().Data)
		prev = net.activations[l]
	}
	return loss, nil
}

// Equal reports whether a and b have the same layout, weights and biases.
// Scratch buffers are not compared.
func Equal(a, b *Network) bool {
	if !slices.Equal(a.sizes, b.sizes) {
		return false
	}
	for l := range a.weights {
		if !mat.Equal(a.weights[l], b.weights[l]) {
			return false
		}
		if !floats.Equal(a.biases[l], b.biases[l]) {
			return false
		}
	}
	return true
}
