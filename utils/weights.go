package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"digitnet/m"

	"github.com/pkg/errors"
)

const weightsVersion = "1.0"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                 `json:"version"`
	Sizes   []int                  `json:"sizes"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains weights and bias for a layer
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// layerName numbers layers the way the text format does, input being 0.
func layerName(l int) string {
	return fmt.Sprintf("layer%d", l+1)
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal weights")
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read weights file")
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal weights")
	}
	return &weights, nil
}

// WeightsFromNetwork copies the parameters of net into serializable form.
func WeightsFromNetwork(net *m.Network) *ModelWeights {
	mw := &ModelWeights{
		Version: weightsVersion,
		Sizes:   net.LayerSizes(),
		Layers:  make(map[string]LayerWeight),
	}
	for l, w := range net.Weights() {
		rows, cols := w.Dims()
		data := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			data = append(data, w.RawRowView(i)...)
		}
		name := layerName(l)
		mw.Layers[name] = LayerWeight{
			Weight: &WeightData{
				Name:  name + "_weight",
				Shape: []int{rows, cols},
				Data:  data,
			},
			Bias: &WeightData{
				Name:  name + "_bias",
				Shape: []int{rows},
				Data:  append([]float64{}, net.Biases()[l]...), // copy
			},
		}
	}
	return mw
}

// NetworkFromWeights rebuilds a network from its serializable form.
func NetworkFromWeights(mw *ModelWeights) (*m.Network, error) {
	if len(mw.Sizes) < 2 {
		return nil, errors.Wrapf(m.ErrInvalidLayers, "weights list %d layer sizes", len(mw.Sizes))
	}
	for i, s := range mw.Sizes {
		if s <= 0 {
			return nil, errors.Wrapf(m.ErrInvalidLayers, "layer %d has size %d", i, s)
		}
	}
	n := len(mw.Sizes) - 1
	weights := make([][][]float64, n)
	biases := make([][]float64, n)
	for l := 0; l < n; l++ {
		name := layerName(l)
		lw, ok := mw.Layers[name]
		if !ok || lw.Weight == nil || lw.Bias == nil {
			return nil, errors.Errorf("missing parameters for %s", name)
		}
		rows, cols := mw.Sizes[l+1], mw.Sizes[l]
		if len(lw.Weight.Data) != rows*cols {
			return nil, errors.Wrapf(m.ErrSizeMismatch, "%s has %d weights, expected %d", name, len(lw.Weight.Data), rows*cols)
		}
		weights[l] = make([][]float64, rows)
		for i := range weights[l] {
			weights[l][i] = lw.Weight.Data[i*cols : (i+1)*cols]
		}
		biases[l] = lw.Bias.Data
	}
	return m.FromParams(weights, biases)
}
