package m

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
)

// initRange bounds the uniform weight initialization. Larger draws push most
// units into the flat tails of the sigmoid and training stalls.
const initRange = 0.2

// Product returns m·v in a freshly allocated slice of length rows(m).
// It panics with mat.ErrShape if len(v) differs from the column count of m.
func Product(m mat.Matrix, v []float64) []float64 {
	r, _ := m.Dims()
	dst := make([]float64, r)
	ProductTo(dst, m, v)
	return dst
}

// ProductTo writes m·v into dst without allocating result storage.
// dst must have rows(m) elements and v cols(m) elements, otherwise it panics.
func ProductTo(dst []float64, m mat.Matrix, v []float64) {
	productVec(mat.NewVecDense(len(dst), dst), m, mat.NewVecDense(len(v), v))
}

func productVec(dst *mat.VecDense, m mat.Matrix, v mat.Vector) {
	r, c := m.Dims()
	if dst.Len() != r || v.Len() != c {
		panic(mat.ErrShape)
	}
	dst.MulVec(m, v)
}

// AddInPlace adds s to dst element-wise. It panics if the lengths differ.
func AddInPlace(dst, s []float64) {
	floats.Add(dst, s)
}

// SquaredError is Σ (output[i] - target[i])².
func SquaredError(output, target []float64) float64 {
	d := floats.Distance(output, target, 2)
	return d * d
}

func randomArray(size int, src rand.Source) []float64 {
	dist := distuv.Uniform{
		Min: -initRange,
		Max: initRange,
		Src: src,
	}

	data := make([]float64, size)
	for i := 0; i < size; i++ {
		data[i] = dist.Rand()
	}
	return data
}
