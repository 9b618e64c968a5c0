package nn

import (
	"math"
	"math/rand"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from the uniform distribution
// U(-sqrt(6/(fan_in+fan_out)), sqrt(6/(fan_in+fan_out))), which keeps the
// variance of activations roughly constant across layers.
func Xavier(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// He initialization for weights feeding ReLU activations.
//
// Values are drawn from N(0, sqrt(2/fan_in)).
func He(fanIn int, shape tensor.Shape) *tensor.Tensor {
	std := math.Sqrt(2.0 / float64(fanIn))

	t := tensor.New(shape)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		data[i] = float32(rand.NormFloat64() * std)
	}
	return t
}
