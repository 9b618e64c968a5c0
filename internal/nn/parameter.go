package nn

import (
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A parameter owns its value tensor and a gradient buffer of the same shape.
// Layers accumulate into the gradient buffer during Backward; optimizers read
// it during Step and the training loop clears it with ZeroGrad before each
// batch. Parameter shapes are fixed at construction and never resized.
type Parameter struct {
	name string
	data *tensor.Tensor
	grad *tensor.Tensor
}

// NewParameter creates a new trainable parameter.
//
// The value tensor should be initialized before creating the Parameter.
// The gradient buffer is allocated zero-filled with the same shape.
func NewParameter(name string, data *tensor.Tensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
		grad: tensor.Zeros(data.Shape()),
	}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Data returns the parameter value tensor.
func (p *Parameter) Data() *tensor.Tensor {
	return p.data
}

// Grad returns the accumulated gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the gradient buffer.
//
// This must be called before each training iteration to avoid accumulating
// gradients from previous batches.
func (p *Parameter) ZeroGrad() {
	data := p.grad.Data()
	for i := range data {
		data[i] = 0
	}
}
