package nn

import (
	"math"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies the element-wise function: f(x) = max(0, x).
type ReLU struct {
	input *tensor.Tensor
}

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.input = input
	out := tensor.New(input.Shape())
	outData := out.Data()
	for i, v := range input.Data() {
		if v > 0 {
			outData[i] = v
		}
	}
	return out
}

// Backward zeroes the gradient wherever the input was non-positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.input == nil {
		panic("relu: Backward called before Forward")
	}
	out := tensor.New(grad.Shape())
	outData := out.Data()
	inData := r.input.Data()
	for i, g := range grad.Data() {
		if inData[i] > 0 {
			outData[i] = g
		}
	}
	return out
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation layer.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x)).
type Sigmoid struct {
	output *tensor.Tensor
}

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(input.Shape())
	outData := out.Data()
	for i, v := range input.Data() {
		outData[i] = float32(1.0 / (1.0 + math.Exp(-float64(v))))
	}
	s.output = out
	return out
}

// Backward uses σ'(x) = σ(x)(1 - σ(x)).
func (s *Sigmoid) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if s.output == nil {
		panic("sigmoid: Backward called before Forward")
	}
	out := tensor.New(grad.Shape())
	outData := out.Data()
	y := s.output.Data()
	for i, g := range grad.Data() {
		outData[i] = g * y[i] * (1 - y[i])
	}
	return out
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation layer.
//
// Squashes values to (-1, 1); zero-centered, unlike Sigmoid.
type Tanh struct {
	output *tensor.Tensor
}

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies tanh element-wise.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(input.Shape())
	outData := out.Data()
	for i, v := range input.Data() {
		outData[i] = float32(math.Tanh(float64(v)))
	}
	t.output = out
	return out
}

// Backward uses tanh'(x) = 1 - tanh(x)².
func (t *Tanh) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if t.output == nil {
		panic("tanh: Backward called before Forward")
	}
	out := tensor.New(grad.Shape())
	outData := out.Data()
	y := t.output.Data()
	for i, g := range grad.Data() {
		outData[i] = g * (1 - y[i]*y[i])
	}
	return out
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh) Parameters() []*Parameter {
	return nil
}
