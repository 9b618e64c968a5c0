package nn

import (
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Sequential is a container that chains layers together.
//
// Each layer's output becomes the next layer's input; Backward runs the
// chain in reverse.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10),
//	)
type Sequential struct {
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, layer := range s.layers {
		output = layer.Forward(output)
	}
	return output
}

// Backward propagates the output gradient through the layers in reverse
// order and returns the gradient with respect to the input.
func (s *Sequential) Backward(grad *tensor.Tensor) *tensor.Tensor {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters from all layers.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining propagates the training mode to all child layers.
func (s *Sequential) SetTraining(training bool) {
	for _, layer := range s.layers {
		SetTraining(layer, training)
	}
}

// Add appends a layer to the sequence.
func (s *Sequential) Add(layer Layer) {
	s.layers = append(s.layers, layer)
}

// Len returns the number of layers in the sequence.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic("sequential: layer index out of bounds")
	}
	return s.layers[index]
}
