// Package nn implements neural network layers for the deepnotes library.
//
// This package provides building blocks for constructing small networks:
//   - Layer interface: forward/backward pass plus parameter access
//   - Parameter: trainable tensors with gradient buffers
//   - Linear, Conv2D, MaxPool2D: parameterized and pooling layers
//   - Activations: ReLU, Sigmoid, Tanh
//   - Dropout, Flatten, Sequential
//   - Loss functions: CrossEntropyLoss, MSELoss
//
// Layers carry explicit backward passes: Backward receives the gradient of
// the loss with respect to the layer output, accumulates parameter gradients
// in place, and returns the gradient with respect to the input. Training is
// strictly single-threaded; shape mismatches panic.
package nn

import (
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Layer is the base interface for all neural network components.
//
// Modules can be composed to build networks:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10),
//	)
type Layer interface {
	// Forward computes the output of the layer given an input tensor.
	//
	// During training the layer may cache activations needed by Backward;
	// the cached state belongs to the most recent Forward call.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward receives the gradient of the loss with respect to this
	// layer's output, accumulates gradients into the layer's parameters,
	// and returns the gradient with respect to the layer's input.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this layer.
	// Returns an empty slice for layers without trainable parameters.
	Parameters() []*Parameter
}

// ModeSetter is implemented by layers whose behaviour differs between
// training and evaluation (for example Dropout).
type ModeSetter interface {
	SetTraining(training bool)
}

// SetTraining switches a layer (and, for containers, its children) between
// training and evaluation mode. Layers that do not distinguish the two modes
// are left untouched.
func SetTraining(l Layer, training bool) {
	if m, ok := l.(ModeSetter); ok {
		m.SetTraining(training)
	}
}
