// Package nn provides neural network layers and losses for the deepnotes
// examples: linear and convolutional layers, pooling, activations, dropout
// and the Sequential container, with explicit Forward and Backward passes.
package nn

import (
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Layer is the common interface for all network layers.
type Layer = nn.Layer

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// SetTraining switches the layer (and any layers it contains) between
// training and evaluation mode.
func SetTraining(l Layer, training bool) {
	nn.SetTraining(l, training)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128)
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// Conv2D represents a 2D convolutional layer with square kernels.
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer with He initialization.
//
// Example:
//
//	conv := nn.NewConv2D(3, 32, 3, 1, 1) // in=3, out=32, kernel=3x3, stride=1, padding=1
func NewConv2D(inChannels, outChannels, kernelSize, stride, padding int) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride)
}

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sigmoid is the logistic activation.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Tanh is the hyperbolic tangent activation.
type Tanh = nn.Tanh

// NewTanh creates a tanh activation layer.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// Dropout randomly zeroes activations during training.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer with drop probability p.
func NewDropout(p float32) *Dropout {
	return nn.NewDropout(p)
}

// Flatten reshapes [batch, ...] input to [batch, features].
type Flatten = nn.Flatten

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Sequential chains layers in order.
type Sequential = nn.Sequential

// NewSequential creates a sequential container over the given layers.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10),
//	)
func NewSequential(layers ...Layer) *Sequential {
	return nn.NewSequential(layers...)
}

// Losses

// CrossEntropyLoss computes softmax cross-entropy over class logits.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// MSELoss computes mean squared error.
type MSELoss = nn.MSELoss

// NewMSELoss creates a mean-squared-error loss.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}

// Predictions returns the argmax class index for each sample in the batch.
func Predictions(logits *tensor.Tensor) []int {
	return nn.Predictions(logits)
}

// State

// StateDict extracts the model's parameters keyed by position and name.
func StateDict(model Layer) map[string]*tensor.Tensor {
	return nn.StateDict(model)
}

// LoadStateDict copies values from the dict into the model's parameters.
func LoadStateDict(model Layer, dict map[string]*tensor.Tensor) error {
	return nn.LoadStateDict(model, dict)
}

// SaveState writes the model's parameters to a snapshot file.
func SaveState(path string, model Layer) error {
	return nn.SaveState(path, model)
}

// LoadState restores the model's parameters from a snapshot file.
func LoadState(path string, model Layer) error {
	return nn.LoadState(path, model)
}
