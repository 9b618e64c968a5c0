// Package tensor provides dense float32 tensors for the deepnotes examples.
//
// # Overview
//
// Tensors are the fundamental data structure in deepnotes. This package
// provides:
//   - Dense row-major float32 tensors
//   - Element-wise arithmetic, matrix multiply and 2D transpose
//   - Zero-copy reshape
//
// # Basic Usage
//
//	import "github.com/deepnotes-ml/deepnotes/tensor"
//
//	a := tensor.Randn(tensor.Shape{2, 3})
//	b := tensor.Ones(tensor.Shape{2, 3})
//	sum := a.Add(b)
package tensor

import (
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Shape describes the dimensions of a tensor.
type Shape = tensor.Shape

// Tensor is a dense float32 tensor in row-major order.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor wrapping the given data, returning an error if
// the data length does not match the shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with standard normal random values.
func Randn(shape Shape) *Tensor {
	return tensor.Randn(shape)
}

// Rand creates a tensor with uniform random values in [0, 1).
func Rand(shape Shape) *Tensor {
	return tensor.Rand(shape)
}
