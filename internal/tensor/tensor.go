// Package tensor implements a dense float32 tensor for the deepnotes library.
//
// Tensors are row-major and contiguous. All training code in this repository
// runs on a single goroutine, so tensors carry no synchronization; shape
// errors are programmer errors and panic rather than returning an error.
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense, row-major float32 tensor.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	if len(shape) == 0 {
		panic("tensor: empty shape")
	}
	for _, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension in shape %v", shape))
		}
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// FromSlice creates a tensor backed by a copy of data.
//
// Returns an error if the data length does not match the shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := New(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution N(0, 1).
func Randn(shape Shape) *Tensor {
	t := New(shape)
	for i := range t.data {
		//nolint:gosec // math/rand is fine for weight initialization
		t.data[i] = float32(rand.NormFloat64())
	}
	return t
}

// Rand creates a tensor with values drawn from the uniform distribution
// U(0, 1).
func Rand(shape Shape) *Tensor {
	t := New(shape)
	for i := range t.data {
		//nolint:gosec // math/rand is fine for weight initialization
		t.data[i] = rand.Float32()
	}
	return t
}

// Shape returns the tensor's shape. The returned slice must not be modified.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the backing slice. Mutations are visible to the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// Set writes the element at the given multi-dimensional index.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices for shape %v, got %d",
			len(t.shape), t.shape, len(indices)))
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of shape %v",
				idx, i, t.shape))
		}
		off = off*t.shape[i] + idx
	}
	return off
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := New(t.shape)
	copy(out.data, t.data)
	return out
}

// Reshape returns a tensor with the given dimensions sharing the same
// backing data. The element count must be unchanged.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), shape, shape.NumElements()))
	}
	return &Tensor{shape: shape.Clone(), data: t.data}
}

// Equal reports whether two tensors have the same shape and bit-identical
// contents.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// String returns a short description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}
