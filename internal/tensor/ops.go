package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Add returns the element-wise sum t + other. Shapes must match exactly.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.checkSameShape("Add", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v + other.data[i]
	}
	return out
}

// Sub returns the element-wise difference t - other.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	t.checkSameShape("Sub", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v - other.data[i]
	}
	return out
}

// Mul returns the element-wise product t * other.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.checkSameShape("Mul", other)
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * other.data[i]
	}
	return out
}

// Scale returns t multiplied by a scalar.
func (t *Tensor) Scale(s float32) *Tensor {
	out := New(t.shape)
	for i, v := range t.data {
		out.data[i] = v * s
	}
	return out
}

// AddInPlace accumulates other into t element-wise.
func (t *Tensor) AddInPlace(other *Tensor) {
	t.checkSameShape("AddInPlace", other)
	blas32.Axpy(1,
		blas32.Vector{N: len(other.data), Inc: 1, Data: other.data},
		blas32.Vector{N: len(t.data), Inc: 1, Data: t.data})
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	var s float32
	for _, v := range t.data {
		s += v
	}
	return s
}

// MatMul performs 2D matrix multiplication t @ other.
//
// t has shape [m, k], other has shape [k, n]; the result has shape [m, n].
// The multiplication is delegated to gonum's blas32 Gemm kernel.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("tensor: MatMul requires 2D operands, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	if other.shape[0] != k {
		panic(fmt.Sprintf("tensor: MatMul inner dimensions mismatch: %v @ %v", t.shape, other.shape))
	}
	n := other.shape[1]

	out := New(Shape{m, n})
	a := blas32.General{Rows: m, Cols: k, Stride: k, Data: t.data}
	b := blas32.General{Rows: k, Cols: n, Stride: n, Data: other.data}
	c := blas32.General{Rows: m, Cols: n, Stride: n, Data: out.data}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, a, b, 0, c)
	return out
}

// Transpose returns the transpose of a 2D tensor.
func (t *Tensor) Transpose() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor: Transpose requires a 2D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[c*rows+r] = t.data[r*cols+c]
		}
	}
	return out
}

func (t *Tensor) checkSameShape(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor: %s shape mismatch: %v vs %v", op, t.shape, other.shape))
	}
}
