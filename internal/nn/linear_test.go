package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func setParam(t *testing.T, p *Parameter, values []float32) {
	t.Helper()
	require.Len(t, values, p.Data().NumElements())
	copy(p.Data().Data(), values)
}

func TestLinearForward(t *testing.T) {
	l := NewLinear(3, 2)
	// W = [1 2 3; 4 5 6], b = [0.5, -0.5]
	setParam(t, l.Weight(), []float32{1, 2, 3, 4, 5, 6})
	setParam(t, l.Bias(), []float32{0.5, -0.5})

	input, err := tensor.FromSlice([]float32{1, 1, 1, 0, 1, 0}, tensor.Shape{2, 3})
	require.NoError(t, err)

	out := l.Forward(input)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	// Row 0: [1+2+3+0.5, 4+5+6-0.5] = [6.5, 14.5]
	// Row 1: [2+0.5, 5-0.5] = [2.5, 4.5]
	assert.Equal(t, []float32{6.5, 14.5, 2.5, 4.5}, out.Data())
}

func TestLinearBackward(t *testing.T) {
	l := NewLinear(2, 2)
	setParam(t, l.Weight(), []float32{1, 2, 3, 4})
	setParam(t, l.Bias(), []float32{0, 0})

	input, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	l.Forward(input)

	grad, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})
	require.NoError(t, err)
	inputGrad := l.Backward(grad)

	// dW = dY.T @ x = [1;1] @ [1 2] = [1 2; 1 2]
	assert.Equal(t, []float32{1, 2, 1, 2}, l.Weight().Grad().Data())
	// db = column sums of dY = [1, 1]
	assert.Equal(t, []float32{1, 1}, l.Bias().Grad().Data())
	// dX = dY @ W = [1 1] @ [1 2; 3 4] = [4, 6]
	assert.Equal(t, []float32{4, 6}, inputGrad.Data())
}

func TestLinearBackwardAccumulates(t *testing.T) {
	l := NewLinear(2, 1)
	setParam(t, l.Weight(), []float32{1, 1})

	input, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	grad, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1})

	l.Forward(input)
	l.Backward(grad)
	l.Forward(input)
	l.Backward(grad)

	// Two identical backward passes double the gradient.
	assert.Equal(t, []float32{2, 4}, l.Weight().Grad().Data())

	l.Weight().ZeroGrad()
	assert.Equal(t, []float32{0, 0}, l.Weight().Grad().Data())
}

func TestLinearNumericalGradient(t *testing.T) {
	// Compare the analytic input gradient against a central finite
	// difference of a scalar loss L = sum(output).
	l := NewLinear(3, 2)

	input, _ := tensor.FromSlice([]float32{0.5, -0.3, 0.8}, tensor.Shape{1, 3})
	ones, _ := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2})

	l.Forward(input)
	analytic := l.Backward(ones)

	const eps = 1e-2
	for i := 0; i < input.NumElements(); i++ {
		orig := input.Data()[i]

		input.Data()[i] = orig + eps
		plus := l.Forward(input).Sum()
		input.Data()[i] = orig - eps
		minus := l.Forward(input).Sum()
		input.Data()[i] = orig

		numeric := (plus - minus) / (2 * eps)
		assert.InDelta(t, numeric, analytic.Data()[i], 1e-3, "input element %d", i)
	}
}

func TestLinearShapePanics(t *testing.T) {
	l := NewLinear(3, 2)
	bad := tensor.New(tensor.Shape{2, 4})
	assert.Panics(t, func() { l.Forward(bad) })
	assert.Panics(t, func() { NewLinear(0, 2) })
}
