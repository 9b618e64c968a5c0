package nn

import (
	"fmt"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// MSELoss computes mean squared error for regression:
//
//	Loss = mean((pred - target)²)
//
// Gradient:
//
//	∂L/∂pred = 2 * (pred - target) / num_elements
type MSELoss struct {
	diff *tensor.Tensor // pred - target of the last Forward
}

// NewMSELoss creates a new mean squared error loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the mean squared error between pred and target.
//
// Both tensors must have identical shapes, typically [batch_size, outputs].
func (m *MSELoss) Forward(pred, target *tensor.Tensor) float32 {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("mse: shape mismatch: %v vs %v", pred.Shape(), target.Shape()))
	}
	m.diff = pred.Sub(target)

	var sum float32
	for _, d := range m.diff.Data() {
		sum += d * d
	}
	return sum / float32(m.diff.NumElements())
}

// Backward returns the gradient of the last Forward's loss with respect to
// the prediction.
func (m *MSELoss) Backward() *tensor.Tensor {
	if m.diff == nil {
		panic("mse: Backward called before Forward")
	}
	return m.diff.Scale(2 / float32(m.diff.NumElements()))
}
