package nn

import (
	"fmt"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Flatten reshapes [batch, d1, d2, ...] into [batch, d1*d2*...], typically
// between the convolutional trunk and the fully connected head of a model.
type Flatten struct {
	inShape tensor.Shape
}

// NewFlatten creates a new Flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward flattens all dimensions after the batch dimension.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got %v", shape))
	}
	f.inShape = shape.Clone()
	return input.Reshape(shape[0], input.NumElements()/shape[0])
}

// Backward restores the original input shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.inShape == nil {
		panic("flatten: Backward called before Forward")
	}
	return grad.Reshape(f.inShape...)
}

// Parameters returns an empty slice (Flatten has no trainable parameters).
func (f *Flatten) Parameters() []*Parameter {
	return nil
}
