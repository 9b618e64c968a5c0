package nn

import (
	"fmt"
	"math/rand"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Dropout randomly zeroes elements of the input with probability p during
// training, scaling the survivors by 1/(1-p) so that the expected activation
// is unchanged (inverted dropout). In evaluation mode it is the identity.
type Dropout struct {
	p        float32
	training bool
	mask     []float32
}

// NewDropout creates a new Dropout layer with drop probability p in [0, 1).
//
// The layer starts in training mode; SetTraining(false) switches it to the
// identity for evaluation.
func NewDropout(p float32) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: invalid probability %v", p))
	}
	return &Dropout{p: p, training: true}
}

// Forward drops elements in training mode and passes the input through
// unchanged in evaluation mode.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.p == 0 {
		d.mask = nil
		return input
	}

	out := tensor.New(input.Shape())
	outData := out.Data()
	d.mask = make([]float32, input.NumElements())
	scale := 1 / (1 - d.p)
	for i, v := range input.Data() {
		//nolint:gosec // math/rand for dropout masks (not security-critical)
		if rand.Float32() >= d.p {
			d.mask[i] = scale
			outData[i] = v * scale
		}
	}
	return out
}

// Backward applies the same mask used in the forward pass.
func (d *Dropout) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.mask == nil {
		return grad
	}
	if grad.NumElements() != len(d.mask) {
		panic(fmt.Sprintf("dropout: gradient has %d elements, mask has %d",
			grad.NumElements(), len(d.mask)))
	}
	out := tensor.New(grad.Shape())
	outData := out.Data()
	for i, g := range grad.Data() {
		outData[i] = g * d.mask[i]
	}
	return out
}

// Parameters returns an empty slice (Dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}

// SetTraining switches between training (dropping) and evaluation (identity).
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// String returns a string representation of the layer.
func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(p=%.2f)", d.p)
}
