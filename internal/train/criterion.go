// Package train implements the supervised training loop, the evaluation
// pass, loss/accuracy bookkeeping and training-curve output shared by all
// the example scripts.
package train

import (
	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Criterion scores model output against a batch and produces the gradient
// that seeds backpropagation. It bridges the loop to losses with different
// target kinds: classification reads Batch.Labels, regression reads
// Batch.Targets.
type Criterion interface {
	// Eval computes the batch loss and, where the task has a notion of
	// correctness, the number of correctly predicted samples. Regression
	// criteria return 0 correct.
	Eval(output *tensor.Tensor, batch *data.Batch) (loss float32, correct int)

	// Grad returns the gradient of the most recent Eval with respect to
	// the model output.
	Grad() *tensor.Tensor
}

// Classification is a Criterion computing softmax cross-entropy against
// Batch.Labels.
type Classification struct {
	loss *nn.CrossEntropyLoss
}

// NewClassification creates a cross-entropy criterion.
func NewClassification() *Classification {
	return &Classification{loss: nn.NewCrossEntropyLoss()}
}

// Eval computes cross-entropy loss and counts correct argmax predictions.
func (c *Classification) Eval(output *tensor.Tensor, batch *data.Batch) (float32, int) {
	loss := c.loss.Forward(output, batch.Labels)
	correct := nn.CountCorrect(output, batch.Labels)
	return loss, correct
}

// Grad returns the cross-entropy gradient for the last Eval.
func (c *Classification) Grad() *tensor.Tensor {
	return c.loss.Backward()
}

// Regression is a Criterion computing mean squared error against
// Batch.Targets.
type Regression struct {
	loss *nn.MSELoss
}

// NewRegression creates a mean-squared-error criterion.
func NewRegression() *Regression {
	return &Regression{loss: nn.NewMSELoss()}
}

// Eval computes MSE loss; correctness is not defined for regression, so the
// second return is always 0.
func (r *Regression) Eval(output *tensor.Tensor, batch *data.Batch) (float32, int) {
	return r.loss.Forward(output, batch.Targets), 0
}

// Grad returns the MSE gradient for the last Eval.
func (r *Regression) Grad() *tensor.Tensor {
	return r.loss.Backward()
}
