// Package train provides the training loop and evaluation pass shared by
// the deepnotes example scripts.
package train

import (
	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/optim"
	"github.com/deepnotes-ml/deepnotes/internal/train"
)

// Config controls one training run.
type Config = train.Config

// Trainer drives the fit loop.
type Trainer = train.Trainer

// New creates a Trainer over the given optimizer.
func New(optimizer optim.Optimizer, config Config) *Trainer {
	return train.New(optimizer, config)
}

// Criterion scores model output against a batch.
type Criterion = train.Criterion

// NewClassification creates a cross-entropy criterion.
func NewClassification() *train.Classification {
	return train.NewClassification()
}

// NewRegression creates a mean-squared-error criterion.
func NewRegression() *train.Regression {
	return train.NewRegression()
}

// Metrics summarizes one evaluation pass.
type Metrics = train.Metrics

// Evaluate runs the model over the dataset in evaluation mode and returns
// aggregate loss and accuracy.
func Evaluate(model nn.Layer, criterion Criterion, set *data.Dataset, batchSize int) Metrics {
	return train.Evaluate(model, criterion, set, batchSize)
}

// History records the windowed metrics emitted during training.
type History = train.History

// SavePredictionGrid renders a batch of images as a tiled PNG, each image
// titled with its predicted and true class.
func SavePredictionGrid(path string, batch *data.Batch, predictions []int, cols int) error {
	return train.SavePredictionGrid(path, batch, predictions, cols)
}
