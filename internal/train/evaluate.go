package train

import (
	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
)

// Metrics summarizes one evaluation pass.
type Metrics struct {
	Loss     float32
	Accuracy float32 // in [0, 1]
	Samples  int
}

// Evaluate runs the model over the dataset without touching parameters or
// gradients and returns aggregate loss and accuracy.
//
// The model is switched to evaluation mode for the duration of the pass and
// restored to training mode before returning, even if a layer panics, so a
// surrounding training loop keeps its dropout behavior.
func Evaluate(model nn.Layer, criterion Criterion, set *data.Dataset, batchSize int) Metrics {
	nn.SetTraining(model, false)
	defer nn.SetTraining(model, true)

	var acc Accumulator
	for _, batch := range set.Batches(batchSize) {
		output := model.Forward(batch.Inputs)
		loss, correct := criterion.Eval(output, batch)
		acc.Observe(loss, correct, batch.Size)
	}
	return Metrics{
		Loss:     acc.MeanLoss(),
		Accuracy: acc.Accuracy(),
		Samples:  acc.Samples(),
	}
}
