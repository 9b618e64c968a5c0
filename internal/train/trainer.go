package train

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/optim"
)

// Config controls one training run.
type Config struct {
	// Epochs is the number of full passes over the training set. Required.
	Epochs int

	// BatchSize is the number of samples per gradient step. Required.
	BatchSize int

	// ReportEvery emits a progress line every N batches. The window
	// statistics reset after each report. 0 selects the default of 100.
	ReportEvery int

	// Schedule optionally decays the optimizer's learning rate at epoch
	// boundaries.
	Schedule *optim.StepLR

	// Seed drives the per-epoch shuffle.
	Seed int64

	// Log receives progress lines. Required.
	Log *zap.SugaredLogger
}

// Trainer drives the fit loop: shuffle, batch, forward, loss, backward,
// step, report.
type Trainer struct {
	config    Config
	optimizer optim.Optimizer
	rng       *rand.Rand
	history   History
}

// New creates a Trainer. It panics on an invalid configuration since that is
// always a programming error in the calling script.
func New(optimizer optim.Optimizer, config Config) *Trainer {
	if config.Epochs <= 0 {
		panic(fmt.Sprintf("train: invalid epoch count %d", config.Epochs))
	}
	if config.BatchSize <= 0 {
		panic(fmt.Sprintf("train: invalid batch size %d", config.BatchSize))
	}
	if config.ReportEvery == 0 {
		config.ReportEvery = 100
	}
	if config.ReportEvery < 0 {
		panic(fmt.Sprintf("train: invalid report interval %d", config.ReportEvery))
	}
	if config.Log == nil {
		panic("train: config needs a logger")
	}
	return &Trainer{
		config:    config,
		optimizer: optimizer,
		rng:       rand.New(rand.NewSource(config.Seed)), //nolint:gosec // reproducible shuffles
	}
}

// History returns the windowed metrics recorded so far.
func (t *Trainer) History() *History {
	return &t.history
}

// Fit trains the model on trainSet for the configured number of epochs.
//
// Each epoch reshuffles and rebatches the training set, then runs the
// standard step per batch: zero gradients, forward, loss, backward, update.
// Progress is reported every ReportEvery batches over a window that resets
// after each report; a non-empty partial window is flushed at epoch end so
// no batch goes unreported. When valSet is non-nil the model is evaluated on
// it after every epoch.
func (t *Trainer) Fit(model nn.Layer, criterion Criterion, trainSet, valSet *data.Dataset) {
	nn.SetTraining(model, true)

	for epoch := 1; epoch <= t.config.Epochs; epoch++ {
		trainSet.Shuffle(t.rng)
		batches := trainSet.Batches(t.config.BatchSize)

		var window Accumulator
		for i, batch := range batches {
			t.optimizer.ZeroGrad()

			output := model.Forward(batch.Inputs)
			loss, correct := criterion.Eval(output, batch)
			model.Backward(criterion.Grad())
			t.optimizer.Step()

			window.Observe(loss, correct, batch.Size)
			if (i+1)%t.config.ReportEvery == 0 {
				t.report(epoch, i+1, &window)
			}
		}
		if window.Batches() > 0 {
			t.report(epoch, len(batches), &window)
		}

		if valSet != nil {
			m := Evaluate(model, criterion, valSet, t.config.BatchSize)
			t.config.Log.Infof("Epoch %d complete, Val Loss: %.4f, Val Acc: %.2f%%",
				epoch, m.Loss, m.Accuracy*100)
		}

		if t.config.Schedule != nil {
			t.config.Schedule.Apply(t.optimizer, epoch)
		}
	}
}

func (t *Trainer) report(epoch, batch int, window *Accumulator) {
	t.config.Log.Infof("Epoch %d, Batch %d, Loss: %.4f, Acc: %.2f%%",
		epoch, batch, window.MeanLoss(), window.Accuracy()*100)
	t.history.Add(Observation{
		Epoch:    epoch,
		Batch:    batch,
		Loss:     window.MeanLoss(),
		Accuracy: window.Accuracy(),
	})
	window.Reset()
}
