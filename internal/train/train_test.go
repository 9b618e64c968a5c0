package train

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/optim"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func testLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core).Sugar(), logs
}

// separableSet builds a two-class dataset a linear model can fit: class 0
// points near (-1, -1), class 1 points near (1, 1).
func separableSet(n int) *data.Dataset {
	inputs := make([][]float32, n)
	labels := make([]int, n)
	for i := range inputs {
		sign := float32(1)
		if i%2 == 0 {
			sign = -1
		}
		jitter := float32(i%5) * 0.01
		inputs[i] = []float32{sign + jitter, sign - jitter}
		labels[i] = (i + 1) % 2
	}
	return data.NewClassification(tensor.Shape{2}, inputs, labels)
}

func TestNewValidation(t *testing.T) {
	log, _ := testLogger()
	opt := optim.NewSGD(nil, optim.SGDConfig{})

	assert.Panics(t, func() { New(opt, Config{Epochs: 0, BatchSize: 4, Log: log}) })
	assert.Panics(t, func() { New(opt, Config{Epochs: 1, BatchSize: 0, Log: log}) })
	assert.Panics(t, func() { New(opt, Config{Epochs: 1, BatchSize: 4}) })
	assert.Panics(t, func() { New(opt, Config{Epochs: 1, BatchSize: 4, ReportEvery: -1, Log: log}) })
}

func TestAccumulator(t *testing.T) {
	var a Accumulator
	assert.Equal(t, float32(0), a.MeanLoss())
	assert.Equal(t, float32(0), a.Accuracy())

	a.Observe(2, 3, 4)
	a.Observe(4, 1, 4)
	assert.InDelta(t, 3, float64(a.MeanLoss()), 1e-6)
	assert.InDelta(t, 0.5, float64(a.Accuracy()), 1e-6)
	assert.Equal(t, 8, a.Samples())
	assert.Equal(t, 2, a.Batches())

	a.Reset()
	assert.Equal(t, 0, a.Samples())
	assert.Equal(t, float32(0), a.MeanLoss())
}

func TestTrainerReportWindows(t *testing.T) {
	log, logs := testLogger()

	set := separableSet(10)
	model := nn.NewSequential(nn.NewLinear(2, 2))
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	trainer := New(opt, Config{
		Epochs:      1,
		BatchSize:   2,
		ReportEvery: 2,
		Log:         log,
	})
	trainer.Fit(model, NewClassification(), set, nil)

	// 5 batches at ReportEvery 2: reports after batches 2 and 4, plus the
	// flushed partial window after batch 5.
	var reported []string
	for _, e := range logs.All() {
		if strings.HasPrefix(e.Message, "Epoch 1, Batch") {
			reported = append(reported, e.Message)
		}
	}
	require.Len(t, reported, 3)
	assert.True(t, strings.HasPrefix(reported[0], "Epoch 1, Batch 2,"))
	assert.True(t, strings.HasPrefix(reported[1], "Epoch 1, Batch 4,"))
	assert.True(t, strings.HasPrefix(reported[2], "Epoch 1, Batch 5,"))

	// History mirrors the reports and each window covers only fresh batches.
	obs := trainer.History().Observations()
	require.Len(t, obs, 3)
	assert.Equal(t, []int{2, 4, 5}, []int{obs[0].Batch, obs[1].Batch, obs[2].Batch})
}

func TestTrainerLineFormat(t *testing.T) {
	log, logs := testLogger()

	set := separableSet(4)
	model := nn.NewSequential(nn.NewLinear(2, 2))
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	trainer := New(opt, Config{Epochs: 1, BatchSize: 2, ReportEvery: 1, Log: log})
	trainer.Fit(model, NewClassification(), set, nil)

	first := logs.All()[0].Message
	var epoch, batch int
	var loss, accPct float32
	n, err := fmt.Sscanf(first, "Epoch %d, Batch %d, Loss: %f, Acc: %f%%", &epoch, &batch, &loss, &accPct)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, epoch)
	assert.Equal(t, 1, batch)
}

func TestTrainerAppliesSchedule(t *testing.T) {
	log, _ := testLogger()

	set := separableSet(8)
	model := nn.NewSequential(nn.NewLinear(2, 2))
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	trainer := New(opt, Config{
		Epochs:    2,
		BatchSize: 4,
		Schedule:  optim.NewStepLR(0.1, 0.5, 1),
		Log:       log,
	})
	trainer.Fit(model, NewClassification(), set, nil)

	// After 2 epochs with decay every epoch: 0.1 * 0.5^2.
	assert.InDelta(t, 0.025, float64(opt.LR()), 1e-6)
}

func TestTrainingReducesLoss(t *testing.T) {
	log, _ := testLogger()

	set := separableSet(64)
	model := nn.NewSequential(nn.NewLinear(2, 2))
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5})
	criterion := NewClassification()

	before := Evaluate(model, criterion, set, 16)

	trainer := New(opt, Config{Epochs: 20, BatchSize: 16, Log: log})
	trainer.Fit(model, criterion, set, nil)

	after := Evaluate(model, criterion, set, 16)
	assert.Less(t, after.Loss, before.Loss)
	assert.Greater(t, after.Accuracy, float32(0.9))
}

func TestEvaluateLeavesParametersUntouched(t *testing.T) {
	set := separableSet(16)
	model := nn.NewSequential(
		nn.NewLinear(2, 4),
		nn.NewReLU(),
		nn.NewDropout(0.5),
		nn.NewLinear(4, 2),
	)

	before := make([]*tensor.Tensor, 0)
	for _, p := range model.Parameters() {
		before = append(before, p.Data().Clone())
	}

	m := Evaluate(model, NewClassification(), set, 4)
	assert.Equal(t, 16, m.Samples)

	for i, p := range model.Parameters() {
		assert.True(t, before[i].Equal(p.Data()), "parameter %d changed", i)
	}
}

func TestEvaluateRestoresTrainingMode(t *testing.T) {
	set := separableSet(8)
	drop := nn.NewDropout(0.5)
	model := nn.NewSequential(nn.NewLinear(2, 512), drop)

	Evaluate(model, NewClassification(), set, 8)

	// After Evaluate the model is back in training mode, so dropout draws a
	// fresh mask per forward pass.
	input := tensor.Ones(tensor.Shape{1, 2})
	a := model.Forward(input)
	b := model.Forward(input)
	assert.False(t, a.Equal(b))
}

func TestRegressionCriterion(t *testing.T) {
	set := data.NewRegression(
		tensor.Shape{2},
		[][]float32{{1, 2}, {3, 4}},
		[][]float32{{0.5}, {1.5}},
	)
	batch := set.Batches(2)[0]

	criterion := NewRegression()
	pred, err := tensor.FromSlice([]float32{0.5, 1.5}, tensor.Shape{2, 1})
	require.NoError(t, err)

	loss, correct := criterion.Eval(pred, batch)
	assert.Equal(t, float32(0), loss)
	assert.Equal(t, 0, correct)

	grad := criterion.Grad()
	assert.Equal(t, tensor.Shape{2, 1}, grad.Shape())
}

func TestClassificationCriterion(t *testing.T) {
	set := separableSet(4)
	batch := set.Batches(4)[0]

	criterion := NewClassification()
	logits := tensor.Zeros(tensor.Shape{4, 2})
	loss, correct := criterion.Eval(logits, batch)

	assert.Greater(t, loss, float32(0))
	assert.GreaterOrEqual(t, correct, 0)
	assert.Equal(t, tensor.Shape{4, 2}, criterion.Grad().Shape())
}

func TestSavePredictionGrid(t *testing.T) {
	set := data.SyntheticImages(6, tensor.Shape{1, 8, 8}, 3, 2)
	batch := set.Batches(6)[0]
	preds := []int{0, 1, 2, 0, 1, 2}

	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, SavePredictionGrid(path, batch, preds, 3))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Mismatched prediction count is an error, not a panic.
	assert.Error(t, SavePredictionGrid(path, batch, []int{0}, 3))
	assert.Error(t, SavePredictionGrid(path, batch, preds, 0))
}

func TestHistorySaveLossPlot(t *testing.T) {
	var h History
	for i := 0; i < 10; i++ {
		h.Add(Observation{Epoch: 1, Batch: i, Loss: 1 / float32(i+1), Accuracy: float32(i) / 10})
	}

	path := filepath.Join(t.TempDir(), "loss.png")
	require.NoError(t, h.SaveLossPlot(path, "test run"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
