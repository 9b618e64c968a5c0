package compress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

func TestPruneTensor(t *testing.T) {
	w, err := tensor.FromSlice([]float32{5, -1, 3, -0.5, 2, -4}, tensor.Shape{2, 3})
	require.NoError(t, err)

	// ratio 0.5 over 6 elements prunes floor(3) = 3 smallest magnitudes:
	// -0.5, -1, 2.
	n := PruneTensor(w, 0.5)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{5, 0, 3, 0, 0, -4}, w.Data())
}

func TestPruneTensorFloor(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5}, tensor.Shape{5})

	// floor(0.5 * 5) = 2 elements pruned.
	n := PruneTensor(w, 0.5)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float32{0, 0, 3, 4, 5}, w.Data())
}

func TestPruneTensorEdgeRatios(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	assert.Equal(t, 0, PruneTensor(w, 0))
	assert.Equal(t, []float32{1, 2}, w.Data())

	assert.Equal(t, 2, PruneTensor(w, 1))
	assert.Equal(t, []float32{0, 0}, w.Data())

	assert.Panics(t, func() { PruneTensor(w, 1.5) })
}

func TestPruneModelSkipsBiases(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(4, 3))
	pruned := PruneModel(model, 0.5)

	// Only the weight appears; the bias is left alone.
	require.Len(t, pruned, 1)
	assert.Contains(t, pruned, "0.weight")
	assert.Equal(t, 6, pruned["0.weight"]) // floor(0.5 * 12)

	zeros := 0
	for _, v := range model.Parameters()[0].Data().Data() {
		if v == 0 {
			zeros++
		}
	}
	assert.GreaterOrEqual(t, zeros, 6)
}

func TestSparsity(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(10, 10))
	PruneModel(model, 0.5)

	// 50 of 100 weight elements pruned; 10 bias elements are already zero.
	assert.InDelta(t, 60.0/110, Sparsity(model), 1e-6)
}

func TestQuantizeRoundTrip(t *testing.T) {
	w, err := tensor.FromSlice([]float32{1.27, -1.27, 0.5, 0, -0.01}, tensor.Shape{5})
	require.NoError(t, err)

	q := Quantize(w)
	assert.InDelta(t, 1.27/127, float64(q.Scale), 1e-7)

	back := q.Dequantize()
	require.True(t, back.Shape().Equal(w.Shape()))
	// Round-trip error is bounded by half a quantization step.
	for i, v := range w.Data() {
		assert.InDelta(t, float64(v), float64(back.Data()[i]), float64(q.Scale)/2+1e-7, "element %d", i)
	}
}

func TestQuantizeExtremes(t *testing.T) {
	w, _ := tensor.FromSlice([]float32{2, -2}, tensor.Shape{2})
	q := Quantize(w)
	assert.Equal(t, int8(127), q.Data[0])
	assert.Equal(t, int8(-127), q.Data[1])
}

func TestQuantizeAllZero(t *testing.T) {
	q := Quantize(tensor.Zeros(tensor.Shape{4}))
	assert.Equal(t, float32(1), q.Scale)
	assert.True(t, q.Dequantize().Equal(tensor.Zeros(tensor.Shape{4})))
}

func TestQTensorSizeBytes(t *testing.T) {
	q := Quantize(tensor.Ones(tensor.Shape{10}))
	assert.Equal(t, 14, q.SizeBytes())
}

func TestRangeObserver(t *testing.T) {
	var o RangeObserver
	assert.Equal(t, float32(1), o.Scale())

	a, _ := tensor.FromSlice([]float32{-2, 1}, tensor.Shape{2})
	b, _ := tensor.FromSlice([]float32{0.5, 3}, tensor.Shape{2})
	o.Observe(a)
	o.Observe(b)

	lo, hi := o.Range()
	assert.Equal(t, float32(-2), lo)
	assert.Equal(t, float32(3), hi)
	assert.InDelta(t, 3.0/127, float64(o.Scale()), 1e-7)
}

func TestCalibrateAndQuantizeModel(t *testing.T) {
	model := nn.NewSequential(
		nn.NewLinear(4, 8),
		nn.NewReLU(),
		nn.NewLinear(8, 2),
	)
	inputs := make([][]float32, 16)
	labels := make([]int, 16)
	for i := range inputs {
		inputs[i] = []float32{float32(i) / 16, 0.5, -0.5, 1}
	}
	flat := data.NewClassification(tensor.Shape{4}, inputs, labels)

	observers := Calibrate(model, flat.Batches(8))
	require.Len(t, observers, model.Len())
	for i, o := range observers {
		assert.Greater(t, o.Scale(), float32(0), "layer %d", i)
	}

	qm := QuantizeModel(model, observers)
	assert.Len(t, qm.Weights, len(model.Parameters()))
	assert.Len(t, qm.ActivationScales, model.Len())

	// Applying the round trip perturbs each weight by at most half a step.
	before := make([][]float32, len(model.Parameters()))
	for i, p := range model.Parameters() {
		before[i] = append([]float32(nil), p.Data().Data()...)
	}
	qm.Apply(model)
	for i, p := range model.Parameters() {
		var maxAbs float64
		for _, v := range before[i] {
			if a := math.Abs(float64(v)); a > maxAbs {
				maxAbs = a
			}
		}
		step := maxAbs / 127
		for j, v := range p.Data().Data() {
			assert.InDelta(t, float64(before[i][j]), float64(v), step/2+1e-6)
		}
	}

	assert.Less(t, qm.SizeBytes(), FloatSizeBytes(model))
}
