package compress

import (
	"fmt"
	"math"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// QTensor is a symmetric int8 quantization of a float32 tensor: each value
// is stored as round(x / Scale) clamped to [-127, 127], with a single scale
// per tensor.
type QTensor struct {
	Data  []int8
	Scale float32
	Shape tensor.Shape
}

// Quantize converts t to int8 with scale maxAbs/127. An all-zero tensor gets
// scale 1 so dequantization stays well defined.
func Quantize(t *tensor.Tensor) *QTensor {
	src := t.Data()
	var maxAbs float32
	for _, v := range src {
		a := float32(math.Abs(float64(v)))
		if a > maxAbs {
			maxAbs = a
		}
	}
	scale := maxAbs / 127
	if scale == 0 {
		scale = 1
	}

	q := &QTensor{
		Data:  make([]int8, len(src)),
		Scale: scale,
		Shape: t.Shape().Clone(),
	}
	for i, v := range src {
		r := math.Round(float64(v / scale))
		if r > 127 {
			r = 127
		} else if r < -127 {
			r = -127
		}
		q.Data[i] = int8(r)
	}
	return q
}

// Dequantize reconstructs a float32 tensor from the int8 representation.
func (q *QTensor) Dequantize() *tensor.Tensor {
	out := tensor.New(q.Shape)
	dst := out.Data()
	for i, v := range q.Data {
		dst[i] = float32(v) * q.Scale
	}
	return out
}

// SizeBytes returns the storage cost of the quantized tensor: one byte per
// element plus the scale.
func (q *QTensor) SizeBytes() int {
	return len(q.Data) + 4
}

// RangeObserver tracks the min and max of every value it sees, for
// calibrating activation quantization ranges.
type RangeObserver struct {
	min  float32
	max  float32
	seen bool
}

// Observe folds the tensor's values into the running range.
func (o *RangeObserver) Observe(t *tensor.Tensor) {
	for _, v := range t.Data() {
		if !o.seen {
			o.min, o.max = v, v
			o.seen = true
			continue
		}
		if v < o.min {
			o.min = v
		}
		if v > o.max {
			o.max = v
		}
	}
}

// Range returns the observed min and max; both are 0 before any Observe.
func (o *RangeObserver) Range() (float32, float32) {
	return o.min, o.max
}

// Scale returns the symmetric int8 scale covering the observed range, or 1
// if nothing was observed.
func (o *RangeObserver) Scale() float32 {
	maxAbs := float32(math.Max(math.Abs(float64(o.min)), math.Abs(float64(o.max))))
	if maxAbs == 0 {
		return 1
	}
	return maxAbs / 127
}

// Calibrate runs calibration batches through the model and records the
// activation range after every layer. The returned slice has one observer
// per layer of the model, in forward order.
func Calibrate(model *nn.Sequential, batches []*data.Batch) []*RangeObserver {
	nn.SetTraining(model, false)
	defer nn.SetTraining(model, true)

	observers := make([]*RangeObserver, model.Len())
	for i := range observers {
		observers[i] = &RangeObserver{}
	}
	for _, batch := range batches {
		x := batch.Inputs
		for i := 0; i < model.Len(); i++ {
			x = model.Layer(i).Forward(x)
			observers[i].Observe(x)
		}
	}
	return observers
}

// QuantizedModel holds int8 copies of a model's parameters together with
// calibrated activation scales.
type QuantizedModel struct {
	Weights          map[string]*QTensor
	ActivationScales []float32
}

// QuantizeModel quantizes every parameter of the model and captures the
// activation scales from the observers. The float model is left untouched.
func QuantizeModel(model *nn.Sequential, observers []*RangeObserver) *QuantizedModel {
	qm := &QuantizedModel{Weights: make(map[string]*QTensor)}
	for i, p := range model.Parameters() {
		key := fmt.Sprintf("%d.%s", i, p.Name())
		qm.Weights[key] = Quantize(p.Data())
	}
	for _, o := range observers {
		qm.ActivationScales = append(qm.ActivationScales, o.Scale())
	}
	return qm
}

// Apply overwrites the model's parameters with their quantize-dequantize
// round trip, simulating int8 inference accuracy with float32 execution.
func (qm *QuantizedModel) Apply(model *nn.Sequential) {
	for i, p := range model.Parameters() {
		key := fmt.Sprintf("%d.%s", i, p.Name())
		q, ok := qm.Weights[key]
		if !ok {
			panic(fmt.Sprintf("compress: no quantized weights for %s", key))
		}
		copy(p.Data().Data(), q.Dequantize().Data())
	}
}

// SizeBytes returns the total int8 storage cost of the quantized weights.
func (qm *QuantizedModel) SizeBytes() int {
	total := 0
	for _, q := range qm.Weights {
		total += q.SizeBytes()
	}
	return total
}

// FloatSizeBytes returns the float32 storage cost of the model's parameters,
// for before/after comparisons.
func FloatSizeBytes(model nn.Layer) int {
	total := 0
	for _, p := range model.Parameters() {
		total += 4 * p.Data().NumElements()
	}
	return total
}
