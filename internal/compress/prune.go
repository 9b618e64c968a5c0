// Package compress implements post-training model compression: magnitude
// pruning and symmetric int8 quantization with activation calibration.
package compress

import (
	"fmt"
	"math"
	"sort"

	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// PruneTensor zeroes the floor(ratio * n) smallest-magnitude elements of t
// in place and returns the number zeroed. Ties are broken by index so the
// result is deterministic.
func PruneTensor(t *tensor.Tensor, ratio float64) int {
	if ratio < 0 || ratio > 1 {
		panic(fmt.Sprintf("compress: invalid prune ratio %v", ratio))
	}
	w := t.Data()
	k := int(ratio * float64(len(w)))
	if k == 0 {
		return 0
	}

	idx := make([]int, len(w))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(float64(w[idx[a]])) < math.Abs(float64(w[idx[b]]))
	})
	for _, i := range idx[:k] {
		w[i] = 0
	}
	return k
}

// PruneModel applies magnitude pruning to every weight parameter of the
// model, skipping one-dimensional parameters (biases) since zeroing those
// shifts outputs rather than removing connections. It returns the number of
// elements zeroed per pruned parameter, keyed by parameter name and index.
func PruneModel(model nn.Layer, ratio float64) map[string]int {
	pruned := make(map[string]int)
	for i, p := range model.Parameters() {
		if len(p.Data().Shape()) < 2 {
			continue
		}
		key := fmt.Sprintf("%d.%s", i, p.Name())
		pruned[key] = PruneTensor(p.Data(), ratio)
	}
	return pruned
}

// Sparsity returns the fraction of exactly-zero elements across all
// parameters of the model.
func Sparsity(model nn.Layer) float64 {
	zeros, total := 0, 0
	for _, p := range model.Parameters() {
		for _, v := range p.Data().Data() {
			if v == 0 {
				zeros++
			}
		}
		total += p.Data().NumElements()
	}
	if total == 0 {
		return 0
	}
	return float64(zeros) / float64(total)
}
