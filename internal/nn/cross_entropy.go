package nn

import (
	"fmt"
	"math"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class
// classification.
//
// The implementation uses the LogSoftmax + NLLLoss decomposition for
// numerical stability:
//
//	Loss = -log_probs[target]
//	where log_probs = LogSoftmax(logits)
//
// Gradient:
//
//	∂L/∂logits = (Softmax(logits) - y_one_hot) / batch_size
//
// Forward expects raw logits (unnormalized scores); the log-sum-exp trick
// prevents overflow for large logits.
type CrossEntropyLoss struct {
	probs   []float32 // softmax probabilities of the last Forward, [batch*classes]
	targets []int
	classes int
}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy loss over the batch.
//
// Parameters:
//   - logits: model predictions with shape [batch_size, num_classes]
//   - targets: ground-truth class indices, one per sample
func (c *CrossEntropyLoss) Forward(logits *tensor.Tensor, targets []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic("cross_entropy: logits must be 2D [batch_size, num_classes]")
	}
	batchSize, numClasses := shape[0], shape[1]
	if len(targets) != batchSize {
		panic(fmt.Sprintf("cross_entropy: got %d targets for batch of %d", len(targets), batchSize))
	}

	logitsData := logits.Data()
	c.probs = make([]float32, batchSize*numClasses)
	c.targets = append(c.targets[:0], targets...)
	c.classes = numClasses

	totalLoss := float32(0)
	for b := 0; b < batchSize; b++ {
		sampleLogits := logitsData[b*numClasses : (b+1)*numClasses]
		logProbs := logSoftmax(sampleLogits)

		target := targets[b]
		if target < 0 || target >= numClasses {
			panic(fmt.Sprintf("cross_entropy: target %d out of range [0, %d)", target, numClasses))
		}
		totalLoss += -logProbs[target]

		probs := c.probs[b*numClasses : (b+1)*numClasses]
		for i, lp := range logProbs {
			probs[i] = float32(math.Exp(float64(lp)))
		}
	}
	return totalLoss / float32(batchSize)
}

// Backward returns the gradient of the last Forward's loss with respect to
// the logits, averaged over the batch.
func (c *CrossEntropyLoss) Backward() *tensor.Tensor {
	if c.probs == nil {
		panic("cross_entropy: Backward called before Forward")
	}
	batchSize := len(c.targets)
	grad := tensor.New(tensor.Shape{batchSize, c.classes})
	gradData := grad.Data()
	inv := 1 / float32(batchSize)
	for b, target := range c.targets {
		row := c.probs[b*c.classes : (b+1)*c.classes]
		for i, p := range row {
			g := p
			if i == target {
				g -= 1
			}
			gradData[b*c.classes+i] = g * inv
		}
	}
	return grad
}

// logSoftmax computes log(softmax(z)) in a numerically stable way:
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(Σ exp(z - max(z))))
func logSoftmax(z []float32) []float32 {
	result := make([]float32, len(z))

	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := float32(0)
	for _, v := range z {
		sumExp += float32(math.Exp(float64(v - maxZ)))
	}
	logSumExp := maxZ + float32(math.Log(float64(sumExp)))

	for i, v := range z {
		result[i] = v - logSumExp
	}
	return result
}

// argmax returns the index of the maximum value in the slice.
func argmax(z []float32) int {
	maxIdx := 0
	maxVal := z[0]
	for i, v := range z[1:] {
		if v > maxVal {
			maxVal = v
			maxIdx = i + 1
		}
	}
	return maxIdx
}

// Predictions returns the argmax class index for each sample in the batch.
func Predictions(logits *tensor.Tensor) []int {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic("accuracy: logits must be 2D [batch_size, num_classes]")
	}
	batchSize, numClasses := shape[0], shape[1]
	logitsData := logits.Data()
	preds := make([]int, batchSize)
	for b := 0; b < batchSize; b++ {
		preds[b] = argmax(logitsData[b*numClasses : (b+1)*numClasses])
	}
	return preds
}

// CountCorrect returns the number of samples whose argmax prediction matches
// the target class.
func CountCorrect(logits *tensor.Tensor, targets []int) int {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic("accuracy: logits must be 2D [batch_size, num_classes]")
	}
	batchSize, numClasses := shape[0], shape[1]
	if len(targets) != batchSize {
		panic(fmt.Sprintf("accuracy: got %d targets for batch of %d", len(targets), batchSize))
	}

	logitsData := logits.Data()
	correct := 0
	for b := 0; b < batchSize; b++ {
		if argmax(logitsData[b*numClasses:(b+1)*numClasses]) == targets[b] {
			correct++
		}
	}
	return correct
}

// Accuracy computes classification accuracy for a batch, in [0, 1].
func Accuracy(logits *tensor.Tensor, targets []int) float32 {
	if len(targets) == 0 {
		return 0
	}
	return float32(CountCorrect(logits, targets)) / float32(len(targets))
}
