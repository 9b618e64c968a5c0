package data

import (
	"math"
	"math/rand"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// SyntheticImages generates a classification dataset of gaussian-blob images
// where each class lights up a different region of the image. The examples
// fall back to this when the real dataset files are absent, so the scripts
// stay runnable end to end.
func SyntheticImages(n int, shape tensor.Shape, numClasses int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible synthetic data

	if len(shape) != 3 {
		panic("data: synthetic images need a [channels, height, width] shape")
	}
	channels, height, width := shape[0], shape[1], shape[2]

	inputs := make([][]float32, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		class := rng.Intn(numClasses)
		labels[i] = class

		// Blob center depends on the class so the task is learnable.
		angle := 2 * math.Pi * float64(class) / float64(numClasses)
		cy := float64(height)/2 + float64(height)/4*math.Sin(angle)
		cx := float64(width)/2 + float64(width)/4*math.Cos(angle)
		sigma := float64(height) / 8

		img := make([]float32, channels*height*width)
		for c := 0; c < channels; c++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					dy := float64(y) - cy
					dx := float64(x) - cx
					v := math.Exp(-(dy*dy + dx*dx) / (2 * sigma * sigma))
					v += 0.1 * rng.NormFloat64()
					img[(c*height+y)*width+x] = float32(math.Max(0, math.Min(1, v)))
				}
			}
		}
		inputs[i] = img
	}
	return NewClassification(shape, inputs, labels)
}

// SyntheticMultiTask generates a dataset where each sample carries both a
// class label and a continuous target derived from the same blob, so a
// shared trunk has signal for both heads. The regression target is the
// normalized blob center [cy/H, cx/W].
func SyntheticMultiTask(n int, shape tensor.Shape, numClasses int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible synthetic data

	if len(shape) != 3 {
		panic("data: synthetic images need a [channels, height, width] shape")
	}
	channels, height, width := shape[0], shape[1], shape[2]

	inputs := make([][]float32, n)
	labels := make([]int, n)
	targets := make([][]float32, n)
	for i := 0; i < n; i++ {
		class := rng.Intn(numClasses)
		labels[i] = class

		angle := 2 * math.Pi * float64(class) / float64(numClasses)
		jitter := rng.NormFloat64() * float64(height) / 16
		cy := float64(height)/2 + float64(height)/4*math.Sin(angle) + jitter
		cx := float64(width)/2 + float64(width)/4*math.Cos(angle) + jitter
		sigma := float64(height) / 8

		img := make([]float32, channels*height*width)
		for c := 0; c < channels; c++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					dy := float64(y) - cy
					dx := float64(x) - cx
					v := math.Exp(-(dy*dy + dx*dx) / (2 * sigma * sigma))
					v += 0.1 * rng.NormFloat64()
					img[(c*height+y)*width+x] = float32(math.Max(0, math.Min(1, v)))
				}
			}
		}
		inputs[i] = img
		targets[i] = []float32{
			float32(cy) / float32(height),
			float32(cx) / float32(width),
		}
	}
	return NewMultiTask(shape, inputs, labels, targets)
}
