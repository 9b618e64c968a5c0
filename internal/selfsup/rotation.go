// Package selfsup implements rotation-prediction pretext data for
// self-supervised pretraining: images become their own labels by asking the
// network which multiple of 90 degrees each copy was rotated by.
package selfsup

import (
	"fmt"

	"github.com/deepnotes-ml/deepnotes/internal/data"
	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// NumRotations is the number of pretext classes: 0, 90, 180 and 270 degrees.
const NumRotations = 4

// WithRotations expands a batch of square images [N, C, H, W] into the
// rotation pretext set: each image appears four times, rotated
// counter-clockwise by 0, 90, 180 and 270 degrees, labeled 0..3 by the
// number of quarter turns. The output groups the four rotations of each
// image together, so output index 4*i+r holds image i rotated r times.
func WithRotations(images *tensor.Tensor) (*tensor.Tensor, []int) {
	shape := images.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("selfsup: expected [N, C, H, W] images, got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if h != w {
		panic(fmt.Sprintf("selfsup: rotation needs square images, got %dx%d", h, w))
	}

	out := tensor.New(tensor.Shape{n * NumRotations, c, h, w})
	labels := make([]int, n*NumRotations)

	imageLen := c * h * w
	src := images.Data()
	dst := out.Data()

	for i := 0; i < n; i++ {
		base := i * NumRotations
		copy(dst[base*imageLen:(base+1)*imageLen], src[i*imageLen:(i+1)*imageLen])
		labels[base] = 0

		// Each further rotation is a quarter turn of the previous output.
		for r := 1; r < NumRotations; r++ {
			prev := dst[(base+r-1)*imageLen : (base+r)*imageLen]
			cur := dst[(base+r)*imageLen : (base+r+1)*imageLen]
			rotate90(prev, cur, c, h)
			labels[base+r] = r
		}
	}
	return out, labels
}

// Rotate90 returns a copy of the square images rotated counter-clockwise by
// a quarter turn.
func Rotate90(images *tensor.Tensor) *tensor.Tensor {
	shape := images.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("selfsup: expected [N, C, H, W] images, got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if h != w {
		panic(fmt.Sprintf("selfsup: rotation needs square images, got %dx%d", h, w))
	}

	out := tensor.New(shape)
	imageLen := c * h * w
	for i := 0; i < n; i++ {
		rotate90(images.Data()[i*imageLen:(i+1)*imageLen], out.Data()[i*imageLen:(i+1)*imageLen], c, h)
	}
	return out
}

// rotate90 rotates one [C, S, S] image counter-clockwise by 90 degrees:
// dst[i][j] = src[j][S-1-i] per channel.
func rotate90(src, dst []float32, channels, size int) {
	for ch := 0; ch < channels; ch++ {
		plane := ch * size * size
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				dst[plane+i*size+j] = src[plane+j*size+(size-1-i)]
			}
		}
	}
}

// PretextDataset builds a classification dataset over the four rotations of
// every image in the source dataset, dropping the source labels. This is the
// entry point the rotation example feeds to the trainer.
func PretextDataset(set *data.Dataset) *data.Dataset {
	sampleShape := set.SampleShape()
	batch := set.Batches(set.Len())[0]
	rotated, labels := WithRotations(batch.Inputs)

	imageLen := sampleShape.NumElements()
	inputs := make([][]float32, len(labels))
	for i := range inputs {
		inputs[i] = rotated.Data()[i*imageLen : (i+1)*imageLen]
	}
	return data.NewClassification(sampleShape, inputs, labels)
}
