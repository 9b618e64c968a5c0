// Package data provides in-memory datasets and batching for the deepnotes
// training scripts, plus loaders for the MNIST and CIFAR-10 file formats and
// synthetic fallbacks that run without downloads.
package data

import (
	"fmt"
	"math/rand"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Batch is a fixed-size group of samples materialized as stacked arrays.
//
// Inputs always has shape [size, sampleShape...]. Labels carries class
// indices for classification datasets; Targets carries continuous targets
// with shape [size, targetDim] for regression datasets. Multi-task datasets
// populate both.
type Batch struct {
	Inputs  *tensor.Tensor
	Labels  []int
	Targets *tensor.Tensor
	Size    int
}

// Dataset is an in-memory collection of samples.
//
// Every sample shares the same input shape for the dataset's lifetime;
// batching stacks samples into tensors of shape [batch, sampleShape...].
type Dataset struct {
	inputs      [][]float32
	sampleShape tensor.Shape
	labels      []int       // nil for pure regression datasets
	targets     [][]float32 // nil for pure classification datasets
	targetDim   int
}

// NewClassification creates a classification dataset from per-sample inputs
// and class labels.
func NewClassification(sampleShape tensor.Shape, inputs [][]float32, labels []int) *Dataset {
	if len(inputs) != len(labels) {
		panic(fmt.Sprintf("data: %d inputs but %d labels", len(inputs), len(labels)))
	}
	checkInputs(sampleShape, inputs)
	return &Dataset{inputs: inputs, sampleShape: sampleShape.Clone(), labels: labels}
}

// NewRegression creates a regression dataset from per-sample inputs and
// continuous targets.
func NewRegression(sampleShape tensor.Shape, inputs [][]float32, targets [][]float32) *Dataset {
	if len(inputs) != len(targets) {
		panic(fmt.Sprintf("data: %d inputs but %d targets", len(inputs), len(targets)))
	}
	checkInputs(sampleShape, inputs)
	d := &Dataset{inputs: inputs, sampleShape: sampleShape.Clone(), targets: targets}
	if len(targets) > 0 {
		d.targetDim = len(targets[0])
	}
	return d
}

// NewMultiTask creates a dataset carrying both a class label and a continuous
// target per sample.
func NewMultiTask(sampleShape tensor.Shape, inputs [][]float32, labels []int, targets [][]float32) *Dataset {
	d := NewRegression(sampleShape, inputs, targets)
	if len(labels) != len(inputs) {
		panic(fmt.Sprintf("data: %d inputs but %d labels", len(inputs), len(labels)))
	}
	d.labels = labels
	return d
}

func checkInputs(sampleShape tensor.Shape, inputs [][]float32) {
	want := sampleShape.NumElements()
	for i, in := range inputs {
		if len(in) != want {
			panic(fmt.Sprintf("data: sample %d has %d elements, shape %v wants %d",
				i, len(in), sampleShape, want))
		}
	}
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.inputs)
}

// SampleShape returns the per-sample input shape.
func (d *Dataset) SampleShape() tensor.Shape {
	return d.sampleShape
}

// Labels returns the class labels, or nil for regression datasets.
func (d *Dataset) Labels() []int {
	return d.labels
}

// NumClasses returns 1 + the highest class label, or 0 for regression
// datasets.
func (d *Dataset) NumClasses() int {
	max := -1
	for _, l := range d.labels {
		if l > max {
			max = l
		}
	}
	return max + 1
}

// Shuffle permutes the samples in place using the given source of
// randomness, keeping inputs, labels and targets paired.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.inputs), func(i, j int) {
		d.inputs[i], d.inputs[j] = d.inputs[j], d.inputs[i]
		if d.labels != nil {
			d.labels[i], d.labels[j] = d.labels[j], d.labels[i]
		}
		if d.targets != nil {
			d.targets[i], d.targets[j] = d.targets[j], d.targets[i]
		}
	})
}

// Split splits the dataset into head and tail parts, with valRatio of the
// samples in the tail. Used for train/validation splits.
func (d *Dataset) Split(valRatio float64) (*Dataset, *Dataset) {
	splitIdx := int(float64(d.Len()) * (1 - valRatio))
	return d.slice(0, splitIdx), d.slice(splitIdx, d.Len())
}

// Subset returns a dataset over the first n samples.
func (d *Dataset) Subset(n int) *Dataset {
	if n > d.Len() {
		n = d.Len()
	}
	return d.slice(0, n)
}

func (d *Dataset) slice(from, to int) *Dataset {
	out := &Dataset{
		inputs:      d.inputs[from:to],
		sampleShape: d.sampleShape,
		targetDim:   d.targetDim,
	}
	if d.labels != nil {
		out.labels = d.labels[from:to]
	}
	if d.targets != nil {
		out.targets = d.targets[from:to]
	}
	return out
}

// Batches materializes the dataset as a sequence of batches of the given
// size; the final batch may be smaller. Call Shuffle first for training
// epochs; evaluation keeps the stored order.
func (d *Dataset) Batches(batchSize int) []*Batch {
	if batchSize <= 0 {
		panic(fmt.Sprintf("data: invalid batch size %d", batchSize))
	}

	n := d.Len()
	sampleLen := d.sampleShape.NumElements()
	numBatches := (n + batchSize - 1) / batchSize
	batches := make([]*Batch, 0, numBatches)

	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		size := end - start

		inputShape := append(tensor.Shape{size}, d.sampleShape...)
		inputs := tensor.New(inputShape)
		inputData := inputs.Data()
		for i := start; i < end; i++ {
			copy(inputData[(i-start)*sampleLen:(i-start+1)*sampleLen], d.inputs[i])
		}

		batch := &Batch{Inputs: inputs, Size: size}
		if d.labels != nil {
			batch.Labels = append([]int(nil), d.labels[start:end]...)
		}
		if d.targets != nil {
			targets := tensor.New(tensor.Shape{size, d.targetDim})
			targetData := targets.Data()
			for i := start; i < end; i++ {
				copy(targetData[(i-start)*d.targetDim:(i-start+1)*d.targetDim], d.targets[i])
			}
			batch.Targets = targets
		}
		batches = append(batches, batch)
	}
	return batches
}
