package nn

import (
	"fmt"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization,
// biases to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	input *tensor.Tensor // cached for Backward
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})
	bias := tensor.Zeros(tensor.Shape{outFeatures})

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}
	l.input = input

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(l.weight.Data().Transpose())

	// Row-wise bias add.
	batch := inputShape[0]
	outData := output.Data()
	biasData := l.bias.Data().Data()
	for b := 0; b < batch; b++ {
		row := outData[b*l.outFeatures : (b+1)*l.outFeatures]
		for o, bv := range biasData {
			row[o] += bv
		}
	}
	return output
}

// Backward accumulates parameter gradients and returns the input gradient.
//
//	dW += dY.T @ x
//	db += column sums of dY
//	dX  = dY @ W
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("linear: Backward called before Forward")
	}
	gradShape := grad.Shape()
	if len(gradShape) != 2 || gradShape[1] != l.outFeatures {
		panic(fmt.Sprintf("linear: expected output gradient [batch, %d], got %v", l.outFeatures, gradShape))
	}

	// dW += dY.T @ x: [out, batch] @ [batch, in] = [out, in]
	l.weight.Grad().AddInPlace(grad.Transpose().MatMul(l.input))

	// db += column sums of dY.
	batch := gradShape[0]
	gradData := grad.Data()
	biasGrad := l.bias.Grad().Data()
	for b := 0; b < batch; b++ {
		row := gradData[b*l.outFeatures : (b+1)*l.outFeatures]
		for o, g := range row {
			biasGrad[o] += g
		}
	}

	// dX = dY @ W: [batch, out] @ [out, in] = [batch, in]
	return grad.MatMul(l.weight.Data())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// String returns a string representation of the layer.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.inFeatures, l.outFeatures)
}
