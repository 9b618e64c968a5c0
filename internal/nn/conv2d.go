package nn

import (
	"fmt"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel) / stride + 1
//	out_w = (width + 2*padding - kernel) / stride + 1
//
// The convolution is computed directly (no im2col); this is adequate for the
// small models used by the notes.
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel, kernel]
	bias   *Parameter // [out_channels]

	input *tensor.Tensor // cached for Backward
}

// NewConv2D creates a new 2D convolutional layer with He initialization.
//
// Parameters:
//   - inChannels: number of input channels
//   - outChannels: number of output channels (filters)
//   - kernelSize: square kernel side length
//   - stride: stride for convolution (commonly 1 or 2)
//   - padding: zero padding applied to the input (commonly 0, 1, 2)
func NewConv2D(inChannels, outChannels, kernelSize, stride, padding int) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	fanIn := inChannels * kernelSize * kernelSize
	weight := He(fanIn, tensor.Shape{outChannels, inChannels, kernelSize, kernelSize})
	bias := tensor.Zeros(tensor.Shape{outChannels})

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", shape[1], c.inChannels))
	}
	c.input = input

	batch, inH, inW := shape[0], shape[2], shape[3]
	outSize := c.ComputeOutputSize(inH, inW)
	outH, outW := outSize[0], outSize[1]
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: input %dx%d too small for kernel=%d stride=%d padding=%d",
			inH, inW, c.kernelSize, c.stride, c.padding))
	}

	output := tensor.New(tensor.Shape{batch, c.outChannels, outH, outW})
	in := input.Data()
	w := c.weight.Data().Data()
	b := c.bias.Data().Data()
	out := output.Data()
	k := c.kernelSize

	for n := 0; n < batch; n++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := b[oc]
					for ic := 0; ic < c.inChannels; ic++ {
						for kh := 0; kh < k; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= inH {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= inW {
									continue
								}
								inIdx := ((n*c.inChannels+ic)*inH+ih)*inW + iw
								wIdx := ((oc*c.inChannels+ic)*k+kh)*k + kw
								sum += in[inIdx] * w[wIdx]
							}
						}
					}
					out[((n*c.outChannels+oc)*outH+oh)*outW+ow] = sum
				}
			}
		}
	}
	return output
}

// Backward accumulates weight and bias gradients and returns the gradient
// with respect to the input.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.input == nil {
		panic("conv2d: Backward called before Forward")
	}
	inShape := c.input.Shape()
	batch, inH, inW := inShape[0], inShape[2], inShape[3]
	outSize := c.ComputeOutputSize(inH, inW)
	outH, outW := outSize[0], outSize[1]

	expected := tensor.Shape{batch, c.outChannels, outH, outW}
	if !grad.Shape().Equal(expected) {
		panic(fmt.Sprintf("conv2d: expected output gradient %v, got %v", expected, grad.Shape()))
	}

	inputGrad := tensor.New(inShape)
	in := c.input.Data()
	w := c.weight.Data().Data()
	g := grad.Data()
	dIn := inputGrad.Data()
	dW := c.weight.Grad().Data()
	dB := c.bias.Grad().Data()
	k := c.kernelSize

	for n := 0; n < batch; n++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					gv := g[((n*c.outChannels+oc)*outH+oh)*outW+ow]
					if gv == 0 {
						continue
					}
					dB[oc] += gv
					for ic := 0; ic < c.inChannels; ic++ {
						for kh := 0; kh < k; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= inH {
								continue
							}
							for kw := 0; kw < k; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= inW {
									continue
								}
								inIdx := ((n*c.inChannels+ic)*inH+ih)*inW + iw
								wIdx := ((oc*c.inChannels+ic)*k+kh)*k + kw
								dW[wIdx] += gv * in[inIdx]
								dIn[inIdx] += gv * w[wIdx]
							}
						}
					}
				}
			}
		}
	}
	return inputGrad
}

// Parameters returns [weight, bias].
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// Weight returns the weight parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// ComputeOutputSize computes output spatial dimensions for a given input size.
//
// Returns: [out_height, out_width].
func (c *Conv2D) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH+2*c.padding-c.kernelSize)/c.stride + 1
	outW := (inputW+2*c.padding-c.kernelSize)/c.stride + 1
	return [2]int{outH, outW}
}

// String returns a string representation of the layer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding)
}
