package nn

import (
	"fmt"
	"math"

	"github.com/deepnotes-ml/deepnotes/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Max pooling reduces spatial dimensions by taking the maximum value in each
// window. MaxPool2D has no learnable parameters.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
type MaxPool2D struct {
	kernelSize int
	stride     int

	inShape tensor.Shape // input shape of the last Forward
	argmax  []int        // flat input index of each output maximum
}

// NewMaxPool2D creates a new 2D max pooling layer.
//
// NewMaxPool2D(2, 2) is the standard non-overlapping 2x2 pooling.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward performs the forward pass, remembering the argmax positions for
// Backward.
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	batch, channels, inH, inW := shape[0], shape[1], shape[2], shape[3]
	outSize := m.ComputeOutputSize(inH, inW)
	outH, outW := outSize[0], outSize[1]
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("maxpool2d: input %dx%d too small for kernel=%d stride=%d",
			inH, inW, m.kernelSize, m.stride))
	}

	m.inShape = shape.Clone()
	output := tensor.New(tensor.Shape{batch, channels, outH, outW})
	m.argmax = make([]int, output.NumElements())

	in := input.Data()
	out := output.Data()

	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					best := float32(math.Inf(-1))
					bestIdx := -1
					for kh := 0; kh < m.kernelSize; kh++ {
						ih := oh*m.stride + kh
						if ih >= inH {
							break
						}
						for kw := 0; kw < m.kernelSize; kw++ {
							iw := ow*m.stride + kw
							if iw >= inW {
								break
							}
							idx := ((n*channels+c)*inH+ih)*inW + iw
							if in[idx] > best {
								best = in[idx]
								bestIdx = idx
							}
						}
					}
					outIdx := ((n*channels+c)*outH+oh)*outW + ow
					out[outIdx] = best
					m.argmax[outIdx] = bestIdx
				}
			}
		}
	}
	return output
}

// Backward routes each output gradient back to the input position that
// produced the maximum.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.argmax == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	if grad.NumElements() != len(m.argmax) {
		panic(fmt.Sprintf("maxpool2d: output gradient has %d elements, expected %d",
			grad.NumElements(), len(m.argmax)))
	}

	inputGrad := tensor.New(m.inShape)
	dIn := inputGrad.Data()
	for outIdx, inIdx := range m.argmax {
		dIn[inIdx] += grad.Data()[outIdx]
	}
	return inputGrad
}

// Parameters returns an empty slice (MaxPool2D has no learnable parameters).
func (m *MaxPool2D) Parameters() []*Parameter {
	return nil
}

// ComputeOutputSize computes output spatial dimensions for a given input size.
func (m *MaxPool2D) ComputeOutputSize(inputH, inputW int) [2]int {
	outH := (inputH-m.kernelSize)/m.stride + 1
	outW := (inputW-m.kernelSize)/m.stride + 1
	return [2]int{outH, outW}
}

// String returns a string representation of the layer.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}
