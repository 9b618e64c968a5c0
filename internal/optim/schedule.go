package optim

import (
	"fmt"
	"math"
)

// StepLR is a step-decay learning rate schedule: the learning rate is
// multiplied by Gamma once every StepSize epochs.
//
// After epoch e (1-based), the learning rate is
//
//	Initial * Gamma^floor(e / StepSize)
type StepLR struct {
	Initial  float32
	Gamma    float32
	StepSize int
}

// NewStepLR creates a step-decay schedule.
func NewStepLR(initial, gamma float32, stepSize int) *StepLR {
	if initial <= 0 {
		panic(fmt.Sprintf("steplr: invalid initial learning rate %v", initial))
	}
	if gamma <= 0 || gamma > 1 {
		panic(fmt.Sprintf("steplr: invalid decay factor %v", gamma))
	}
	if stepSize <= 0 {
		panic(fmt.Sprintf("steplr: invalid step size %d", stepSize))
	}
	return &StepLR{Initial: initial, Gamma: gamma, StepSize: stepSize}
}

// At returns the learning rate in effect after the given 1-based epoch.
func (s *StepLR) At(epoch int) float32 {
	if epoch < 0 {
		epoch = 0
	}
	decays := epoch / s.StepSize
	return s.Initial * float32(math.Pow(float64(s.Gamma), float64(decays)))
}

// Apply sets the optimizer's learning rate for the state after epoch.
func (s *StepLR) Apply(opt Optimizer, epoch int) {
	opt.SetLR(s.At(epoch))
}
