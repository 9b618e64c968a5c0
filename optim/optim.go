// Package optim provides optimizers and learning rate schedules for the
// deepnotes examples.
package optim

import (
	"github.com/deepnotes-ml/deepnotes/internal/nn"
	"github.com/deepnotes-ml/deepnotes/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum and weight decay.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// Schedules

// StepLR is a step-decay learning rate schedule.
type StepLR = optim.StepLR

// NewStepLR creates a schedule that multiplies the learning rate by gamma
// every stepSize epochs.
func NewStepLR(initial, gamma float32, stepSize int) *StepLR {
	return optim.NewStepLR(initial, gamma, stepSize)
}
