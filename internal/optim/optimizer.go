// Package optim implements optimization algorithms for training.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: stochastic gradient descent with momentum and weight decay
//   - Adam: adaptive moment estimation
//   - StepLR: step-decay learning rate schedule
//
// Optimizers read gradients accumulated in each Parameter's gradient buffer
// and update the parameter values in place; the training loop is the only
// writer, so no locking is involved.
package optim

import (
	"github.com/deepnotes-ml/deepnotes/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all parameters in place,
	// reading each parameter's accumulated gradient buffer.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// Call before each backward pass to prevent gradient accumulation
	// across batches.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate. Used by schedules.
	SetLR(lr float32)
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
