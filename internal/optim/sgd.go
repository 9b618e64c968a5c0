package optim

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/deepnotes-ml/deepnotes/internal/nn"
)

// SGD implements stochastic gradient descent with optional momentum and
// weight decay.
//
// Update rule without momentum:
//
//	param = param - lr * (gradient + weight_decay * param)
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient + weight_decay * param
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params      []*nn.Parameter
	lr          float32
	momentum    float32
	weightDecay float32
	velocities  [][]float32 // per-parameter, allocated lazily
}

// SGDConfig holds configuration for the SGD optimizer.
//
// Zero values select the defaults: LR 0.01, no momentum, no weight decay.
type SGDConfig struct {
	LR          float32
	Momentum    float32 // in [0, 1)
	WeightDecay float32 // L2 penalty coefficient
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:      params,
		lr:          config.LR,
		momentum:    config.Momentum,
		weightDecay: config.WeightDecay,
		velocities:  make([][]float32, len(params)),
	}
}

// Step performs a single optimization step over all parameters.
func (s *SGD) Step() {
	for i, param := range s.params {
		w := param.Data().Data()
		g := param.Grad().Data()

		if s.momentum == 0 && s.weightDecay == 0 {
			// param -= lr * grad
			blas32.Axpy(-s.lr,
				blas32.Vector{N: len(g), Inc: 1, Data: g},
				blas32.Vector{N: len(w), Inc: 1, Data: w})
			continue
		}

		if s.momentum == 0 {
			for j := range w {
				w[j] -= s.lr * (g[j] + s.weightDecay*w[j])
			}
			continue
		}

		v := s.velocities[i]
		if v == nil {
			v = make([]float32, len(w))
			s.velocities[i] = v
		}
		for j := range w {
			v[j] = s.momentum*v[j] + g[j] + s.weightDecay*w[j]
			w[j] -= s.lr * v[j]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
