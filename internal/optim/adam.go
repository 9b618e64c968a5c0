package optim

import (
	"math"

	"github.com/deepnotes-ml/deepnotes/internal/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam maintains exponential moving averages of gradients (first moment) and
// squared gradients (second moment) with bias correction:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int // timestep for bias correction
	m      [][]float32
	v      [][]float32
}

// AdamConfig holds configuration for the Adam optimizer.
//
// Zero values select the defaults: LR 0.001, Betas (0.9, 0.999), Eps 1e-8.
type AdamConfig struct {
	LR    float32
	Betas [2]float32
	Eps   float32
}

// NewAdam creates a new Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make([][]float32, len(params)),
		v:      make([][]float32, len(params)),
	}
}

// Step performs a single Adam update over all parameters.
func (a *Adam) Step() {
	a.t++
	biasCorrection1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for i, param := range a.params {
		w := param.Data().Data()
		g := param.Grad().Data()

		m := a.m[i]
		if m == nil {
			m = make([]float32, len(w))
			a.m[i] = m
		}
		v := a.v[i]
		if v == nil {
			v = make([]float32, len(w))
			a.v[i] = v
		}

		for j := range w {
			gj := g[j]
			m[j] = a.beta1*m[j] + (1-a.beta1)*gj
			v[j] = a.beta2*v[j] + (1-a.beta2)*gj*gj

			mHat := m[j] / biasCorrection1
			vHat := v[j] / biasCorrection2
			w[j] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// Timestep returns the current timestep, useful for monitoring.
func (a *Adam) Timestep() int {
	return a.t
}
