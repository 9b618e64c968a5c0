package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Observation is one logged point of the training run.
type Observation struct {
	Epoch    int
	Batch    int
	Loss     float32
	Accuracy float32 // in [0, 1]
}

// History records the windowed metrics emitted during training, in order.
type History struct {
	observations []Observation
}

// Add appends one observation.
func (h *History) Add(o Observation) {
	h.observations = append(h.observations, o)
}

// Observations returns all recorded points in order.
func (h *History) Observations() []Observation {
	return h.observations
}

// Len returns the number of recorded points.
func (h *History) Len() int {
	return len(h.observations)
}

// SaveLossPlot renders the loss curve to a PNG at path.
func (h *History) SaveLossPlot(path, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "report window"
	p.Y.Label.Text = "loss"

	pts := make(plotter.XYs, len(h.observations))
	for i, o := range h.observations {
		pts[i].X = float64(i)
		pts[i].Y = float64(o.Loss)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "train: build loss line")
	}
	p.Add(line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "train: save loss plot %s", path)
	}
	return nil
}
