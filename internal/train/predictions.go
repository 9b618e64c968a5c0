package train

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/deepnotes-ml/deepnotes/internal/data"
)

// imageGrid adapts one [C, H, W] image from a batch to plotter.GridXYZ.
// Multi-channel images are averaged to a single intensity plane.
type imageGrid struct {
	data    []float32
	c, h, w int
}

func (g imageGrid) Dims() (int, int) { return g.w, g.h }
func (g imageGrid) X(c int) float64  { return float64(c) }
func (g imageGrid) Y(r int) float64  { return float64(r) }

func (g imageGrid) Z(c, r int) float64 {
	// Row 0 of the image is the top; heatmap y grows upward.
	row := g.h - 1 - r
	var sum float32
	for ch := 0; ch < g.c; ch++ {
		sum += g.data[(ch*g.h+row)*g.w+c]
	}
	return float64(sum) / float64(g.c)
}

// SavePredictionGrid renders the batch's images as a tiled grid of heatmaps,
// each titled with the predicted and true class, to a PNG at path. Useful as
// a quick qualitative check next to the loss curve.
func SavePredictionGrid(path string, batch *data.Batch, predictions []int, cols int) error {
	if cols <= 0 {
		return errors.Errorf("train: invalid grid column count %d", cols)
	}
	if len(predictions) != batch.Size {
		return errors.Errorf("train: %d predictions for batch of %d", len(predictions), batch.Size)
	}
	shape := batch.Inputs.Shape()
	if len(shape) != 4 {
		return errors.Errorf("train: prediction grid needs [N, C, H, W] inputs, got %v", shape)
	}
	c, h, w := shape[1], shape[2], shape[3]
	imageLen := c * h * w
	rows := (batch.Size + cols - 1) / cols

	colors := palette.Heat(16, 1)
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for col := range plots[r] {
			i := r*cols + col
			if i >= batch.Size {
				continue
			}
			p := plot.New()
			p.HideAxes()
			title := fmt.Sprintf("pred %d", predictions[i])
			if batch.Labels != nil {
				title = fmt.Sprintf("pred %d / true %d", predictions[i], batch.Labels[i])
			}
			p.Title.Text = title
			p.Title.TextStyle.Font.Size = vg.Points(8)

			grid := imageGrid{
				data: batch.Inputs.Data()[i*imageLen : (i+1)*imageLen],
				c:    c, h: h, w: w,
			}
			p.Add(plotter.NewHeatMap(grid, colors))
			plots[r][col] = p
		}
	}

	const tile = 1.2 * vg.Inch
	img := vgimg.New(tile*vg.Length(cols), tile*vg.Length(rows))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Points(2), PadY: vg.Points(2),
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for col := range plots[r] {
			if plots[r][col] != nil {
				plots[r][col].Draw(canvases[r][col])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "train: create prediction grid %s", path)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return errors.Wrapf(err, "train: write prediction grid %s", path)
	}
	return nil
}
