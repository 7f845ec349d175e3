package sim

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/linsde/linsde/gaussian"
)

// NewPathPlot creates a new plot of the state component dim of the
// given sampled paths against time.
// It returns error if no paths are supplied, dim is out of range or
// the gonum plot fails to be created.
func NewPathPlot(paths []*Path, dim int) (*plot.Plot, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("invalid paths supplied")
	}

	_, c := paths[0].States.Dims()
	if dim < 0 || dim >= c {
		return nil, fmt.Errorf("invalid state component: %d", dim)
	}

	p := plot.New()

	p.Title.Text = "Sample paths"
	p.X.Label.Text = "t"
	p.Y.Label.Text = fmt.Sprintf("x[%d]", dim)

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	for i, path := range paths {
		pts := make(plotter.XYs, len(path.Times))
		for j := range path.Times {
			pts[j].X = path.Times[j]
			pts[j].Y = path.States.At(j, dim)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %v", err)
		}
		line.Color = color.RGBA{R: uint8(40 * (i + 1)), B: 128, A: 255}

		p.Add(line)
		if i == 0 {
			p.Legend.Add("sample path", line)
		}
	}

	return p, nil
}

// NewBandPlot creates a new plot of the posterior marginal mean of the
// state component dim against time together with a two standard
// deviation band.
// It returns error if the inputs are inconsistent or the gonum plot
// fails to be created.
func NewBandPlot(ts []float64, marginals []*gaussian.Gaussian, dim int) (*plot.Plot, error) {
	if len(ts) == 0 || len(ts) != len(marginals) {
		return nil, fmt.Errorf("invalid data supplied: %d timestamps, %d marginals", len(ts), len(marginals))
	}

	if dim < 0 || dim >= marginals[0].Dim() {
		return nil, fmt.Errorf("invalid state component: %d", dim)
	}

	p := plot.New()

	p.Title.Text = "Posterior marginals"
	p.X.Label.Text = "t"
	p.Y.Label.Text = fmt.Sprintf("x[%d]", dim)

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	mean := make(plotter.XYs, len(ts))
	upper := make(plotter.XYs, len(ts))
	lower := make(plotter.XYs, len(ts))
	for i := range ts {
		m := marginals[i].Mu[dim]
		sd := math.Sqrt(marginals[i].Sigma.At(0, dim, dim))

		mean[i].X, mean[i].Y = ts[i], m
		upper[i].X, upper[i].Y = ts[i], m+2*sd
		lower[i].X, lower[i].Y = ts[i], m-2*sd
	}

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	meanLine.Color = color.RGBA{R: 255, B: 128, A: 255}

	p.Add(meanLine)
	p.Legend.Add("mean", meanLine)

	var bandScatter *plotter.Scatter
	for _, band := range []plotter.XYs{upper, lower} {
		scatter, err := plotter.NewScatter(band)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %v", err)
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169}
		scatter.Shape = draw.CrossGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		bandScatter = scatter
	}
	p.Legend.Add("2 sd band", bandScatter)

	return p, nil
}
