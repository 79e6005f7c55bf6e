package report

import (
	"errors"
	"fmt"
	"image/color"

	"NoteValuator/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RenderVolatilityChart draws annualized rolling volatility against date and
// saves it to path. The image format follows the file extension.
func RenderVolatilityChart(points []model.VolatilityPoint, title, path string) error {
	if len(points) == 0 {
		return errors.New("no volatility points to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Annualized Volatility"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(points))
	for i, v := range points {
		pts[i].X = float64(v.Time.Unix())
		pts[i].Y = v.Volatility
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Color = color.RGBA{B: 200, A: 255}
	p.Add(line)

	if err := p.Save(14*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
