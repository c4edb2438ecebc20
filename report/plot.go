// Package report draws the progress of a simulation run.
package report

import (
	"errors"
	"io"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var ErrNoHistory = errors.New("no generations to plot")

// FitnessPlot charts, per generation, the average normalized fitness and
// the share of agents that reached the goal.
func FitnessPlot(history []evolution.GenerationStats, title string) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Share"
	p.Y.Min = 0
	p.Y.Max = 1

	avgPts := make(plotter.XYs, len(history))
	arrivedPts := make(plotter.XYs, len(history))
	for i, s := range history {
		avgPts[i].X = float64(s.Generation)
		avgPts[i].Y = s.AverageFitness

		arrivedPts[i].X = float64(s.Generation)
		if s.Size > 0 {
			arrivedPts[i].Y = float64(s.Arrived) / float64(s.Size)
		}
	}

	avgLine, err := plotter.NewLine(avgPts)
	if err != nil {
		return nil, err
	}
	arrivedLine, err := plotter.NewLine(arrivedPts)
	if err != nil {
		return nil, err
	}
	arrivedLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(plotter.NewGrid(), avgLine, arrivedLine)
	p.Legend.Add("avg fitness", avgLine)
	p.Legend.Add("arrived", arrivedLine)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SavePNG writes the fitness chart of history to path.
func SavePNG(history []evolution.GenerationStats, title, path string) error {
	p, err := FitnessPlot(history, title)
	if err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// WritePNG writes the fitness chart of history to w.
func WritePNG(w io.Writer, history []evolution.GenerationStats, title string) error {
	p, err := FitnessPlot(history, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
