// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Default file names of the combined, RR and LL plots
var PlotFiles = []string{"pcphase_all.png", "pcphase_rr.png", "pcphase_ll.png"}

const (
	plotW    = 10 * vg.Inch
	plotH    = 6 * vg.Inch
	slopeLen = 0.35 // Half length of a slope segment [channel]
)

// Phase versus channel for every baseline, with a short segment showing
// the local slope at each channel
func PlotPhases(ph, sl *PhaseTable, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Phase (deg)"
	p.Add(plotter.NewGrid())

	for i, bl := range ph.Baselines {
		y := ph.Values.RawRowView(i)
		pts := make(plotter.XYs, len(y))
		for j, v := range y {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", bl, err)
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(bl, sc)

		s, ok := sl.Row(bl)
		if !ok {
			continue
		}
		for j, v := range y {
			seg := plotter.XYs{
				{X: float64(j) - slopeLen, Y: v - slopeLen*s[j]},
				{X: float64(j) + slopeLen, Y: v + slopeLen*s[j]},
			}
			l, err := plotter.NewLine(seg)
			if err != nil {
				return nil, fmt.Errorf("slope %s: %w", bl, err)
			}
			l.LineStyle.Color = plotutil.Color(i)
			l.LineStyle.Width = vg.Points(1)
			p.Add(l)
		}
	}
	p.Legend.Top = true
	return p, nil
}

// Save a plot. The format follows the file extension. A name without
// extension is rendered to a temporary PNG and shown with the system viewer.
func SavePlot(p *plot.Plot, fn string) error {
	if filepath.Ext(fn) != "" {
		return p.Save(plotW, plotH, fn)
	}
	f, err := os.CreateTemp("", filepath.Base(fn)+"-*.png")
	if err != nil {
		return err
	}
	tmp := f.Name()
	f.Close()
	if err := p.Save(plotW, plotH, tmp); err != nil {
		return err
	}
	PrintD(1, "showing %s", tmp)
	return viewerCmd(tmp).Start()
}

func viewerCmd(fn string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", fn)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", fn)
	default:
		return exec.Command("xdg-open", fn)
	}
}

// Render the combined, RR and LL plots to the given files (in this order)
func PlotResult(rslt *Result, files []string) error {
	if len(files) != 3 {
		return fmt.Errorf("3 plot files are needed, got %d", len(files))
	}
	sets := []struct {
		ph, sl *PhaseTable
		title  string
	}{
		{rslt.All, rslt.Slope, "Phase-cal phases (RR+LL)"},
		{rslt.RR, rslt.SlopeRR, "Phase-cal phases (RR)"},
		{rslt.LL, rslt.SlopeLL, "Phase-cal phases (LL)"},
	}
	for i, s := range sets {
		p, err := PlotPhases(s.ph, s.sl, s.title)
		if err != nil {
			return err
		}
		if err := SavePlot(p, files[i]); err != nil {
			return fmt.Errorf("failed to save plot %s: %w", files[i], err)
		}
		PrintD(1, "plot saved: %s", files[i])
	}
	return nil
}
