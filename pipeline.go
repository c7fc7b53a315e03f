// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Options for phase processing
type Opt struct {
	SpacingHz float64 // Frequency separation between adjacent channels [Hz]
	Dx        float64 // Channel step in index units for the derivative
}

func NewOpt() *Opt {
	return &Opt{
		SpacingHz: DNu,
		Dx:        1.0,
	}
}

// Phase-cal products
type Result struct {
	All   *PhaseTable // Phases averaged over RR and LL [deg]. A last channel missing in either is extrapolated.
	RR    *PhaseTable // RR phases [deg]
	LL    *PhaseTable // LL phases [deg]
	Slope *PhaseTable // Slope of All [deg/channel]
	Delay *PhaseTable // Delay of All [ns]

	// Slopes of RR and LL, for diagnostics
	SlopeRR *PhaseTable
	SlopeLL *PhaseTable
}

// Run the phase-cal pipeline on loaded records
func Process(recs []Record, opt *Opt) (*Result, error) {

	if len(recs) == 0 {
		return nil, ErrNoRows
	}
	if opt.SpacingHz <= 0 {
		return nil, fmt.Errorf("invalid channel spacing %g Hz", opt.SpacingHz)
	}

	rslt := &Result{}
	var err error

	// Average and condition each polarization subset
	subsets := []struct {
		pols []string
		dst  **PhaseTable
	}{
		{ParPols, &rslt.All},
		{[]string{"RR"}, &rslt.RR},
		{[]string{"LL"}, &rslt.LL},
	}
	for _, s := range subsets {
		*s.dst, err = Condition(Aggregate(recs, s.pols))
		if err != nil {
			return nil, fmt.Errorf("%v phases: %w", s.pols, err)
		}
	}

	// Slope and delay of the combined phases
	if rslt.Slope, err = slope(rslt.All, opt.Dx); err != nil {
		return nil, fmt.Errorf("slope: %w", err)
	}
	rslt.Delay = rslt.Slope.With(nil)
	if rslt.Slope.Len() > 0 {
		rslt.Delay.Values = Delay(rslt.Slope.Values, opt.SpacingHz)
	}

	if rslt.SlopeRR, err = slope(rslt.RR, opt.Dx); err != nil {
		return nil, fmt.Errorf("RR slope: %w", err)
	}
	if rslt.SlopeLL, err = slope(rslt.LL, opt.Dx); err != nil {
		return nil, fmt.Errorf("LL slope: %w", err)
	}

	PrintA("phase-cal: %d records, %d baselines (RR %d, LL %d)", len(recs), rslt.All.Len(), rslt.RR.Len(), rslt.LL.Len())
	return rslt, nil
}

// Unwrap each baseline, move it to the principal branch and fill a missing
// last channel. Any channel still missing afterwards is an error.
func Condition(t *PhaseTable) (*PhaseTable, error) {
	if t.Len() == 0 {
		return t.With(nil), nil
	}
	r, n := t.Values.Dims()
	u := mat.NewDense(r, n, nil)
	for i := range r {
		u.SetRow(i, Offset(Unwrap(mat.Row(nil, i, t.Values))))
	}
	f, err := FixNaN(u)
	if err != nil {
		return nil, err
	}
	for i := range r {
		for j := range n {
			if math.IsNaN(f.At(i, j)) {
				return nil, fmt.Errorf("%w: baseline %s channel %d", ErrUnfilledChannel, t.Baselines[i], j)
			}
		}
	}
	return t.With(f), nil
}

func slope(t *PhaseTable, dx float64) (*PhaseTable, error) {
	if t.Len() == 0 {
		return t.With(nil), nil
	}
	d, err := Derivative(t.Values, dx)
	if err != nil {
		return nil, err
	}
	return t.With(d), nil
}
