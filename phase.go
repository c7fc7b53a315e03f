// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooFewChannels  = errors.New("too few channels")
	ErrUnfilledChannel = errors.New("missing channel value")
)

// Remove artificial 360 deg jumps from a phase sequence [deg].
// Every entry from a jump onward is shifted by the same correction, so the
// correction of one entry changes the reference for all later ones.
// NaN entries are passed through and do not become the reference.
func Unwrap(deg []float64) []float64 {
	y := slices.Clone(deg)
	corr := 0.0
	prev := math.NaN()
	for i := range y {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		y[i] += corr
		if !math.IsNaN(prev) {
			d := y[i] - prev
			if d > 180 {
				k := 360 * math.Ceil((d-180)/360)
				y[i] -= k
				corr -= k
			} else if d < -180 {
				k := 360 * math.Ceil((-180-d)/360)
				y[i] += k
				corr += k
			}
		}
		prev = y[i]
	}
	return y
}

// Shift a phase sequence [deg] by a multiple of 360 deg so that its mean is
// within [-180, 180]. Both ends are accepted so that the correction never
// toggles between them.
func Offset(deg []float64) []float64 {
	y := slices.Clone(deg)
	dir := 0
	for {
		m := finiteMean(y)
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return y
		}
		switch {
		case m > 180 && dir >= 0:
			floats.AddConst(-360*math.Ceil((m-180)/360), y)
			dir = 1
		case m < -180 && dir <= 0:
			floats.AddConst(360*math.Ceil((-180-m)/360), y)
			dir = -1
		default:
			return y
		}
	}
}

// Mean of the non-NaN entries. NaN if there are none.
func finiteMean(y []float64) float64 {
	v := make([]float64, 0, len(y))
	for _, a := range y {
		if !math.IsNaN(a) {
			v = append(v, a)
		}
	}
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// Coefficients of y = a + b*x + c*x^2 through (0,y0), (1,y1), (2,y2).
// Each element of the vectors is an independent fit. All lengths must match.
func QFit(y0, y1, y2 mat.Vector) (a, b, c *mat.VecDense) {
	n := y0.Len()
	a = mat.VecDenseCopyOf(y0)
	b = mat.NewVecDense(n, nil)
	b.ScaleVec(-1.5, y0)
	b.AddScaledVec(b, 2, y1)
	b.AddScaledVec(b, -0.5, y2)
	c = mat.NewVecDense(n, nil)
	c.ScaleVec(0.5, y0)
	c.AddScaledVec(c, -1, y1)
	c.AddScaledVec(c, 0.5, y2)
	return
}

// Fill a missing (NaN) last channel of each row by extrapolating the
// quadratic through the three channels before it (x=0,1,2 -> x=3).
// Rows whose last channel is present are copied as is.
func FixNaN(p mat.Matrix) (*mat.Dense, error) {
	r, n := p.Dims()
	if n < 4 {
		return nil, fmt.Errorf("%w: extrapolation needs 4 channels, got %d", ErrTooFewChannels, n)
	}
	q := mat.DenseCopyOf(p)
	a, b, c := QFit(q.ColView(n-4), q.ColView(n-3), q.ColView(n-2))
	for i := range r {
		if math.IsNaN(q.At(i, n-1)) {
			q.Set(i, n-1, a.AtVec(i)+3*b.AtVec(i)+9*c.AtVec(i))
		}
	}
	return q, nil
}

// Slope of each row along the channel axis.
// - Interior channels: central difference
// - First channel: slope at x=0 of the quadratic through channels 0,1,2
// - Last channel: slope at x=2 of the quadratic through the last 3 channels
// The result is divided by dx (channel spacing in index units, usually 1).
func Derivative(p mat.Matrix, dx float64) (*mat.Dense, error) {
	r, n := p.Dims()
	if n < 3 {
		return nil, fmt.Errorf("%w: derivative needs 3 channels, got %d", ErrTooFewChannels, n)
	}
	if i, ok := findNaN(p); ok {
		return nil, fmt.Errorf("%w: row %d", ErrUnfilledChannel, i)
	}
	q := mat.DenseCopyOf(p)
	d := mat.NewDense(r, n, nil)
	for j := 1; j < n-1; j++ {
		for i := range r {
			d.Set(i, j, (q.At(i, j+1)-q.At(i, j-1))/2)
		}
	}
	_, b0, _ := QFit(q.ColView(0), q.ColView(1), q.ColView(2))
	_, b1, c1 := QFit(q.ColView(n-3), q.ColView(n-2), q.ColView(n-1))
	for i := range r {
		d.Set(i, 0, b0.AtVec(i))
		d.Set(i, n-1, b1.AtVec(i)+4*c1.AtVec(i))
	}
	if dx != 1 {
		d.Scale(1/dx, d)
	}
	return d, nil
}

// Convert phase slope [deg/channel] to delay [ns] for the given channel spacing [Hz].
func Delay(slope mat.Matrix, spacingHz float64) *mat.Dense {
	r, n := slope.Dims()
	d := mat.NewDense(r, n, nil)
	d.Apply(func(_, _ int, v float64) float64 {
		return 1e9 * (v / 360) / spacingHz
	}, slope)
	return d
}

// Row index of the first NaN element
func findNaN(p mat.Matrix) (int, bool) {
	r, n := p.Dims()
	for i := range r {
		for j := range n {
			if math.IsNaN(p.At(i, j)) {
				return i, true
			}
		}
	}
	return 0, false
}
