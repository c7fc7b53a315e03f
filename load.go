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
	"math/cmplx"
	"strings"

	"golang.org/x/exp/slices"
)

var ErrNoRows = errors.New("no usable rows")

// An alist row together with its per-channel visibilities.
// Vis has the dataset channel count; missing channels are NaN.
type Record struct {
	Row *Row
	Vis []complex128
}

// Options for selecting rows and loading their channel data
type LoadOpt struct {
	SnrMin float64  // Rows below this SNR are skipped
	Ref    string   // Reference station code
	Pols   []string // Polarizations to keep
	NChan  int      // Channel count. 0: longest channel vector found
}

func NewLoadOpt() *LoadOpt {
	return &LoadOpt{
		SnrMin: SnrMin,
		Ref:    RefStation,
		Pols:   slices.Clone(ParPols),
		NChan:  0,
	}
}

// Rows usable for phase-cal: enough SNR, a selected polarization, and a
// baseline between the reference station and another station
func SelectRows(rows []*Row, opt *LoadOpt) []*Row {
	sel := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if r.Snr < opt.SnrMin {
			continue
		}
		if !slices.Contains(opt.Pols, r.Pol) {
			continue
		}
		if strings.Count(r.Baseline, opt.Ref) != 1 {
			continue
		}
		sel = append(sel, r)
	}
	PrintA("rows selected: %d of %d (snr >= %g, pols %v, ref %s)", len(sel), len(rows), opt.SnrMin, opt.Pols, opt.Ref)
	return sel
}

// Select rows, read their channel visibilities and remove the residual
// phase of the fringe solution from every channel. Baselines are oriented
// with the reference station first. Rows missing more than the last
// channel are skipped with a warning.
func Load(rows []*Row, src VisSource, opt *LoadOpt) ([]Record, error) {

	sel := SelectRows(rows, opt)

	// Read channel data
	recs := make([]Record, 0, len(sel))
	for _, r := range sel {
		v, err := src.ChannelVis(r)
		if err != nil {
			PrintW("no channel data, row skipped", "file", src.Name(r), "err", err)
			continue
		}
		recs = append(recs, Record{Row: r, Vis: v})
	}
	if len(recs) == 0 {
		return nil, ErrNoRows
	}

	// Dataset channel count
	nchan := opt.NChan
	if nchan <= 0 {
		for _, rec := range recs {
			nchan = max(nchan, len(rec.Vis))
		}
	}
	if nchan == 0 {
		return nil, fmt.Errorf("%w: no channel data in %d rows", ErrTooFewChannels, len(recs))
	}

	// Only a missing last channel can be recovered later
	kept := recs[:0]
	for _, rec := range recs {
		if nchan-len(rec.Vis) > 1 {
			PrintW("channel data too short, row skipped", "file", src.Name(rec.Row), "have", len(rec.Vis), "want", nchan)
			continue
		}
		rec.Vis = correctVis(rec, nchan, src)
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return nil, ErrNoRows
	}

	return Orient(kept, opt.Ref), nil
}

// Fit the visibilities to nchan channels and rotate them by -resid_phas
func correctVis(rec Record, nchan int, src VisSource) []complex128 {
	n := len(rec.Vis)
	if n < nchan {
		PrintW("short channel data", "file", src.Name(rec.Row), "have", n, "want", nchan, "missing", nchan-n)
	}
	rot := Cis(-rec.Row.ResidPhas)
	v := make([]complex128, nchan)
	for i := range v {
		if i < n {
			v[i] = rec.Vis[i] * rot
		} else {
			v[i] = cmplx.NaN()
		}
	}
	return v
}

// Return records with the reference station first on every baseline.
// Flipped records get the reversed baseline and polarization labels and
// conjugated visibilities. The input is not modified.
func Orient(recs []Record, ref string) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		if rec.Row.Rem() != ref {
			out[i] = rec
			continue
		}
		PrintW("reference station second, baseline flipped", "baseline", rec.Row.Baseline, "scan", rec.Row.ScanID, "pol", rec.Row.Pol)
		row := *rec.Row
		row.Baseline = reverse(row.Baseline)
		row.Pol = reverse(row.Pol)
		v := make([]complex128, len(rec.Vis))
		for k, a := range rec.Vis {
			v[k] = cmplx.Conj(a)
		}
		out[i] = Record{Row: &row, Vis: v}
	}
	return out
}

func reverse(s string) string {
	b := []byte(s)
	slices.Reverse(b)
	return string(b)
}
