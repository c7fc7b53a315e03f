// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// HOPS fringe alist (version 5 and 6)
// Columns are whitespace separated. Lines beginning with '*' are comments.
// Version 6 appends ra_hrs, dec_deg and resid_delay to the version 5 columns,
// so the column positions used here are common to both.

var ErrBadAlist = errors.New("invalid alist")

// Column positions (0-based)
const (
	colVersion   = 0
	colRootID    = 1
	colExtentNo  = 3
	colExptNo    = 7
	colScanID    = 8
	colYear      = 10
	colTimetag   = 11
	colSource    = 13
	colBaseline  = 14
	colQuality   = 15
	colFreqCode  = 16
	colPol       = 17
	colAmp       = 19
	colSnr       = 20
	colResidPhas = 21
	nColMin      = colResidPhas + 1
)

// One fringe record (one baseline, one polarization, one scan)
type Row struct {
	Version   int
	RootID    string    // Root code like "3LCXNH"
	ExtentNo  int       // Fringe file extent number
	ExptNo    int       // Experiment number
	ScanID    string    // Scan name like "094-0033"
	Time      time.Time // Scan time tag
	Source    string
	Baseline  string // Two one-letter station codes, reference first
	Quality   string
	FreqCode  string
	Pol       string // RR, LL, RL or LR
	Amp       float64
	Snr       float64
	ResidPhas float64 // Residual phase [deg]
}

// Reference (first) station code
func (p *Row) Ref() string {
	return p.Baseline[:1]
}

// Remote (second) station code
func (p *Row) Rem() string {
	return p.Baseline[1:]
}

// Render the row as an alist v6 line. Columns not held by Row are written as zero.
func (p *Row) Line() string {
	return fmt.Sprintf("%d %s 2 %d 0 0 0 %d %s 000-000000 %d %s 0 %s %s %s %s %s 0 %g %g %g 0 A 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		p.Version, p.RootID, p.ExtentNo, p.ExptNo, p.ScanID, p.Time.Year(), FormatTimetag(p.Time),
		p.Source, p.Baseline, orDash(p.Quality), p.FreqCode, p.Pol, p.Amp, p.Snr, p.ResidPhas)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Structure to store all rows of an alist file in file order
type Alist struct {
	Rows []*Row
}

// Number of rows per baseline
func (p *Alist) String() string {
	if len(p.Rows) == 0 {
		return "NO DATA"
	}
	n := map[string]int{}
	bls := []string{}
	for _, r := range p.Rows {
		if _, ok := n[r.Baseline]; !ok {
			bls = append(bls, r.Baseline)
		}
		n[r.Baseline]++
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("rows: %d\n", len(p.Rows)))
	for _, bl := range bls {
		sb.WriteString(fmt.Sprintf("\t%s: %d\n", bl, n[bl]))
	}
	return sb.String()
}

// Read alist
func ReadAlist(r io.Reader) (*Alist, error) {

	a := &Alist{Rows: make([]*Row, 0)}
	nBad := 0

	// Reader to read line by line with newline as delimiter
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ln := 0
	for s.Scan() {
		ln++
		line := strings.TrimSpace(s.Text())

		// Skip blank and comment lines
		if len(line) == 0 || line[0] == '*' {
			continue
		}

		row, err := parseAlistLine(line)
		if err != nil {
			PrintD(1, "parseAlistLine() failed. line=%d err=%s", ln, err.Error())
			nBad++
			continue
		}
		a.Rows = append(a.Rows, row)
	}

	// Check if reading completed without error
	if err := s.Err(); err != nil {
		return nil, err
	}

	if nBad > 0 {
		PrintW("skipped unreadable alist lines", "count", nBad)
		if len(a.Rows) == 0 {
			return nil, fmt.Errorf("%w: no readable rows (%d bad lines)", ErrBadAlist, nBad)
		}
	}
	return a, nil
}

func parseAlistLine(line string) (*Row, error) {
	f := strings.Fields(line)
	if len(f) < nColMin {
		return nil, fmt.Errorf("%w: %d columns, need %d", ErrBadAlist, len(f), nColMin)
	}
	var err error
	row := &Row{
		RootID:   f[colRootID],
		ScanID:   f[colScanID],
		Source:   f[colSource],
		Baseline: f[colBaseline],
		Quality:  f[colQuality],
		FreqCode: f[colFreqCode],
		Pol:      strings.ToUpper(f[colPol]),
	}
	if len(row.Baseline) != 2 {
		return nil, fmt.Errorf("%w: baseline %q", ErrBadAlist, row.Baseline)
	}
	ints := []struct {
		col int
		dst *int
	}{
		{colVersion, &row.Version},
		{colExtentNo, &row.ExtentNo},
		{colExptNo, &row.ExptNo},
	}
	for _, c := range ints {
		if *c.dst, err = strconv.Atoi(f[c.col]); err != nil {
			return nil, fmt.Errorf("%w: column %d: %w", ErrBadAlist, c.col+1, err)
		}
	}
	if row.Version != 5 && row.Version != 6 {
		return nil, fmt.Errorf("%w: unsupported alist version %d", ErrBadAlist, row.Version)
	}
	flts := []struct {
		col int
		dst *float64
	}{
		{colAmp, &row.Amp},
		{colSnr, &row.Snr},
		{colResidPhas, &row.ResidPhas},
	}
	for _, c := range flts {
		if *c.dst, err = strconv.ParseFloat(f[c.col], 64); err != nil {
			return nil, fmt.Errorf("%w: column %d: %w", ErrBadAlist, c.col+1, err)
		}
	}
	year, err := strconv.Atoi(f[colYear])
	if err != nil {
		return nil, fmt.Errorf("%w: year: %w", ErrBadAlist, err)
	}
	if row.Time, err = ParseTimetag(year, f[colTimetag]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadAlist, err)
	}
	return row, nil
}
