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
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var scanTime = time.Date(2017, 4, 4, 0, 33, 0, 0, time.UTC)

// Row of experiment 3597, scan 094-0033
func newRow(bl, pol string, snr, resid float64, ext int) *Row {
	return &Row{
		Version:   6,
		RootID:    fmt.Sprintf("R%05d", ext),
		ExtentNo:  ext,
		ExptNo:    3597,
		ScanID:    "094-0033",
		Time:      scanTime,
		Source:    "3C279",
		Baseline:  bl,
		Quality:   "G",
		FreqCode:  "B",
		Pol:       pol,
		Amp:       0.5,
		Snr:       snr,
		ResidPhas: resid,
	}
}

func writeAlist(t *testing.T, fn string, rows []*Row) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("* test alist\n*\n")
	for _, r := range rows {
		sb.WriteString(r.Line() + "\n")
	}
	if err := os.WriteFile(fn, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write alist: %v", err)
	}
}

// Fringe file with a type-000 header followed by a type-210 record
func writeFringe(t *testing.T, root string, row *Row, amp float32, phs []float64) {
	t.Helper()
	fn := (&FringeDir{Root: root}).Name(row)
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	hdr := make([]byte, 64)
	copy(hdr, "00001")
	a := make([]float32, len(phs))
	p := make([]float32, len(phs))
	for i := range phs {
		a[i] = amp
		p[i] = float32(phs[i])
	}
	b := append(hdr, EncodeType210(a, p)...)
	if err := os.WriteFile(fn, b, 0o644); err != nil {
		t.Fatalf("write fringe: %v", err)
	}
}

// Residual phases of a row whose corrected channel phases are p0 + s*ch
func ramp(p0, s float64, n int, resid float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = p0 + s*float64(i) + resid
	}
	return y
}

func neg(y []float64) []float64 {
	z := make([]float64, len(y))
	for i, v := range y {
		z[i] = -v
	}
	return z
}
