// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixYAML = `
rules:
  - name: mislabelled station
    expt_no: 3597
    rename: {P: A}
  - name: swapped feeds
    station: X
    scans: [094-0033]
    swap_pol: true
  - name: bad scan
    scans: [095-0120]
    drop: true
  - name: phase jump
    source: 3C279
    station: "Y"
    phase_offset: 90
`

func TestFixRules_Apply(t *testing.T) {
	rules, err := ReadFixRules(strings.NewReader(fixYAML))
	if err != nil {
		t.Fatalf("ReadFixRules: %v", err)
	}
	if len(rules.Rules) != 4 {
		t.Fatalf("rules = %d, want 4", len(rules.Rules))
	}

	drop := newRow("AZ", "RR", 100, 0, 4)
	drop.ScanID = "095-0120"
	other := newRow("PX", "RR", 100, 0, 5)
	other.ExptNo = 3598
	in := []*Row{
		newRow("PX", "RL", 100, 10, 1),
		newRow("XA", "RL", 100, 10, 2),
		newRow("AY", "LL", 100, 10, 3),
		drop,
		other,
	}
	out := rules.Apply(in)

	want := []struct {
		bl, pol string
		resid   float64
	}{
		{"AX", "RR", 10},  // renamed, then X of the second position swapped
		{"XA", "LL", 10},  // X first
		{"AY", "LL", 100}, // offset
		{"PX", "RL", 0},   // other experiment: no rename, swap only
	}
	if len(out) != len(want) {
		t.Fatalf("rows = %d, want %d", len(out), len(want))
	}
	for i, w := range want {
		r := out[i]
		if r.Baseline != w.bl || r.Pol != w.pol || r.ResidPhas != w.resid {
			t.Errorf("row %d = %s %s %v, want %s %s %v", i, r.Baseline, r.Pol, r.ResidPhas, w.bl, w.pol, w.resid)
		}
	}

	// Inputs untouched
	if in[0].Baseline != "PX" || in[0].Pol != "RL" || in[2].ResidPhas != 10 {
		t.Errorf("input modified: %+v %+v", *in[0], *in[2])
	}
}

func TestReadFixRules_Errors(t *testing.T) {
	cases := []string{
		"rules:\n  - name: x\n    typo: 1\n",
		"rules:\n  - name: x\n    swap_pol: true\n",
		"rules:\n  - name: x\n    rename: {PA: A}\n",
		"rules: [",
	}
	for _, c := range cases {
		if _, err := ReadFixRules(strings.NewReader(c)); err == nil {
			t.Errorf("accepted %q", c)
		}
	}
}

func TestLoadFixRules(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fix.yaml")
	if err := os.WriteFile(fn, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadFixRules(fn)
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	rows := []*Row{newRow("AX", "RR", 100, 0, 1)}
	if out := rules.Apply(rows); len(out) != 1 || out[0] == rows[0] || *out[0] != *rows[0] {
		t.Errorf("no rules should return an equal copy")
	}
	if _, err := LoadFixRules(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("missing file accepted")
	}
}
