// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Corrections for known issues of an alist, like
//
//	rules:
//	  - name: mislabelled station code
//	    expt_no: 3597
//	    rename: {P: A}
//	  - name: swapped feeds
//	    station: X
//	    scans: [094-0033]
//	    swap_pol: true
//	  - name: bad scan
//	    scans: [095-0120]
//	    drop: true
//
// Match fields left empty (or zero) match every row.
type FixRule struct {
	Name     string            `yaml:"name"`
	ExptNo   int               `yaml:"expt_no"`
	Scans    []string          `yaml:"scans"`
	Source   string            `yaml:"source"`
	Station  string            `yaml:"station"`  // Rows whose baseline includes this station
	Rename   map[string]string `yaml:"rename"`   // Station code replacements
	SwapPol  bool              `yaml:"swap_pol"` // Exchange R and L of Station
	Drop     bool              `yaml:"drop"`
	PhaseOff float64           `yaml:"phase_offset"` // Added to the residual phase [deg]
}

type FixRules struct {
	Rules []FixRule `yaml:"rules"`
}

// Decode rules. Unknown keys are rejected.
func ReadFixRules(r io.Reader) (*FixRules, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f FixRules
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fix rules: %w", err)
	}
	for i, rule := range f.Rules {
		if rule.SwapPol && len(rule.Station) != 1 {
			return nil, fmt.Errorf("fix rule %d (%s): swap_pol needs a one-letter station", i+1, rule.Name)
		}
		for from, to := range rule.Rename {
			if len(from) != 1 || len(to) != 1 {
				return nil, fmt.Errorf("fix rule %d (%s): rename %q -> %q is not a one-letter station code", i+1, rule.Name, from, to)
			}
		}
	}
	return &f, nil
}

func LoadFixRules(fn string) (*FixRules, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFixRules(f)
}

func (p *FixRule) match(row *Row) bool {
	if p.ExptNo != 0 && p.ExptNo != row.ExptNo {
		return false
	}
	if len(p.Scans) > 0 && !slices.Contains(p.Scans, row.ScanID) {
		return false
	}
	if p.Source != "" && p.Source != row.Source {
		return false
	}
	if p.Station != "" && !strings.Contains(row.Baseline, p.Station) {
		return false
	}
	return true
}

// Return corrected copies of the rows. The input rows are not modified.
// Rules are applied in order, each one to the output of the previous one.
func (p *FixRules) Apply(rows []*Row) []*Row {
	out := make([]*Row, 0, len(rows))
	nFix, nDrop := 0, 0
next:
	for _, r := range rows {
		row := *r
		fixed := false
		for i := range p.Rules {
			rule := &p.Rules[i]
			if !rule.match(&row) {
				continue
			}
			if rule.Drop {
				PrintD(1, "fix %q: drop %s %s %s", rule.Name, row.ScanID, row.Baseline, row.Pol)
				nDrop++
				continue next
			}
			if len(rule.Rename) > 0 {
				b := []byte(row.Baseline)
				for k := range b {
					if to, ok := rule.Rename[string(b[k])]; ok {
						b[k] = to[0]
					}
				}
				row.Baseline = string(b)
			}
			if rule.SwapPol && len(row.Pol) == 2 {
				pol := []byte(row.Pol)
				for k := range 2 {
					if row.Baseline[k:k+1] == rule.Station {
						pol[k] = swapHand(pol[k])
					}
				}
				row.Pol = string(pol)
			}
			row.ResidPhas += rule.PhaseOff
			fixed = true
		}
		if fixed {
			nFix++
		}
		out = append(out, &row)
	}
	if nFix > 0 || nDrop > 0 {
		PrintA("known-issue fixes: %d rows corrected, %d dropped", nFix, nDrop)
	}
	return out
}

func swapHand(c byte) byte {
	switch c {
	case 'R':
		return 'L'
	case 'L':
		return 'R'
	}
	return c
}
