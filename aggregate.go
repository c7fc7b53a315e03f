// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Per-baseline, per-channel values (phase [deg], slope [deg/channel] or delay [ns]).
// Row i of Values belongs to Baselines[i]. Values is nil when there are no baselines.
type PhaseTable struct {
	Baselines []string
	Values    *mat.Dense
}

func (p *PhaseTable) Len() int {
	return len(p.Baselines)
}

// Number of channels (0 for an empty table)
func (p *PhaseTable) NChan() int {
	if p.Values == nil {
		return 0
	}
	_, c := p.Values.Dims()
	return c
}

// Values of one baseline
func (p *PhaseTable) Row(bl string) ([]float64, bool) {
	i := slices.Index(p.Baselines, bl)
	if i < 0 {
		return nil, false
	}
	return mat.Row(nil, i, p.Values), true
}

// Same baselines with other values
func (p *PhaseTable) With(v *mat.Dense) *PhaseTable {
	return &PhaseTable{Baselines: slices.Clone(p.Baselines), Values: v}
}

func (p *PhaseTable) String() string {
	var sb strings.Builder
	for i, bl := range p.Baselines {
		sb.WriteString(bl)
		for _, v := range p.Values.RawRowView(i) {
			sb.WriteString(fmt.Sprintf(" %8.3f", v))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Average the visibilities of each baseline over the records with one of
// the given polarizations (all records if pols is empty) and return the
// phase of the mean per channel. A channel missing in any record of a
// baseline stays missing (NaN) in the average.
func Aggregate(recs []Record, pols []string) *PhaseTable {

	sum := map[string][]complex128{}
	num := map[string]int{}
	for _, rec := range recs {
		if len(pols) > 0 && !slices.Contains(pols, rec.Row.Pol) {
			continue
		}
		bl := rec.Row.Baseline
		s, ok := sum[bl]
		if !ok {
			s = make([]complex128, len(rec.Vis))
			sum[bl] = s
		}
		for i, v := range rec.Vis {
			s[i] += v
		}
		num[bl]++
	}

	bls := maps.Keys(sum)
	slices.Sort(bls)
	t := &PhaseTable{Baselines: bls}
	if len(bls) == 0 {
		return t
	}

	nchan := len(sum[bls[0]])
	t.Values = mat.NewDense(len(bls), nchan, nil)
	for i, bl := range bls {
		n := complex(float64(num[bl]), 0)
		for j, s := range sum[bl] {
			t.Values.Set(i, j, Arg(s/n))
		}
	}
	PrintD(2, "aggregate %v: %d baselines\n%s", pols, len(bls), t)
	return t
}
