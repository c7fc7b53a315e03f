// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func rec(bl, pol string, v []complex128) Record {
	return Record{Row: newRow(bl, pol, 100, 0, 1), Vis: v}
}

func TestAggregate(t *testing.T) {
	recs := []Record{
		rec("AY", "RR", phases(10, 170)),
		rec("AY", "LL", phases(30, -170)), // vector mean across +-180
		rec("AX", "RR", phases(0, 90)),
		rec("AX", "RL", phases(80, 80)),
	}

	all := Aggregate(recs, ParPols)
	if len(all.Baselines) != 2 || all.Baselines[0] != "AX" || all.Baselines[1] != "AY" {
		t.Fatalf("baselines = %v", all.Baselines)
	}
	if v, _ := all.Row("AX"); !sameVals(v, []float64{0, 90}) {
		t.Errorf("AX = %v", v)
	}
	v, _ := all.Row("AY")
	if math.Abs(v[0]-20) > tol || math.Abs(math.Abs(v[1])-180) > tol {
		t.Errorf("AY = %v, want [20 +-180]", v)
	}

	ll := Aggregate(recs, []string{"LL"})
	if ll.Len() != 1 || ll.Baselines[0] != "AY" {
		t.Errorf("LL baselines = %v", ll.Baselines)
	}
	if _, ok := ll.Row("AX"); ok {
		t.Errorf("AX found in LL table")
	}

	every := Aggregate(recs, nil)
	if v, _ := every.Row("AX"); !sameVals(v, []float64{40, 85}) {
		t.Errorf("all pols AX = %v", v)
	}
}

func TestAggregate_Missing(t *testing.T) {
	short := phases(10, 20)
	short = append(short, cmplx.NaN())
	recs := []Record{
		rec("AX", "RR", phases(10, 20, 30)),
		rec("AX", "LL", short),
	}
	v, _ := Aggregate(recs, ParPols).Row("AX")
	if !sameVals(v, []float64{10, 20, nan}) {
		t.Errorf("AX = %v, want [10 20 NaN]", v)
	}
}

func TestAggregate_Empty(t *testing.T) {
	tb := Aggregate([]Record{rec("AX", "RL", phases(1))}, ParPols)
	if tb.Len() != 0 || tb.NChan() != 0 || tb.Values != nil {
		t.Errorf("table = %+v", tb)
	}
}

func TestPhaseTable(t *testing.T) {
	tb := &PhaseTable{Baselines: []string{"AX", "AY"}, Values: mat.NewDense(2, 2, []float64{1, 2, 3, 4})}
	if tb.NChan() != 2 {
		t.Errorf("NChan = %d", tb.NChan())
	}
	v, ok := tb.Row("AY")
	if !ok || !sameVals(v, []float64{3, 4}) {
		t.Errorf("Row(AY) = %v %v", v, ok)
	}
	v[0] = 100
	if tb.Values.At(1, 0) != 3 {
		t.Errorf("Row shares storage with the table")
	}
	w := tb.With(nil)
	w.Baselines[0] = "AZ"
	if tb.Baselines[0] != "AX" {
		t.Errorf("With shares baselines")
	}
}
