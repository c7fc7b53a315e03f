// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// Version 6 line as written by HOPS (columns after resid_delay omitted)
const alistLine = " 6 3LCXNH  2 12  420  420    0 3597 094-0033 183-015959 2017 094-003300   0 3C279     AX G B LL 32  12.345  148.2 -23.4   9.1 A  0.001  0.002  0.0 0.1 40.1 35.2 120.0 100.0 1.0 2.0 0 0 228100.0 0 0 0 0 400 400 12.9 -5.8 0.0"

func TestReadAlist(t *testing.T) {
	in := "* alist header\n*\n\n" + alistLine + "\n"
	a, err := ReadAlist(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadAlist: %v", err)
	}
	if len(a.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(a.Rows))
	}
	r := a.Rows[0]
	want := Row{
		Version:   6,
		RootID:    "3LCXNH",
		ExtentNo:  12,
		ExptNo:    3597,
		ScanID:    "094-0033",
		Time:      time.Date(2017, 4, 4, 0, 33, 0, 0, time.UTC),
		Source:    "3C279",
		Baseline:  "AX",
		Quality:   "G",
		FreqCode:  "B",
		Pol:       "LL",
		Amp:       12.345,
		Snr:       148.2,
		ResidPhas: -23.4,
	}
	if *r != want {
		t.Fatalf("row = %+v\nwant  %+v", *r, want)
	}
	if r.Ref() != "A" || r.Rem() != "X" {
		t.Errorf("Ref/Rem = %s/%s", r.Ref(), r.Rem())
	}
}

func TestReadAlist_LineRoundTrip(t *testing.T) {
	r := newRow("AY", "RR", 75.5, -12.25, 3)
	a, err := ReadAlist(strings.NewReader(r.Line()))
	if err != nil {
		t.Fatalf("ReadAlist(%q): %v", r.Line(), err)
	}
	if *a.Rows[0] != *r {
		t.Fatalf("got %+v, want %+v", *a.Rows[0], *r)
	}
}

func TestReadAlist_BadLines(t *testing.T) {
	good := newRow("AX", "RR", 100, 0, 1).Line()
	cases := []string{
		"6 short line",
		strings.Replace(good, "6 ", "4 ", 1),           // unsupported version
		strings.Replace(good, " AX ", " AXY ", 1),      // not a baseline
		strings.Replace(good, "094-003300", "94-33", 1), // time tag
	}
	for _, c := range cases {
		a, err := ReadAlist(strings.NewReader(c + "\n" + good + "\n"))
		if err != nil {
			t.Fatalf("ReadAlist(%q): %v", c, err)
		}
		if len(a.Rows) != 1 {
			t.Errorf("%q: rows = %d, want only the good one", c, len(a.Rows))
		}
	}

	_, err := ReadAlist(strings.NewReader("garbage\nmore garbage\n"))
	if !errors.Is(err, ErrBadAlist) {
		t.Errorf("all bad: err = %v, want ErrBadAlist", err)
	}
}

func TestReadAlist_Empty(t *testing.T) {
	a, err := ReadAlist(strings.NewReader("* only comments\n"))
	if err != nil || len(a.Rows) != 0 {
		t.Fatalf("got %v rows, err %v", len(a.Rows), err)
	}
	if a.String() != "NO DATA" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestParseTimetag(t *testing.T) {
	got, err := ParseTimetag(2017, "094-003300")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2017, 4, 4, 0, 33, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if s := FormatTimetag(got); s != "094-003300" {
		t.Errorf("FormatTimetag = %s", s)
	}
	for _, bad := range []string{"", "094003300", "400-000000", "094-250000", "abc-003300"} {
		if _, err := ParseTimetag(2017, bad); err == nil {
			t.Errorf("ParseTimetag(%q) accepted", bad)
		}
	}
}
