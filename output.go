// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Output destination: either a file path or an already open stream.
// A path is created and closed by Write; a stream is written to and left open.
type Target struct {
	Path   string
	Stream io.Writer
}

func PathTarget(fn string) Target {
	return Target{Path: fn}
}

func StreamTarget(w io.Writer) Target {
	return Target{Stream: w}
}

func (p Target) String() string {
	if p.Stream != nil {
		return "<stream>"
	}
	return p.Path
}

// Call fn with the destination writer
func (p Target) Write(fn func(w io.Writer) error) (err error) {
	if p.Stream != nil {
		return fn(p.Stream)
	}
	f, err := os.Create(p.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	return fn(f)
}

// Tables written in table mode for the given number of destinations.
// Several destinations get RR, LL, combined, delay and slope in this order;
// a single destination gets the combined phases.
func Tables(rslt *Result, nOut int) []*PhaseTable {
	if nOut <= 1 {
		return []*PhaseTable{rslt.All}
	}
	all := []*PhaseTable{rslt.RR, rslt.LL, rslt.All, rslt.Delay, rslt.Slope}
	return all[:min(nOut, len(all))]
}

// Write a table: baseline label followed by one value per channel, space separated, no header
func WriteTable(w io.Writer, t *PhaseTable) error {
	cw := csv.NewWriter(w)
	cw.Comma = ' '
	for i, bl := range t.Baselines {
		rec := []string{bl}
		for _, v := range t.Values.RawRowView(i) {
			rec = append(rec, strconv.FormatFloat(v, 'g', 9, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Options for control-code output
type CCOpt struct {
	Ref   string // Reference station code
	Chans string // Channel identifiers, in channel order
	Prov  string // Provenance comment written first (without the leading "* ")
}

func NewCCOpt() *CCOpt {
	return &CCOpt{
		Ref:   RefStation,
		Chans: ChanIDs,
		Prov:  Provenance(),
	}
}

// Write fourfit control-file blocks that remove the estimated phases and delays.
// One block per baseline, scoped to the remote station.
func WriteControlCodes(w io.Writer, rslt *Result, opt *CCOpt) error {
	nchan := rslt.All.NChan()
	if nchan > len(opt.Chans) {
		return fmt.Errorf("%d channels but only %d channel identifiers", nchan, len(opt.Chans))
	}
	chans := opt.Chans[:nchan]

	if _, err := fmt.Fprintf(w, "* %s\n", opt.Prov); err != nil {
		return err
	}
	for _, bl := range rslt.All.Baselines {
		rem := strings.Replace(bl, opt.Ref, "", 1)
		if _, err := fmt.Fprintf(w, "if station %s\n", rem); err != nil {
			return err
		}
		directives := []struct {
			key string
			t   *PhaseTable
		}{
			{"pc_phases_r", rslt.RR},
			{"pc_phases_l", rslt.LL},
			{"delay_offs", rslt.Delay},
		}
		for _, d := range directives {
			v, ok := d.t.Row(bl)
			if !ok {
				continue
			}
			var sb strings.Builder
			sb.WriteString("  " + d.key + " " + chans)
			for _, a := range v {
				sb.WriteString(" " + strconv.FormatFloat(-a, 'f', 6, 64))
			}
			sb.WriteString("\n")
			if _, err := io.WriteString(w, sb.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Time, user, host, working directory and command line of this run
func Provenance() string {
	u := "unknown"
	if cu, err := user.Current(); err == nil {
		u = cu.Username
	}
	h, err := os.Hostname()
	if err != nil {
		h = "unknown"
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "?"
	}
	args := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	return fmt.Sprintf("%s %s@%s:%s$ %s", time.Now().UTC().Format(time.RFC3339), u, h, wd, strings.Join(args, " "))
}
