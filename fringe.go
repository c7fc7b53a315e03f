// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Mk4 fringe file
// A fringe file is a sequence of records aligned on 8 bytes. Each record
// starts with a 3-character type and a 2-character version. The type-210
// record holds the residual amplitude and phase of every channel:
//
//	"210" "00" [3]pad  [64]{float32 amp, float32 phase[deg]}  (big endian)
//
// Unused channel slots are zero filled.

var ErrNoType210 = errors.New("no type-210 record")

const (
	hdr210  = 8
	size210 = hdr210 + NSlot210*8
)

// Source of per-channel visibilities for an alist row
type VisSource interface {
	// Residual visibility of each channel in use, in channel order
	ChannelVis(row *Row) ([]complex128, error)
	// Name of the data behind the row (for diagnostics)
	Name(row *Row) string
}

// Fringe files laid out as <root>/<expt_no>/<scan_id>/<baseline>.<freq_code>.<extent_no>.<root_id>
type FringeDir struct {
	Root string
}

func (p *FringeDir) Name(row *Row) string {
	fn := row.Baseline + "." + row.FreqCode + "." + strconv.Itoa(row.ExtentNo) + "." + row.RootID
	return filepath.Join(p.Root, strconv.Itoa(row.ExptNo), row.ScanID, fn)
}

func (p *FringeDir) ChannelVis(row *Row) ([]complex128, error) {
	f, err := os.Open(p.Name(row))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := ReadType210(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(row), err)
	}
	return v, nil
}

// Read the channel visibilities of the first type-210 record.
// The channels in use are the slots before the first zero-filled one.
func ReadType210(r io.Reader) ([]complex128, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	for off := 0; off+size210 <= len(b); off += 8 {
		if !bytes.Equal(b[off:off+3], []byte("210")) || !isDigit(b[off+3]) || !isDigit(b[off+4]) {
			continue
		}
		rec := b[off+hdr210 : off+size210]
		v := make([]complex128, 0, NSlot210)
		for i := range NSlot210 {
			amp := math.Float32frombits(binary.BigEndian.Uint32(rec[i*8:]))
			phs := math.Float32frombits(binary.BigEndian.Uint32(rec[i*8+4:]))
			if amp == 0 && phs == 0 {
				break
			}
			v = append(v, complex(float64(amp), 0)*Cis(float64(phs)))
		}
		return v, nil
	}
	return nil, ErrNoType210
}

// Encode a type-210 record. At most 64 channels are stored.
func EncodeType210(amp, phs []float32) []byte {
	b := make([]byte, size210)
	copy(b, "21000")
	for i := 0; i < len(amp) && i < NSlot210; i++ {
		binary.BigEndian.PutUint32(b[hdr210+i*8:], math.Float32bits(amp[i]))
		binary.BigEndian.PutUint32(b[hdr210+i*8+4:], math.Float32bits(phs[i]))
	}
	return b
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
