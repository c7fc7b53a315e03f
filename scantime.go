// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

import (
	"fmt"
	"strconv"
	"time"
)

// Convert an alist time tag like "094-003300" (day of year, hhmmss) of the given year to UTC time
func ParseTimetag(year int, tag string) (time.Time, error) {
	if len(tag) != 10 || tag[3] != '-' {
		return time.Time{}, fmt.Errorf("invalid time tag (tag=%s)", tag)
	}
	var v [4]int
	for i, s := range []string{tag[0:3], tag[4:6], tag[6:8], tag[8:10]} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time tag (tag=%s): %w", tag, err)
		}
		v[i] = n
	}
	doy, hh, mm, ss := v[0], v[1], v[2], v[3]
	if doy < 1 || doy > 366 || hh > 23 || mm > 59 || ss > 60 {
		return time.Time{}, fmt.Errorf("time tag out of range (tag=%s)", tag)
	}
	t := time.Date(year, 1, 1, hh, mm, ss, 0, time.UTC)
	return t.AddDate(0, 0, doy-1), nil
}

// Inverse of ParseTimetag
func FormatTimetag(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%03d-%02d%02d%02d", t.YearDay(), t.Hour(), t.Minute(), t.Second())
}
