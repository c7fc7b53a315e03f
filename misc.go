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
	"os"

	"github.com/charmbracelet/log"
)

// ------------------------------------
// Mini functions
// ------------------------------------

func ToDeg(rad float64) float64 {
	return rad / math.Pi * 180.0
}

func ToRad(deg float64) float64 {
	return deg / 180.0 * math.Pi
}

// Unit phasor for an angle in degrees
func Cis(deg float64) complex128 {
	return cmplx.Rect(1, ToRad(deg))
}

// Phase of a complex value in degrees, (-180, 180]
func Arg(v complex128) float64 {
	return ToDeg(cmplx.Phase(v))
}

// ------------------------------------
// Diagnostic output (stderr)
// ------------------------------------

var Logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "gopcal",
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// Debug display level
var DBG_ int

// Set the debug display level. Level 1 and above enables debug records.
func SetDebug(v int) {
	DBG_ = v
	if v >= 1 {
		Logger.SetLevel(log.DebugLevel)
	} else {
		Logger.SetLevel(log.InfoLevel)
	}
}

func PrintA(format string, a ...any) {
	Logger.Infof(format, a...)
}

func PrintW(msg string, keyvals ...any) {
	Logger.Warn(msg, keyvals...)
}

// Debug display
func PrintD(v int, format string, a ...any) {
	if DBG_ >= v {
		Logger.Debugf(format, a...)
	}
}

func PrintE(err error) {
	Logger.Error(err.Error())
}
