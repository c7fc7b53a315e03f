// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.10.19
//

package gopcal

const (
	DNu        = 58.59375e6 // Default frequency separation between adjacent channels [Hz]
	RefStation = "A"        // Default phase reference station (ALMA)
	SnrMin     = 50.0       // Default SNR threshold for rows to be used
	MaxOutputs = 5          // Maximum number of output destinations
	NSlot210   = 64         // Number of channel slots in a type-210 record
)

// fourfit channel identifiers, in channel order
const ChanIDs = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789$%"

// Parallel-hand polarizations used for phase-cal
var ParPols = []string{"RR", "LL"}
