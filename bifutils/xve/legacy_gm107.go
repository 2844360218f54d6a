// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"fmt"
)

// LegacyInitializer installs the register policy of a function whose layout
// predates the current generation.
type LegacyInitializer func(dev Device, fn uint8, entry *Entry) error

// Function 1 (HD audio) config space is unchanged since GM107: header, power
// management at 0x60, MSI at 0x68 and PCI Express at 0x78.
var (
	gm107Function1Valid = Bitmap{
		0xff00ffff,
		0x00001fff,
	}
	gm107Function1Writable = Bitmap{
		0x3e00801a,
		0x00000505,
	}
)

// GM107Function1Maps returns copies of the function 1 valid and writable maps.
func GM107Function1Maps() (valid, writable Bitmap) {
	return gm107Function1Valid.Clone(), gm107Function1Writable.Clone()
}

// InitGM107FunctionMap sets up function 1 the way GM107 does. The audio
// function has no MSI-X shadow.
func InitGM107FunctionMap(dev Device, fn uint8, entry *Entry) error {
	if fn != 1 {
		return fmt.Errorf("%w: gm107 legacy map handles function 1, got %d", ErrInvalidArgument, fn)
	}
	return entry.Install(fn, gm107Function1Valid, gm107Function1Writable, Borrow(dev.AzaliaBootConfigSpace()))
}
