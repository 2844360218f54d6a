// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

// Function 0 config-space layout on AD102:
//
//	0x000-0x03c  type 0 header
//	0x040-0x044  subsystem ID alias
//	0x060-0x064  power management
//	0x068-0x074  MSI (64-bit)
//	0x078-0x0b0  PCI Express
//	0x0b4-0x0bc  MSI-X
//	0x100-0x128  AER
//	0x138-0x13c  LTR
//	0x140-0x14c  L1 PM substates
//	0x180-0x18c  secondary PCI Express
var ad102Function0Valid = Bitmap{
	0xff03ffff,
	0x0000ffff,
	0x000fc7ff,
	0x0000000f,
}

// Command, cache line, BARs, expansion ROM, interrupt line, PM control, MSI,
// device/link control (1-3), MSI-X control, AER status/mask/severity/control,
// LTR latency, L1SS control, lane error status.
var ad102Function0Writable = Bitmap{
	0x3e0093fa,
	0x00002505,
	0x000c807e,
	0x00000006,
}

// AD102Function0Maps returns copies of the function 0 valid and writable maps.
func AD102Function0Maps() (valid, writable Bitmap) {
	return ad102Function0Valid.Clone(), ad102Function0Writable.Clone()
}
