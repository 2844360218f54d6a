// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"slices"
)

// Bitmap marks config-space dwords: bit n of word n/32 covers byte offset 4n.
type Bitmap []uint32

func (b Bitmap) Test(offset int) bool {
	if offset < 0 {
		return false
	}
	dword := offset / 4
	word := dword / 32
	if word >= len(b) {
		return false
	}
	return b[word]&(1<<(dword%32)) != 0
}

// SubsetOf reports whether every offset marked in b is also marked in other.
func (b Bitmap) SubsetOf(other Bitmap) bool {
	for i, word := range b {
		var o uint32
		if i < len(other) {
			o = other[i]
		}
		if word&^o != 0 {
			return false
		}
	}
	return true
}

// Offsets returns the marked byte offsets in ascending order.
func (b Bitmap) Offsets() []int {
	var offsets []int
	for i, word := range b {
		for bit := 0; bit < 32; bit++ {
			if word&(1<<bit) != 0 {
				offsets = append(offsets, (i*32+bit)*4)
			}
		}
	}
	return offsets
}

func (b Bitmap) Clone() Bitmap {
	return slices.Clone(b)
}
