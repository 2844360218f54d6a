// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"fmt"
)

const (
	// Each MSI-X table entry is address low, address high, data and vector control.
	MSIXEntryWords = 4

	// PCI Express caps MSI-X tables at 2048 vectors.
	MaxMSIXVectors = 2048
)

// BorrowedConfigSpace is a non-owning view of a config-space cache that lives
// in the device object. Entries never free it.
type BorrowedConfigSpace struct {
	words []uint32
}

func Borrow(words []uint32) BorrowedConfigSpace {
	return BorrowedConfigSpace{words: words}
}

func (b BorrowedConfigSpace) Attached() bool {
	return b.words != nil
}

func (b BorrowedConfigSpace) Len() int {
	return len(b.words) * 4
}

func (b BorrowedConfigSpace) Read32(offset int) uint32 {
	return b.words[offset/4]
}

func (b BorrowedConfigSpace) Write32(offset int, value uint32) {
	b.words[offset/4] = value
}

// VectorTable is the owned MSI-X vector-control shadow. A nil table is
// unallocated.
type VectorTable struct {
	words []uint32
}

func (t *VectorTable) Allocated() bool {
	return t != nil && t.words != nil
}

func (t *VectorTable) Vectors() int {
	if t == nil {
		return 0
	}
	return len(t.words) / MSIXEntryWords
}

// Size is the table size in bytes.
func (t *VectorTable) Size() int {
	if t == nil {
		return 0
	}
	return len(t.words) * 4
}

func (t *VectorTable) Words() []uint32 {
	if t == nil {
		return nil
	}
	return t.words
}

// Allocator returns a zeroed buffer of the given number of 32-bit words.
type Allocator func(words int) ([]uint32, error)

// HeapAllocator allocates from the Go heap, refusing sizes no MSI-X table can
// have.
func HeapAllocator(words int) ([]uint32, error) {
	if words < 0 || words > MaxMSIXVectors*MSIXEntryWords {
		return nil, fmt.Errorf("%w: %d words", ErrOutOfMemory, words)
	}
	return make([]uint32, words), nil
}
