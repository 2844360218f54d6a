// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"fmt"

	"github.com/ironcore-dev/bif-utils/regutils/reg"
)

// Entry is the config-space policy and shadow state of one PCI function.
type Entry struct {
	function    uint8
	valid       Bitmap
	writable    Bitmap
	shadow      BorrowedConfigSpace
	vectors     *VectorTable
	initialized bool
}

// Install sets the policy of the entry. writable must be a subset of valid.
func (e *Entry) Install(fn uint8, valid, writable Bitmap, shadow BorrowedConfigSpace) error {
	if !writable.SubsetOf(valid) {
		return fmt.Errorf("%w: writable map of function %d exceeds valid map", ErrInvalidArgument, fn)
	}

	e.function = fn
	e.valid = valid
	e.writable = writable
	e.shadow = shadow
	e.initialized = true
	return nil
}

func (e *Entry) Function() uint8 {
	return e.function
}

func (e *Entry) Initialized() bool {
	return e.initialized
}

func (e *Entry) ValidMap() Bitmap {
	return e.valid.Clone()
}

func (e *Entry) WritableMap() Bitmap {
	return e.writable.Clone()
}

func (e *Entry) ShadowConfig() BorrowedConfigSpace {
	return e.shadow
}

func (e *Entry) VectorTable() *VectorTable {
	return e.vectors
}

func (e *Entry) IsValid(offset int) bool {
	return e.valid.Test(offset)
}

func (e *Entry) IsWritable(offset int) bool {
	return e.writable.Test(offset)
}

// ReadConfig reads the dword containing offset from cfg if the policy allows it.
func (e *Entry) ReadConfig(cfg reg.View, offset int) (uint32, error) {
	if !e.IsValid(offset) {
		return 0, fmt.Errorf("%w: function %d offset %#x", ErrInvalidOffset, e.function, offset)
	}
	return cfg.Read32(offset &^ 3), nil
}

// WriteConfig writes the dword containing offset to cfg if the policy allows it.
func (e *Entry) WriteConfig(cfg reg.View, offset int, value uint32) error {
	switch {
	case !e.IsValid(offset):
		return fmt.Errorf("%w: function %d offset %#x", ErrInvalidOffset, e.function, offset)
	case !e.IsWritable(offset):
		return fmt.Errorf("%w: function %d offset %#x", ErrReadOnly, e.function, offset)
	}
	cfg.Write32(offset&^3, value)
	return nil
}

func (e *Entry) shadowOffsets(m Bitmap) ([]int, error) {
	if !e.initialized || !e.shadow.Attached() {
		return nil, fmt.Errorf("%w: function %d", ErrNotInitialized, e.function)
	}
	var offsets []int
	for _, offset := range m.Offsets() {
		if offset >= e.shadow.Len() {
			break
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

// SaveConfigSpace copies every valid register from cfg into the shadow.
func (e *Entry) SaveConfigSpace(cfg reg.View) error {
	offsets, err := e.shadowOffsets(e.valid)
	if err != nil {
		return err
	}
	for _, offset := range offsets {
		e.shadow.Write32(offset, cfg.Read32(offset))
	}
	return nil
}

// RestoreConfigSpace writes every writable register from the shadow back to cfg.
func (e *Entry) RestoreConfigSpace(cfg reg.View) error {
	offsets, err := e.shadowOffsets(e.writable)
	if err != nil {
		return err
	}
	for _, offset := range offsets {
		cfg.Write32(offset, e.shadow.Read32(offset))
	}
	return nil
}

// SaveVectorTable copies the MSI-X table into the vector shadow.
func (e *Entry) SaveVectorTable(table reg.View) error {
	if !e.vectors.Allocated() {
		return fmt.Errorf("%w: function %d", ErrNoVectorTable, e.function)
	}
	for i := range e.vectors.words {
		e.vectors.words[i] = table.Read32(i * 4)
	}
	return nil
}

// RestoreVectorTable writes the vector shadow back to the MSI-X table.
func (e *Entry) RestoreVectorTable(table reg.View) error {
	if !e.vectors.Allocated() {
		return fmt.Errorf("%w: function %d", ErrNoVectorTable, e.function)
	}
	for i, word := range e.vectors.words {
		table.Write32(i*4, word)
	}
	return nil
}
