// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package reg

import (
	"fmt"

	"github.com/NVIDIA/go-nvlib/pkg/nvpci/bytes"
)

// View is a 32-bit accessor over a memory-mapped register space.
// Both go-nvlib mmio mappings and bytes buffers satisfy it.
type View interface {
	Read32(offset int) uint32
	Write32(offset int, value uint32)
}

// Field describes the bit range [Low, High] of a 32-bit register.
type Field struct {
	High uint
	Low  uint
}

func (f Field) mask() uint32 {
	width := f.High - f.Low + 1
	if width >= 32 {
		return ^uint32(0)
	}
	return ((uint32(1) << width) - 1) << f.Low
}

// Get extracts the field value from reg.
func (f Field) Get(reg uint32) uint32 {
	return (reg & f.mask()) >> f.Low
}

// Set returns reg with the field replaced by value, preserving all other bits.
func (f Field) Set(reg uint32, value uint32) uint32 {
	return (reg &^ f.mask()) | ((value << f.Low) & f.mask())
}

// Test reports whether the field of reg equals value.
func (f Field) Test(reg uint32, value uint32) bool {
	return f.Get(reg) == value
}

func (f Field) String() string {
	return fmt.Sprintf("%d:%d", f.High, f.Low)
}

// Bit returns a single-bit field.
func Bit(n uint) Field {
	return Field{High: n, Low: n}
}

type window struct {
	view View
	base int
}

// Window returns a view whose offset 0 maps to base in v.
func Window(v View, base int) View {
	if w, ok := v.(*window); ok {
		return &window{view: w.view, base: w.base + base}
	}
	return &window{view: v, base: base}
}

func (w *window) Read32(offset int) uint32 {
	return w.view.Read32(w.base + offset)
}

func (w *window) Write32(offset int, value uint32) {
	w.view.Write32(w.base+offset, value)
}

// NewMemory returns a little-endian in-memory register file of size bytes.
func NewMemory(size int) View {
	data := make([]byte, size)
	return bytes.New(&data).LittleEndian()
}
