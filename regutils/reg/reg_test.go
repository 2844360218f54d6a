// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package reg_test

import (
	"path/filepath"

	"github.com/ironcore-dev/bif-utils/regutils/reg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Field", func() {
	It("should extract and set single bits", func() {
		bit := reg.Bit(31)
		Expect(bit.Get(0x80000000)).To(Equal(uint32(1)))
		Expect(bit.Get(0x7fffffff)).To(Equal(uint32(0)))
		Expect(bit.Set(0x00000001, 1)).To(Equal(uint32(0x80000001)))
		Expect(bit.Set(0xffffffff, 0)).To(Equal(uint32(0x7fffffff)))
	})

	It("should preserve bits outside a multi-bit field", func() {
		field := reg.Field{High: 7, Low: 4}
		Expect(field.Set(0xffffffff, 0x5)).To(Equal(uint32(0xffffff5f)))
		Expect(field.Get(0x000000a0)).To(Equal(uint32(0xa)))
		Expect(field.Test(0x000000a0, 0xa)).To(BeTrue())
		Expect(field.String()).To(Equal("7:4"))
	})

	It("should truncate values wider than the field", func() {
		field := reg.Field{High: 1, Low: 0}
		Expect(field.Set(0, 0xff)).To(Equal(uint32(0x3)))
	})

	It("should handle a full width field", func() {
		field := reg.Field{High: 31, Low: 0}
		Expect(field.Set(0x12345678, 0xdeadbeef)).To(Equal(uint32(0xdeadbeef)))
	})
})

var _ = Describe("Views", func() {
	It("should read back what was written to memory", func() {
		mem := reg.NewMemory(0x100)
		mem.Write32(0x10, 0xcafef00d)
		Expect(mem.Read32(0x10)).To(Equal(uint32(0xcafef00d)))
		Expect(mem.Read32(0x14)).To(BeZero())
	})

	It("should offset accesses through windows", func() {
		mem := reg.NewMemory(0x100)
		win := reg.Window(mem, 0x40)
		win.Write32(0x4, 0x1234)
		Expect(mem.Read32(0x44)).To(Equal(uint32(0x1234)))

		By("nesting windows")
		nested := reg.Window(win, 0x10)
		nested.Write32(0, 0x5678)
		Expect(mem.Read32(0x50)).To(Equal(uint32(0x5678)))
		Expect(win.Read32(0x10)).To(Equal(uint32(0x5678)))
	})

	It("should fail to open a missing bar", func() {
		_, err := reg.OpenBAR(filepath.Join(GinkgoT().TempDir(), "resource0"))
		Expect(err).To(HaveOccurred())
	})
})
