// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package device_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/ironcore-dev/bif-utils/bifutils/device"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
	"github.com/ironcore-dev/bif-utils/regutils/reg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "sigs.k8s.io/controller-runtime/pkg/log"
)

// gpuConfig returns a standard config space with power management at 0x60
// and, if msixVectors > 0, MSI-X at 0xb4.
func gpuConfig(deviceID uint16, msixVectors int) []byte {
	cfg := make([]byte, 256)
	binary.LittleEndian.PutUint16(cfg[0x00:], 0x10de)
	binary.LittleEndian.PutUint16(cfg[0x02:], deviceID)
	binary.LittleEndian.PutUint16(cfg[0x06:], 0x0010)
	cfg[0x34] = 0x60

	cfg[0x60] = 0x01
	if msixVectors > 0 {
		cfg[0x61] = 0xb4
		cfg[0xb4] = 0x11
		cfg[0xb5] = 0x00
		binary.LittleEndian.PutUint16(cfg[0xb6:], uint16(msixVectors-1))
	}
	return cfg
}

func writeConfig(sysRoot string, address pci.Address, cfg []byte) {
	dir := filepath.Join(sysRoot, "bus", "pci", "devices", address.String())
	Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "config"), cfg, 0o644)).To(Succeed())
}

var _ = Describe("Boot config cache", func() {
	var (
		sysRoot string
		address pci.Address
	)

	BeforeEach(func() {
		sysRoot = GinkgoT().TempDir()
		address = pci.Address{Bus: 0x97}
	})

	It("should load both functions and the MSI-X table size", func(ctx SpecContext) {
		writeConfig(sysRoot, address, gpuConfig(0x2684, 8))
		writeConfig(sysRoot, address.WithFunction(1), gpuConfig(0x22ba, 0))

		cache, err := device.LoadBootConfigCache(log.FromContext(ctx), sysRoot, address)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.GPU[0]).To(Equal(uint32(0x268410de)))
		Expect(cache.Azalia[0]).To(Equal(uint32(0x22ba10de)))
		Expect(cache.HasAzalia).To(BeTrue())
		Expect(cache.MSIXVectors).To(Equal(8))
		Expect(cache.GPU[0x100/4]).To(BeZero())
	})

	It("should load a GPU without audio function or MSI-X", func(ctx SpecContext) {
		writeConfig(sysRoot, address, gpuConfig(0x26b1, 0))

		cache, err := device.LoadBootConfigCache(log.FromContext(ctx), sysRoot, address)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.HasAzalia).To(BeFalse())
		Expect(cache.MSIXVectors).To(BeZero())
	})

	It("should fail without a capability list", func(ctx SpecContext) {
		cfg := gpuConfig(0x26b1, 0)
		cfg[0x06] = 0
		writeConfig(sysRoot, address, cfg)

		_, err := device.LoadBootConfigCache(log.FromContext(ctx), sysRoot, address)
		Expect(err).To(HaveOccurred())
	})

	It("should fail for a missing device", func(ctx SpecContext) {
		_, err := device.LoadBootConfigCache(log.FromContext(ctx), sysRoot, address)
		Expect(err).To(HaveOccurred())

		_, err = device.Open(log.FromContext(ctx), sysRoot, address, "ad102")
		Expect(err).To(HaveOccurred())
	})

	It("should fail to open a device without BAR0", func(ctx SpecContext) {
		writeConfig(sysRoot, address, gpuConfig(0x2684, 8))
		_, err := device.Open(log.FromContext(ctx), sysRoot, address, "ad102")
		Expect(err).To(MatchError(ContainSubstring("resource0")))
	})
})

var _ = Describe("Device", func() {
	It("should expose config space mirrors and the MSI-X table in BAR0", func() {
		bar0 := reg.NewMemory(device.MSIXTableBase + 0x1000)
		dev := device.New(pci.Address{}, "ad102", bar0, &device.BootConfigCache{MSIXVectors: 4})

		cfg0, err := dev.ConfigSpace(0)
		Expect(err).NotTo(HaveOccurred())
		cfg0.Write32(0x4, 0x7)
		Expect(bar0.Read32(device.Function0ConfigBase + 0x4)).To(Equal(uint32(0x7)))

		cfg1, err := dev.ConfigSpace(1)
		Expect(err).NotTo(HaveOccurred())
		cfg1.Write32(0x0, 0x1)
		Expect(bar0.Read32(device.Function1ConfigBase)).To(Equal(uint32(0x1)))

		_, err = dev.ConfigSpace(2)
		Expect(err).To(HaveOccurred())

		dev.MSIXTable().Write32(0xc, 0x1)
		Expect(bar0.Read32(device.MSIXTableBase + 0xc)).To(Equal(uint32(0x1)))

		Expect(dev.MSIXVectorCount()).To(Equal(4))
		Expect(dev.HasFunction(0)).To(BeTrue())
		Expect(dev.HasFunction(1)).To(BeFalse())
		Expect(dev.GPUBootConfigSpace()).To(HaveLen(device.ConfigSpaceWords))
		Expect(dev.Close()).To(Succeed())
	})
})
