// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bringup_test

import (
	"context"
	"errors"
	"time"

	"github.com/ironcore-dev/bif-utils/bifutils/bringup"
	"github.com/ironcore-dev/bif-utils/bifutils/device"
	"github.com/ironcore-dev/bif-utils/bifutils/erot"
	"github.com/ironcore-dev/bif-utils/bifutils/xve"
	"github.com/ironcore-dev/bif-utils/eventutils/recorder"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
	"github.com/ironcore-dev/bif-utils/regutils/poll"
	"github.com/ironcore-dev/bif-utils/regutils/reg"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "sigs.k8s.io/controller-runtime/pkg/log"
)

type mockGranter struct {
	err   error
	calls int
}

func (m *mockGranter) RequestGrant(context.Context) error {
	m.calls++
	return m.err
}

func reasons(events []*recorder.Event) []string {
	var r []string
	for _, e := range events {
		r = append(r, e.Reason)
	}
	return r
}

// bar0Size covers the grant register and the MSI-X table.
const bar0Size = device.MSIXTableBase + 0x10000

var _ = Describe("Bring-up sequence", func() {
	var (
		address  pci.Address
		dev      *device.Device
		store    *recorder.Store
		registry *xve.Registry
	)

	BeforeEach(func(ctx SpecContext) {
		address = pci.Address{Bus: 0x97}
		dev = device.New(address, "ad102", reg.NewMemory(bar0Size), &device.BootConfigCache{
			HasAzalia:   true,
			MSIXVectors: 8,
		})
		store = recorder.NewEventStore(log.FromContext(ctx), recorder.EventStoreOptions{})
	})

	run := func(ctx context.Context, granter bringup.Granter, opts xve.RegistryOptions) (bringup.Result, error) {
		registry = xve.NewRegistry(log.FromContext(ctx), dev, opts)
		return bringup.NewSequence(log.FromContext(ctx), address, dev, registry, granter, store).Run(ctx)
	}

	It("should initialize both functions and obtain the grant", func(ctx SpecContext) {
		granter := &mockGranter{}
		result, err := run(ctx, granter, xve.RegistryOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Functions).To(Equal([]uint8{0, 1}))
		Expect(result.EEPROMAccess).To(BeTrue())
		Expect(granter.calls).To(Equal(1))
		Expect(reasons(store.ListEvents())).To(Equal([]string{
			bringup.ReasonRegisterMapInitialized,
			bringup.ReasonRegisterMapInitialized,
			bringup.ReasonEEPROMGranted,
		}))
	})

	It("should skip an absent audio function", func(ctx SpecContext) {
		dev.Cache.HasAzalia = false
		result, err := run(ctx, &mockGranter{}, xve.RegistryOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Functions).To(Equal([]uint8{0}))
	})

	It("should continue without EEPROM access on grant timeout", func(ctx SpecContext) {
		result, err := run(ctx, &mockGranter{err: erot.ErrTimeout}, xve.RegistryOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.EEPROMAccess).To(BeFalse())
		Expect(reasons(store.ListEvents())).To(ContainElement(bringup.ReasonEEPROMGrantTimeout))
	})

	It("should abort on other grant errors", func(ctx SpecContext) {
		_, err := run(ctx, &mockGranter{err: context.Canceled}, xve.RegistryOptions{})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("should abort before the grant when a register map fails", func(ctx SpecContext) {
		granter := &mockGranter{}
		_, err := run(ctx, granter, xve.RegistryOptions{
			Allocator: func(int) ([]uint32, error) { return nil, errors.New("no pages") },
		})
		Expect(err).To(MatchError(xve.ErrOutOfMemory))
		Expect(granter.calls).To(BeZero())
		Expect(reasons(store.ListEvents())).To(Equal([]string{bringup.ReasonRegisterMapFailed}))
	})

	It("should run against a device without eRoT", func(ctx SpecContext) {
		granter := erot.NewProtocol(log.FromContext(ctx), dev.BAR0, poll.Options{Timeout: 10 * time.Millisecond})
		result, err := run(ctx, granter, xve.RegistryOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.EEPROMAccess).To(BeTrue())
		Expect(erot.Observe(dev.BAR0)).To(Equal(erot.StateNoAgent))
	})

	It("should snapshot the MSI-X table for a later restore", func(ctx SpecContext) {
		table := dev.MSIXTable()
		for i := 0; i < 8*xve.MSIXEntryWords; i++ {
			table.Write32(i*4, 0xfee00000+uint32(i))
		}

		_, err := run(ctx, &mockGranter{}, xve.RegistryOptions{})
		Expect(err).NotTo(HaveOccurred())

		entry, err := registry.Entry(0)
		Expect(err).NotTo(HaveOccurred())
		words := entry.VectorTable().Words()
		Expect(words).To(HaveLen(8 * xve.MSIXEntryWords))
		Expect(words[0]).To(Equal(uint32(0xfee00000)))
		Expect(words[len(words)-1]).To(Equal(uint32(0xfee00000 + 8*xve.MSIXEntryWords - 1)))

		By("restoring the table after the hardware lost it")
		for i := 0; i < 8*xve.MSIXEntryWords; i++ {
			table.Write32(i*4, 0)
		}
		Expect(entry.RestoreVectorTable(table)).To(Succeed())
		for i := 0; i < 8*xve.MSIXEntryWords; i++ {
			Expect(table.Read32(i * 4)).To(Equal(0xfee00000 + uint32(i)))
		}
	})
})
