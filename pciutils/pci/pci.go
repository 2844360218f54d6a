// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"
)

type Class uint32
type Vendor uint32

var (
	ClassVGAController Class = 0x030000
	Class3DController  Class = 0x030200
	ClassAudioDevice   Class = 0x040300

	VendorNvidia Vendor = 0x10de
)

type Address struct {
	Domain   uint
	Bus      uint
	Slot     uint
	Function uint
}

func (p Address) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%1x", p.Domain, p.Bus, p.Slot, p.Function)
}

// WithFunction returns the address of another function of the same device.
func (p Address) WithFunction(fn uint) Address {
	p.Function = fn
	return p
}

// ParseAddress parses a domain:bus:slot.function address as found in sysfs.
func ParseAddress(s string) (Address, error) {
	var a Address
	n, err := fmt.Sscanf(s, "%04x:%02x:%02x.%1x", &a.Domain, &a.Bus, &a.Slot, &a.Function)
	if err != nil || n != 4 {
		return Address{}, fmt.Errorf("invalid pci address %q", s)
	}
	if a.Slot > 0x1f || a.Function > 0x7 {
		return Address{}, fmt.Errorf("invalid pci address %q", s)
	}
	return a, nil
}

// Device is a PCI function found on the host.
type Device struct {
	Address  Address
	Vendor   Vendor
	Class    Class
	DeviceID uint32
}

type Reader interface {
	Read() ([]Device, error)
}
