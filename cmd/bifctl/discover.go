// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
)

// Discover implements subcommands.Command for the "discover" command.
type Discover struct{}

// Name implements subcommands.Command.
func (*Discover) Name() string {
	return "discover"
}

// Synopsis implements subcommands.Command.
func (*Discover) Synopsis() string {
	return "lists NVIDIA GPU functions found in sysfs"
}

// Usage implements subcommands.Command.
func (*Discover) Usage() string {
	return "discover\n"
}

// SetFlags implements subcommands.Command.
func (*Discover) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Discover) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf, log := unpackArgs(args)

	reader, err := pci.NewReaderWithMount(log, conf.SysfsRoot, pci.VendorNvidia,
		pci.ClassVGAController, pci.Class3DController, pci.ClassAudioDevice)
	if err != nil {
		return Errorf("opening sysfs: %v", err)
	}
	devices, err := reader.Read()
	if err != nil {
		return Errorf("reading pci devices: %v", err)
	}

	for _, dev := range devices {
		fmt.Printf("%s\tclass=%06x\tdevice=%04x\n", dev.Address, uint32(dev.Class), dev.DeviceID)
	}
	return subcommands.ExitSuccess
}
