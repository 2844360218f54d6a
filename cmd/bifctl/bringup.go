// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/bifutils/bringup"
	"github.com/ironcore-dev/bif-utils/bifutils/device"
	"github.com/ironcore-dev/bif-utils/bifutils/erot"
	"github.com/ironcore-dev/bif-utils/bifutils/xve"
	"github.com/ironcore-dev/bif-utils/configutils/config"
	"github.com/ironcore-dev/bif-utils/eventutils/recorder"
)

// Bringup implements subcommands.Command for the "bringup" command.
type Bringup struct {
	generation string
	restore    bool
}

// Name implements subcommands.Command.
func (*Bringup) Name() string {
	return "bringup"
}

// Synopsis implements subcommands.Command.
func (*Bringup) Synopsis() string {
	return "sets up register maps and requests the EEPROM grant of a GPU"
}

// Usage implements subcommands.Command.
func (*Bringup) Usage() string {
	return "bringup [-restore] <pci address>\n"
}

// SetFlags implements subcommands.Command.
func (b *Bringup) SetFlags(f *flag.FlagSet) {
	f.StringVar(&b.generation, "generation", config.DefaultGeneration, "GPU hardware generation")
	f.BoolVar(&b.restore, "restore", false, "restore writable config-space registers from the boot cache")
}

// Execute implements subcommands.Command.Execute.
func (b *Bringup) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf, log := unpackArgs(args)
	addr, ok := addressArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	gen, err := conf.Generation(b.generation)
	if err != nil {
		return Errorf("%v", err)
	}

	dev, err := device.Open(log, conf.SysfsRoot, addr, b.generation)
	if err != nil {
		return Errorf("opening device %s: %v", addr, err)
	}
	defer dev.Close()

	store := recorder.NewEventStore(log, recorder.EventStoreOptions{})
	registry := xve.NewRegistry(log.WithValues("device", addr), dev, xve.RegistryOptions{})
	defer registry.Teardown()
	protocol := erot.NewProtocol(log.WithValues("device", addr), dev.BAR0, gen.GrantPollOptions())

	result, err := bringup.NewSequence(log, addr, dev, registry, protocol, store).Run(ctx)
	for _, event := range store.ListEvents() {
		fmt.Printf("%s\t%s\t%s\t%s\n", time.Unix(event.EventTime, 0).Format(time.RFC3339), event.Type, event.Reason, event.Message)
	}
	if err != nil {
		return Errorf("bring-up of %s failed: %v", addr, err)
	}

	if b.restore {
		for _, fn := range result.Functions {
			if err := restore(dev, registry, fn); err != nil {
				return Errorf("restoring function %d: %v", fn, err)
			}
		}
	}

	fmt.Printf("functions=%v eeprom=%t\n", result.Functions, result.EEPROMAccess)
	return subcommands.ExitSuccess
}

// restore writes the saved state of fn back to the device. The MSI-X table of
// function 0 goes first since restoring config space may re-enable MSI-X.
func restore(dev *device.Device, registry *xve.Registry, fn uint8) error {
	entry, err := registry.Entry(fn)
	if err != nil {
		return err
	}
	if fn == 0 {
		if err := entry.RestoreVectorTable(dev.MSIXTable()); err != nil {
			return err
		}
	}
	cfg, err := dev.ConfigSpace(fn)
	if err != nil {
		return err
	}
	return entry.RestoreConfigSpace(cfg)
}
