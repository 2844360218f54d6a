// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/bifutils/device"
	"github.com/ironcore-dev/bif-utils/bifutils/xve"
	"github.com/ironcore-dev/bif-utils/configutils/config"
)

// RegMap implements subcommands.Command for the "regmap" command.
type RegMap struct {
	function   uint
	generation string
}

// Name implements subcommands.Command.
func (*RegMap) Name() string {
	return "regmap"
}

// Synopsis implements subcommands.Command.
func (*RegMap) Synopsis() string {
	return "prints the valid and writable config-space registers of a GPU function"
}

// Usage implements subcommands.Command.
func (*RegMap) Usage() string {
	return "regmap [-function N] <pci address>\n"
}

// SetFlags implements subcommands.Command.
func (r *RegMap) SetFlags(f *flag.FlagSet) {
	f.UintVar(&r.function, "function", 0, "PCI function whose register map is printed")
	f.StringVar(&r.generation, "generation", config.DefaultGeneration, "GPU hardware generation")
}

// Execute implements subcommands.Command.Execute.
func (r *RegMap) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf, log := unpackArgs(args)
	addr, ok := addressArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	if r.function > 0xff {
		return Errorf("invalid function %d", r.function)
	}
	fn := uint8(r.function)
	if _, err := conf.Generation(r.generation); err != nil {
		return Errorf("%v", err)
	}

	cache, err := device.LoadBootConfigCache(log, conf.SysfsRoot, addr)
	if err != nil {
		return Errorf("loading config space: %v", err)
	}
	dev := device.New(addr, r.generation, nil, cache)

	registry := xve.NewRegistry(log, dev, xve.RegistryOptions{})
	defer registry.Teardown()
	if err := registry.InitializeFunctionMap(fn); err != nil {
		return Errorf("initializing register map: %v", err)
	}
	entry, err := registry.Entry(fn)
	if err != nil {
		return Errorf("%v", err)
	}

	shadow := entry.ShadowConfig()
	for _, offset := range entry.ValidMap().Offsets() {
		access := "RO"
		if entry.IsWritable(offset) {
			access = "RW"
		}
		fmt.Printf("%#05x\t%s\t%08x\n", offset, access, shadow.Read32(offset))
	}
	if table := entry.VectorTable(); table.Allocated() {
		fmt.Printf("msix vectors: %d (%d bytes shadow)\n", table.Vectors(), table.Size())
	}
	return subcommands.ExitSuccess
}
