// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/bifutils/device"
	"github.com/ironcore-dev/bif-utils/bifutils/erot"
	"github.com/ironcore-dev/bif-utils/configutils/config"
)

// Grant implements subcommands.Command for the "grant" command.
type Grant struct {
	generation string
	status     bool
}

// Name implements subcommands.Command.
func (*Grant) Name() string {
	return "grant"
}

// Synopsis implements subcommands.Command.
func (*Grant) Synopsis() string {
	return "requests EEPROM ownership from the eRoT of a GPU"
}

// Usage implements subcommands.Command.
func (*Grant) Usage() string {
	return "grant [-status] <pci address>\n"
}

// SetFlags implements subcommands.Command.
func (g *Grant) SetFlags(f *flag.FlagSet) {
	f.StringVar(&g.generation, "generation", config.DefaultGeneration, "GPU hardware generation")
	f.BoolVar(&g.status, "status", false, "only print the grant state")
}

// Execute implements subcommands.Command.Execute.
func (g *Grant) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf, log := unpackArgs(args)
	addr, ok := addressArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	gen, err := conf.Generation(g.generation)
	if err != nil {
		return Errorf("%v", err)
	}

	dev, err := device.Open(log, conf.SysfsRoot, addr, g.generation)
	if err != nil {
		return Errorf("opening device %s: %v", addr, err)
	}
	defer dev.Close()

	if !g.status {
		protocol := erot.NewProtocol(log.WithValues("device", addr), dev.BAR0, gen.GrantPollOptions())
		if err := protocol.RequestGrant(ctx); err != nil {
			return Errorf("requesting EEPROM grant: %v", err)
		}
	}
	fmt.Printf("%s\t%s\n", addr, erot.Observe(dev.BAR0))
	return subcommands.ExitSuccess
}
