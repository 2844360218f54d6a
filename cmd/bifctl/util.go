// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/configutils/config"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
)

// Errorf prints the error to stderr and returns ExitFailure.
func Errorf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

func unpackArgs(args []any) (*config.Config, logr.Logger) {
	return args[0].(*config.Config), args[1].(logr.Logger)
}

// addressArg parses the single positional PCI address of a command.
func addressArg(f *flag.FlagSet) (pci.Address, bool) {
	if f.NArg() != 1 {
		f.Usage()
		return pci.Address{}, false
	}
	addr, err := pci.ParseAddress(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return pci.Address{}, false
	}
	return addr, true
}
