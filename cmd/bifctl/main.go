// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command bifctl inspects and brings up the bus interface of NVIDIA GPUs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/ironcore-dev/bif-utils/configutils/config"
	ctrl "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	sysfsRoot := flag.String("sysfs", "", "sysfs mount point, overrides the config file")

	zapOpts := zap.Options{Development: true}
	zapOpts.BindFlags(flag.CommandLine)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&Discover{}, "")
	subcommands.Register(&RegMap{}, "")
	subcommands.Register(&Grant{}, "")
	subcommands.Register(&Bringup{}, "")

	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
	log := ctrl.Log.WithName("bifctl")

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	if *sysfsRoot != "" {
		conf.SysfsRoot = *sysfsRoot
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := subcommands.Execute(ctx, conf, log)
	stop()
	os.Exit(int(code))
}
