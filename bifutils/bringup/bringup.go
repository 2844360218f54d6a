// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package bringup runs the bus-interface part of GPU bring-up: register maps
// for every present PCI function, then the EEPROM grant.
package bringup

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/ironcore-dev/bif-utils/bifutils/erot"
	"github.com/ironcore-dev/bif-utils/bifutils/xve"
	"github.com/ironcore-dev/bif-utils/eventutils/recorder"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
	"github.com/ironcore-dev/bif-utils/regutils/reg"
)

const (
	ReasonRegisterMapInitialized = "RegisterMapInitialized"
	ReasonRegisterMapFailed      = "RegisterMapFailed"
	ReasonEEPROMGranted          = "EEPROMGranted"
	ReasonEEPROMGrantTimeout     = "EEPROMGrantTimeout"
)

// Device is the subset of the device object bring-up needs.
type Device interface {
	xve.Device
	HasFunction(fn uint8) bool
	// MSIXTable is the function 0 MSI-X table in BAR0.
	MSIXTable() reg.View
}

type Granter interface {
	RequestGrant(ctx context.Context) error
}

// Result describes what bring-up achieved.
type Result struct {
	Functions []uint8
	// EEPROMAccess is false when the eRoT did not grant in time and the device
	// runs without EEPROM access.
	EEPROMAccess bool
}

type Sequence struct {
	log      logr.Logger
	address  pci.Address
	device   Device
	registry *xve.Registry
	granter  Granter
	events   recorder.EventRecorder
}

func NewSequence(log logr.Logger, address pci.Address, device Device, registry *xve.Registry, granter Granter, events recorder.EventRecorder) *Sequence {
	return &Sequence{
		log:      log,
		address:  address,
		device:   device,
		registry: registry,
		granter:  granter,
		events:   events,
	}
}

// Run initializes register maps and requests the EEPROM grant. A grant
// timeout is not an error: the device continues in degraded mode.
func (s *Sequence) Run(ctx context.Context) (Result, error) {
	var result Result

	for fn := uint8(0); fn < xve.NumFunctions; fn++ {
		if !s.device.HasFunction(fn) {
			s.log.V(2).Info("Skipping absent function", "func", fn)
			continue
		}

		if err := s.initializeFunction(fn); err != nil {
			s.events.Eventf(s.address, recorder.EventTypeWarning, ReasonRegisterMapFailed, "function %d: %v", fn, err)
			return result, fmt.Errorf("failed to initialize register map of function %d: %w", fn, err)
		}
		s.events.Eventf(s.address, recorder.EventTypeNormal, ReasonRegisterMapInitialized, "function %d", fn)
		result.Functions = append(result.Functions, fn)
	}

	switch err := s.granter.RequestGrant(ctx); {
	case err == nil:
		result.EEPROMAccess = true
		s.events.Eventf(s.address, recorder.EventTypeNormal, ReasonEEPROMGranted, "EEPROM access available")
	case errors.Is(err, erot.ErrTimeout):
		s.log.Info("Continuing without EEPROM access", "device", s.address)
		s.events.Eventf(s.address, recorder.EventTypeWarning, ReasonEEPROMGrantTimeout, "%v", err)
	default:
		return result, fmt.Errorf("failed to request EEPROM grant: %w", err)
	}

	return result, nil
}

// initializeFunction installs the register map of fn. For function 0 it also
// snapshots the MSI-X table into the vector shadow so a later restore of the
// MSI-X control register finds a populated table.
func (s *Sequence) initializeFunction(fn uint8) error {
	if err := s.registry.InitializeFunctionMap(fn); err != nil {
		return err
	}
	if fn != 0 {
		return nil
	}

	entry, err := s.registry.Entry(fn)
	if err != nil {
		return err
	}
	if err := entry.SaveVectorTable(s.device.MSIXTable()); err != nil {
		return fmt.Errorf("failed to save msi-x table: %w", err)
	}
	s.log.V(2).Info("Saved MSI-X table", "vectors", entry.VectorTable().Vectors())
	return nil
}
