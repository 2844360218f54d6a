// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package erot negotiates EEPROM ownership with the external root of trust
// (eRoT) that guards it during pre-OS.
package erot

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/ironcore-dev/bif-utils/bifutils/metrics"
	"github.com/ironcore-dev/bif-utils/regutils/poll"
	"github.com/ironcore-dev/bif-utils/regutils/reg"
)

// NV_PBUS_SW_GLOBAL_EROT_GRANT
const GrantRegister = 0x00001148

var (
	grantAllow   = reg.Bit(0)
	grantRequest = reg.Bit(1)
	grantValid   = reg.Bit(31)
)

var ErrTimeout = fmt.Errorf("timed out waiting for eRoT to grant EEPROM access: %w", poll.ErrTimeout)

type State int

const (
	StatePending State = iota
	StateNoAgent
	StateGranted
)

func (s State) String() string {
	switch s {
	case StateNoAgent:
		return "NoAgent"
	case StateGranted:
		return "Granted"
	case StatePending:
		return "Pending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Observe derives the grant state from a single read of the grant register.
func Observe(regs reg.View) State {
	return stateOf(regs.Read32(GrantRegister))
}

func stateOf(value uint32) State {
	switch {
	case grantValid.Test(value, 0):
		return StateNoAgent
	case grantAllow.Test(value, 1):
		return StateGranted
	default:
		return StatePending
	}
}

type Protocol struct {
	log  logr.Logger
	regs reg.View
	opts poll.Options
}

func NewProtocol(log logr.Logger, regs reg.View, opts poll.Options) *Protocol {
	opts.Defaults()
	return &Protocol{
		log:  log,
		regs: regs,
		opts: opts,
	}
}

func (p *Protocol) allowed() bool {
	return grantAllow.Test(p.regs.Read32(GrantRegister), 1)
}

// RequestGrant asks the eRoT to hand EEPROM control to the driver and blocks
// until it does or the poll timeout elapses. It returns immediately when no
// eRoT is present or the grant is already held. Every call that gets past those
// checks writes a fresh request, including calls after an earlier timeout.
func (p *Protocol) RequestGrant(ctx context.Context) error {
	value := p.regs.Read32(GrantRegister)

	switch stateOf(value) {
	case StateNoAgent:
		p.log.V(1).Info("No eRoT present, EEPROM already owned")
		metrics.GrantRequests.WithLabelValues(metrics.GrantResultNoAgent).Inc()
		return nil
	case StateGranted:
		p.log.V(1).Info("EEPROM grant already allowed")
		metrics.GrantRequests.WithLabelValues(metrics.GrantResultAlreadyGranted).Inc()
		return nil
	case StatePending:
	}

	value = grantRequest.Set(value, 1)
	p.regs.Write32(GrantRegister, value)
	p.log.V(2).Info("Requested EEPROM grant", "register", fmt.Sprintf("%#08x", value))

	err := poll.Until(ctx, p.opts, p.allowed)
	switch {
	case err == nil:
		p.log.V(1).Info("EEPROM grant allowed")
		metrics.GrantRequests.WithLabelValues(metrics.GrantResultGranted).Inc()
		return nil
	case errors.Is(err, poll.ErrTimeout):
		p.log.Error(err, "Timed out waiting for preOs to grant access to EEPROM", "timeout", p.opts.Timeout)
		metrics.GrantRequests.WithLabelValues(metrics.GrantResultTimeout).Inc()
		return ErrTimeout
	default:
		p.log.Error(err, "Stopped waiting for EEPROM grant")
		metrics.GrantRequests.WithLabelValues(metrics.GrantResultCanceled).Inc()
		return err
	}
}
