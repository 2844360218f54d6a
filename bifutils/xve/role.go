// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"fmt"
)

// FunctionRole tells where a PCI function's register policy comes from.
type FunctionRole int

const (
	// RolePrimary is function 0, whose policy changes per hardware generation.
	RolePrimary FunctionRole = iota
	// RoleLegacy is function 1, whose layout is shared with older generations
	// and is delegated to the legacy initializer.
	RoleLegacy
)

const NumFunctions = 2

func (r FunctionRole) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("FunctionRole(%d)", int(r))
	}
}

// DecodeFunction maps a raw PCI function number to its role.
func DecodeFunction(fn uint8) (FunctionRole, error) {
	switch fn {
	case 0:
		return RolePrimary, nil
	case 1:
		return RoleLegacy, nil
	default:
		return 0, fmt.Errorf("%w: function %d", ErrInvalidArgument, fn)
	}
}
