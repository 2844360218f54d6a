// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package xve

import (
	"errors"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrNotInitialized  = errors.New("register map not initialized")
	ErrInvalidOffset   = errors.New("config space offset not valid for function")
	ErrReadOnly        = errors.New("config space offset not writable for function")
	ErrNoVectorTable   = errors.New("no vector table allocated for function")
)
