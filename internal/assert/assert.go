// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !debug

// Package assert trips on caller bugs in debug builds (-tags debug) and is a
// no-op otherwise.
package assert

const Enabled = false

func Fail(string, ...any) {}
