// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build debug

package assert

import "fmt"

const Enabled = true

func Fail(format string, args ...any) {
	panic(fmt.Sprintf("assertion failed: "+format, args...))
}
