// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package reg

import (
	"fmt"
	"os"

	"github.com/NVIDIA/go-nvlib/pkg/nvpci/mmio"
)

const (
	// PMC_BOOT_1 endianness switch, identical on every NVIDIA generation.
	pmcEndianRegister = 0x4
	pmcLittleEndian   = 0x0
	pmcBigEndian      = 0x01000001
)

// BAR is a mapped PCI memory resource.
type BAR interface {
	View
	Close() error
}

// OpenBAR maps the sysfs resource file at path read-write and returns it in the
// endianness reported by the GPU.
func OpenBAR(path string) (BAR, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat bar %s: %w", path, err)
	}

	rw, err := mmio.OpenRW(path, 0, int(info.Size()))
	if err != nil {
		return nil, fmt.Errorf("failed to map bar %s: %w", path, err)
	}

	switch endian := rw.Read32(pmcEndianRegister); endian {
	case pmcLittleEndian:
		return rw.LittleEndian(), nil
	case pmcBigEndian:
		return rw.BigEndian(), nil
	default:
		_ = rw.Close()
		return nil, fmt.Errorf("unknown endianness %#x for bar %s", endian, path)
	}
}
