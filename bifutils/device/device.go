// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/NVIDIA/go-nvlib/pkg/nvpci"
	"github.com/go-logr/logr"
	"github.com/ironcore-dev/bif-utils/pciutils/pci"
	"github.com/ironcore-dev/bif-utils/regutils/reg"
)

const (
	ConfigSpaceSize  = nvpci.PCICfgSpaceExtendedSize
	ConfigSpaceWords = ConfigSpaceSize / 4

	// BAR0 mirrors of the PCI config space of function 0 and 1.
	Function0ConfigBase = 0x00088000
	Function1ConfigBase = 0x0008a000

	// BAR0 offset of the function 0 MSI-X table.
	MSIXTableBase = 0x00b90000

	capIDMSIX            = 0x11
	msixMessageControl   = 0x2
	msixTableSizeMask    = 0x07ff
	pciDevicesPathSuffix = "bus/pci/devices"
)

// BootConfigCache holds the config space of the GPU and its audio function as
// read during boot. The device owns it; register maps only borrow it.
type BootConfigCache struct {
	GPU         [ConfigSpaceWords]uint32
	Azalia      [ConfigSpaceWords]uint32
	HasAzalia   bool
	MSIXVectors int
}

type Device struct {
	Address    pci.Address
	Generation string
	BAR0       reg.View
	Cache      *BootConfigCache

	closer io.Closer
}

func New(address pci.Address, generation string, bar0 reg.View, cache *BootConfigCache) *Device {
	if cache == nil {
		cache = &BootConfigCache{}
	}
	return &Device{
		Address:    address,
		Generation: generation,
		BAR0:       bar0,
		Cache:      cache,
	}
}

func (d *Device) GPUBootConfigSpace() []uint32 {
	return d.Cache.GPU[:]
}

func (d *Device) AzaliaBootConfigSpace() []uint32 {
	return d.Cache.Azalia[:]
}

func (d *Device) MSIXVectorCount() int {
	return d.Cache.MSIXVectors
}

// HasFunction reports whether PCI function fn is exposed by the device.
func (d *Device) HasFunction(fn uint8) bool {
	switch fn {
	case 0:
		return true
	case 1:
		return d.Cache.HasAzalia
	default:
		return false
	}
}

// ConfigSpace returns the BAR0 mirror of the config space of function fn.
func (d *Device) ConfigSpace(fn uint8) (reg.View, error) {
	switch fn {
	case 0:
		return reg.Window(d.BAR0, Function0ConfigBase), nil
	case 1:
		return reg.Window(d.BAR0, Function1ConfigBase), nil
	default:
		return nil, fmt.Errorf("no config space mirror for function %d", fn)
	}
}

func (d *Device) MSIXTable() reg.View {
	return reg.Window(d.BAR0, MSIXTableBase)
}

func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Open maps BAR0 of the GPU at address and loads its boot config-space cache
// from sysfs.
func Open(log logr.Logger, sysfsRoot string, address pci.Address, generation string) (*Device, error) {
	cache, err := LoadBootConfigCache(log, sysfsRoot, address)
	if err != nil {
		return nil, err
	}

	bar, err := reg.OpenBAR(filepath.Join(devicePath(sysfsRoot, address), "resource0"))
	if err != nil {
		return nil, err
	}
	log.V(1).Info("Mapped BAR0", "device", address)

	dev := New(address, generation, bar, cache)
	dev.closer = bar
	return dev, nil
}

func devicePath(sysfsRoot string, address pci.Address) string {
	return filepath.Join(sysfsRoot, pciDevicesPathSuffix, address.String())
}

// LoadBootConfigCache reads the config space of function 0 and, if present,
// function 1 of the device at address.
func LoadBootConfigCache(log logr.Logger, sysfsRoot string, address pci.Address) (*BootConfigCache, error) {
	cache := &BootConfigCache{}

	gpu, err := loadConfigSpace(filepath.Join(devicePath(sysfsRoot, address), "config"), &cache.GPU)
	if err != nil {
		return nil, fmt.Errorf("failed to load config space of %s: %w", address, err)
	}

	cache.MSIXVectors, err = msixVectors(gpu)
	if err != nil {
		return nil, fmt.Errorf("failed to read msi-x capability of %s: %w", address, err)
	}
	log.V(2).Info("Loaded GPU boot config space", "device", address, "msixVectors", cache.MSIXVectors)

	azalia := address.WithFunction(1)
	azaliaConfig := filepath.Join(devicePath(sysfsRoot, azalia), "config")
	switch _, err := os.Stat(azaliaConfig); {
	case err == nil:
		if _, err := loadConfigSpace(azaliaConfig, &cache.Azalia); err != nil {
			return nil, fmt.Errorf("failed to load config space of %s: %w", azalia, err)
		}
		cache.HasAzalia = true
		log.V(2).Info("Loaded audio function boot config space", "device", azalia)
	case errors.Is(err, fs.ErrNotExist):
		log.V(2).Info("No audio function present", "device", azalia)
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", azaliaConfig, err)
	}

	return cache, nil
}

func loadConfigSpace(path string, words *[ConfigSpaceWords]uint32) (nvpci.ConfigSpaceIO, error) {
	cs, err := (&nvpci.ConfigSpace{Path: path}).Read()
	if err != nil {
		return nil, err
	}

	le := cs.LittleEndian()
	n := min(le.Len()/4, ConfigSpaceWords)
	for i := 0; i < n; i++ {
		words[i] = le.Read32(i * 4)
	}
	return cs, nil
}

// msixVectors returns the MSI-X table size, or 0 without an MSI-X capability.
func msixVectors(cs nvpci.ConfigSpaceIO) (int, error) {
	caps, err := cs.GetPCICapabilities()
	if err != nil {
		return 0, err
	}

	msix, ok := caps.Standard[capIDMSIX]
	if !ok {
		return 0, nil
	}
	control := msix.LittleEndian().Read16(msixMessageControl)
	return int(control&msixTableSizeMask) + 1, nil
}
