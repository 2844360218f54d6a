// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package xve holds the per PCI function config-space register policy of a GPU
// and the shadow buffers used to emulate or restore those registers.
package xve

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/ironcore-dev/bif-utils/bifutils/metrics"
	"github.com/ironcore-dev/bif-utils/internal/assert"
)

// Device is what the registry needs from the device object.
type Device interface {
	// GPUBootConfigSpace is the function 0 config space cached at boot.
	GPUBootConfigSpace() []uint32
	// AzaliaBootConfigSpace is the function 1 config space cached at boot.
	AzaliaBootConfigSpace() []uint32
	MSIXVectorCount() int
}

type RegistryOptions struct {
	Allocator Allocator
	Legacy    LegacyInitializer
}

func (o *RegistryOptions) Defaults() {
	if o.Allocator == nil {
		o.Allocator = HeapAllocator
	}
	if o.Legacy == nil {
		o.Legacy = InitGM107FunctionMap
	}
}

// Registry owns one Entry per supported PCI function of a device. It is not
// safe for concurrent initialization; device bring-up serializes it.
type Registry struct {
	log     logr.Logger
	dev     Device
	opts    RegistryOptions
	entries [NumFunctions]Entry
}

func NewRegistry(log logr.Logger, dev Device, opts RegistryOptions) *Registry {
	opts.Defaults()
	return &Registry{
		log:  log,
		dev:  dev,
		opts: opts,
	}
}

// InitializeFunctionMap installs the register policy of PCI function fn.
// Calling it again for the same function keeps an existing vector table.
func (r *Registry) InitializeFunctionMap(fn uint8) error {
	role, err := DecodeFunction(fn)
	if err != nil {
		r.log.Error(err, "Invalid argument", "func", fn)
		assert.Fail("register map requested for unsupported PCI function %d", fn)
		metrics.RegisterMapInits.WithLabelValues("none", "invalid_argument").Inc()
		return err
	}

	switch role {
	case RolePrimary:
		err = r.initPrimary()
	case RoleLegacy:
		r.log.V(2).Info("Delegating register map to legacy initializer", "func", fn)
		err = r.opts.Legacy(r.dev, fn, &r.entries[fn])
		if err != nil {
			r.log.Error(err, "Legacy register map initialization failed", "func", fn)
		}
	}

	if err != nil {
		result := "error"
		if errors.Is(err, ErrOutOfMemory) {
			result = "out_of_memory"
		}
		metrics.RegisterMapInits.WithLabelValues(role.String(), result).Inc()
		return err
	}

	r.log.V(1).Info("Initialized register map", "func", fn, "role", role)
	metrics.RegisterMapInits.WithLabelValues(role.String(), "ok").Inc()
	return nil
}

func (r *Registry) initPrimary() error {
	entry := &r.entries[0]

	vectors := r.dev.MSIXVectorCount()
	words := vectors * MSIXEntryWords
	if !entry.vectors.Allocated() {
		buf, err := r.opts.Allocator(words)
		if err == nil && buf == nil {
			err = ErrOutOfMemory
		}
		if err != nil {
			if !errors.Is(err, ErrOutOfMemory) {
				err = fmt.Errorf("%w: %w", ErrOutOfMemory, err)
			}
			r.log.Error(err, "Failed to allocate MSI-X vector control shadow", "vectors", vectors)
			return err
		}
		entry.vectors = &VectorTable{words: buf}
		metrics.VectorTableAllocations.Inc()
		r.log.V(2).Info("Allocated MSI-X vector control shadow", "vectors", vectors, "bytes", entry.vectors.Size())
	}

	return entry.Install(0, ad102Function0Valid, ad102Function0Writable, Borrow(r.dev.GPUBootConfigSpace()))
}

// Entry returns the initialized entry of PCI function fn.
func (r *Registry) Entry(fn uint8) (*Entry, error) {
	if _, err := DecodeFunction(fn); err != nil {
		return nil, err
	}

	entry := &r.entries[fn]
	if !entry.initialized {
		return nil, fmt.Errorf("%w: function %d", ErrNotInitialized, fn)
	}
	return entry, nil
}

// Teardown releases the vector tables owned by the registry and resets every
// entry to uninitialized. Borrowed config space caches stay with the device.
func (r *Registry) Teardown() {
	for i := range r.entries {
		if r.entries[i].vectors.Allocated() {
			r.log.V(2).Info("Releasing MSI-X vector control shadow", "func", i)
		}
		r.entries[i] = Entry{}
	}
}
