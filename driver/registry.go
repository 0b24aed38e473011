package driver

import (
	"fmt"
	"os"
	"sync"
)

// Well-known backend names.
const (
	// BackendNative is the pure-Go backend over gogpu/wgpu.
	BackendNative = "native"
	// BackendWebGPU is the wgpu-native FFI backend (WebGPU JS under wasm).
	BackendWebGPU = "webgpu"
)

// EnvBackend overrides backend selection when set. Default selection
// consults it before the priority list.
const EnvBackend = "TGPU_BACKEND"

var (
	registryMu sync.RWMutex
	drivers    = make(map[string]Driver)
	// Priority order for default selection (first available wins).
	// WebGPU > Native (FFI is faster; the pure-Go backend always works).
	priority = []string{BackendWebGPU, BackendNative}
)

// Register registers a driver under its name. Backend packages call this
// from init. Registering a name twice replaces the earlier driver.
func Register(drv Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[drv.Name()] = drv
}

// Unregister removes a driver from the registry. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(drivers, name)
}

// Available returns the registered driver names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// IsRegistered reports whether a driver with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := drivers[name]
	return ok
}

// Get returns the driver registered under name, or nil.
func Get(name string) Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return drivers[name]
}

// Default returns the preferred registered driver. The TGPU_BACKEND
// environment variable takes precedence; otherwise the priority list is
// consulted, then any registered driver. Returns nil if none registered.
func Default() Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if name := os.Getenv(EnvBackend); name != "" {
		if drv, ok := drivers[name]; ok {
			return drv
		}
	}

	for _, name := range priority {
		if drv, ok := drivers[name]; ok {
			return drv
		}
	}

	// Fallback: any registered driver.
	for _, drv := range drivers {
		return drv
	}
	return nil
}

// OpenDefault opens a device on the preferred registered driver.
func OpenDefault() (Device, error) {
	drv := Default()
	if drv == nil {
		return nil, fmt.Errorf("%w: no driver registered", ErrNotAvailable)
	}
	return drv.Open()
}

// Open opens a device on the named driver.
func Open(name string) (Device, error) {
	drv := Get(name)
	if drv == nil {
		return nil, fmt.Errorf("%w: %q not registered", ErrNotAvailable, name)
	}
	return drv.Open()
}
