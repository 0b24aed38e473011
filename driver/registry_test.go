package driver_test

import (
	"errors"
	"testing"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/driver/drivertest"
)

// fakeDriver wraps the recording driver under an arbitrary name.
type fakeDriver struct {
	name string
	drivertest.Driver
}

func (d *fakeDriver) Name() string { return d.name }

func register(t *testing.T, name string) *fakeDriver {
	t.Helper()
	drv := &fakeDriver{name: name}
	driver.Register(drv)
	t.Cleanup(func() { driver.Unregister(name) })
	return drv
}

func TestRegisterAndGet(t *testing.T) {
	drv := register(t, "fake")

	if !driver.IsRegistered("fake") {
		t.Error("IsRegistered(fake) = false after Register")
	}
	if got := driver.Get("fake"); got != driver.Driver(drv) {
		t.Errorf("Get(fake) = %v, want the registered driver", got)
	}
	found := false
	for _, name := range driver.Available() {
		if name == "fake" {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing fake", driver.Available())
	}

	driver.Unregister("fake")
	if driver.IsRegistered("fake") {
		t.Error("IsRegistered(fake) = true after Unregister")
	}
}

func TestDefaultPriority(t *testing.T) {
	native := register(t, driver.BackendNative)
	if got := driver.Default(); got != driver.Driver(native) {
		t.Errorf("Default() = %v, want the native driver", got)
	}

	// The FFI backend outranks the pure-Go one.
	webgpu := register(t, driver.BackendWebGPU)
	if got := driver.Default(); got != driver.Driver(webgpu) {
		t.Errorf("Default() = %v, want the webgpu driver", got)
	}
}

func TestDefaultEnvOverride(t *testing.T) {
	register(t, driver.BackendWebGPU)
	native := register(t, driver.BackendNative)

	t.Setenv(driver.EnvBackend, driver.BackendNative)
	if got := driver.Default(); got != driver.Driver(native) {
		t.Errorf("Default() with TGPU_BACKEND=native = %v, want the native driver", got)
	}

	// An unknown name falls back to the priority list.
	t.Setenv(driver.EnvBackend, "missing")
	if got := driver.Default(); got == driver.Driver(native) {
		t.Error("Default() with an unknown TGPU_BACKEND returned the native driver, want webgpu")
	}
}

func TestOpenUnregistered(t *testing.T) {
	_, err := driver.Open("missing")
	if !errors.Is(err, driver.ErrNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrNotAvailable", err)
	}
}

func TestOpenRegistered(t *testing.T) {
	register(t, "fake")
	dev, err := driver.Open("fake")
	if err != nil {
		t.Fatalf("Open(fake): %v", err)
	}
	if dev == nil {
		t.Fatal("Open(fake) returned a nil device")
	}
}
