package tgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/tgpu/driver"
)

// resourceIDs numbers every created resource. IDs start at 1; zero
// always means "none" in the pass state trackers.
var resourceIDs atomic.Uint64

// Device creates typed GPU resources on one backend device.
type Device struct {
	dev   driver.Device
	queue *Queue
}

// OpenDefault opens a device on the preferred registered backend.
// Backend packages register themselves from init; import one for its
// side effect:
//
//	import _ "github.com/gogpu/tgpu/driver/webgpu"
func OpenDefault() (*Device, error) {
	dev, err := driver.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("tgpu: open device: %w", err)
	}
	return wrapDevice(dev), nil
}

// Open opens a device on the named backend.
func Open(backend string) (*Device, error) {
	dev, err := driver.Open(backend)
	if err != nil {
		return nil, fmt.Errorf("tgpu: open device on %q: %w", backend, err)
	}
	return wrapDevice(dev), nil
}

// NewDevice wraps an already opened backend device. Use it with
// backend entry points that borrow handles from a host application,
// such as native.OpenShared.
func NewDevice(dev driver.Device) *Device {
	return wrapDevice(dev)
}

func wrapDevice(dev driver.Device) *Device {
	d := &Device{dev: dev}
	d.queue = &Queue{dev: d, q: dev.Queue()}
	Logger().Debug("tgpu: opened device")
	return d
}

// Queue returns the device's queue.
func (d *Device) Queue() *Queue { return d.queue }

// Close destroys the device. Resources created from it must no longer
// be used.
func (d *Device) Close() {
	d.dev.Destroy()
}
