package tgpu

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/tgpu/driver"
	"github.com/gogpu/tgpu/driver/drivertest"
)

func TestOpenNamedBackend(t *testing.T) {
	drv := &drivertest.Driver{}
	driver.Register(drv)
	t.Cleanup(func() { driver.Unregister(drv.Name()) })

	d, err := Open("test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Queue() == nil {
		t.Error("Queue() = nil")
	}
	d.Close()
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("nonexistent")
	if !errors.Is(err, driver.ErrNotAvailable) {
		t.Errorf("Open error = %v, want ErrNotAvailable", err)
	}
}

func TestOpenDefaultWithoutDrivers(t *testing.T) {
	_, err := OpenDefault()
	if !errors.Is(err, driver.ErrNotAvailable) {
		t.Errorf("OpenDefault error = %v, want ErrNotAvailable", err)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	d, _ := newTestDevice(t)
	if _, err := CreateBuffer[uint32](d, "logged", 4, BufferUsageCopyDst); err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if !strings.Contains(buf.String(), "buffer created") {
		t.Errorf("log output = %q, want a buffer creation record", buf.String())
	}

	SetLogger(nil)
	if Logger() == nil {
		t.Error("Logger() = nil after SetLogger(nil)")
	}
}
