package tgpu

import (
	"strings"
	"testing"

	"github.com/gogpu/tgpu/driver/drivertest"
)

// newTestDevice wraps a recording driver device so tests can assert on
// the call journal and on buffer contents without a GPU.
func newTestDevice(t *testing.T) (*Device, *drivertest.Device) {
	t.Helper()
	rec := drivertest.New()
	return wrapDevice(rec), rec
}

// expectPanic fails the test unless fn panics with a message containing
// want.
func expectPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected panic containing %q, got none", want)
			return
		}
		msg, ok := r.(string)
		if !ok {
			msg = r.(error).Error()
		}
		if !strings.Contains(msg, want) {
			t.Errorf("panic = %q, want it to contain %q", msg, want)
		}
	}()
	fn()
}

// countOps returns how many journal entries contain substr.
func countOps(ops []string, substr string) int {
	n := 0
	for _, op := range ops {
		if strings.Contains(op, substr) {
			n++
		}
	}
	return n
}

func hasOp(ops []string, substr string) bool { return countOps(ops, substr) > 0 }

// rawData returns the recording driver's backing bytes for a view's
// buffer.
func rawData[T any](v *View[T]) []byte {
	return v.buf.handle.(*drivertest.Buffer).Data
}
