package tgpu

import "testing"

func TestRequireUsage(t *testing.T) {
	requireUsage(BufferUsageCopySrc|BufferUsageMapRead, BufferUsageMapRead, "MapRead")

	expectPanic(t, "missing the Vertex usage required for a vertex buffer", func() {
		requireUsage(BufferUsageCopyDst, BufferUsageVertex, "a vertex buffer")
	})
	expectPanic(t, "missing the QueryResolve usage", func() {
		requireUsage(BufferUsageStorage, BufferUsageQueryResolve, "a query resolve destination")
	})
}

func TestUsageName(t *testing.T) {
	tests := []struct {
		u    BufferUsage
		want string
	}{
		{BufferUsageMapRead, "MapRead"},
		{BufferUsageMapWrite, "MapWrite"},
		{BufferUsageCopySrc, "CopySrc"},
		{BufferUsageCopyDst, "CopyDst"},
		{BufferUsageIndex, "Index"},
		{BufferUsageVertex, "Vertex"},
		{BufferUsageUniform, "Uniform"},
		{BufferUsageStorage, "Storage"},
		{BufferUsageIndirect, "Indirect"},
		{BufferUsageQueryResolve, "QueryResolve"},
		{BufferUsageMapRead | BufferUsageCopySrc, "requested"},
	}
	for _, tt := range tests {
		if got := usageName(tt.u); got != tt.want {
			t.Errorf("usageName(%d) = %q, want %q", tt.u, got, tt.want)
		}
	}
}
