package tgpu

import (
	"fmt"

	"github.com/gogpu/tgpu/driver"
)

// querySet is the state shared by both query set kinds.
type querySet struct {
	dev       *Device
	handle    driver.QuerySet
	id        uint64
	count     uint32
	destroyed bool
}

func (q *querySet) checkAlive() {
	if q.destroyed {
		panic("tgpu: query set has been destroyed")
	}
}

func (q *querySet) destroy() {
	if q.destroyed {
		return
	}
	q.destroyed = true
	q.handle.Destroy()
}

// OcclusionQuerySet holds occlusion query slots for render passes.
type OcclusionQuerySet struct {
	q querySet
}

// CreateOcclusionQuerySet creates an occlusion query set with count
// slots.
func (d *Device) CreateOcclusionQuerySet(label string, count uint32) (*OcclusionQuerySet, error) {
	handle, err := d.dev.CreateQuerySet(&driver.QuerySetDescriptor{
		Label: label,
		Type:  driver.QueryTypeOcclusion,
		Count: count,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create occlusion query set %q: %w", label, err)
	}
	return &OcclusionQuerySet{q: querySet{dev: d, handle: handle, id: resourceIDs.Add(1), count: count}}, nil
}

// Count returns the number of query slots.
func (s *OcclusionQuerySet) Count() uint32 { return s.q.count }

// Destroy releases the query set. Idempotent.
func (s *OcclusionQuerySet) Destroy() { s.q.destroy() }

// TimestampQuerySet holds timestamp query slots. Not every backend
// supports timestamps; creation returns driver.ErrNotSupported when the
// capability is missing.
type TimestampQuerySet struct {
	q querySet
}

// CreateTimestampQuerySet creates a timestamp query set with count
// slots.
func (d *Device) CreateTimestampQuerySet(label string, count uint32) (*TimestampQuerySet, error) {
	handle, err := d.dev.CreateQuerySet(&driver.QuerySetDescriptor{
		Label: label,
		Type:  driver.QueryTypeTimestamp,
		Count: count,
	})
	if err != nil {
		return nil, fmt.Errorf("tgpu: create timestamp query set %q: %w", label, err)
	}
	return &TimestampQuerySet{q: querySet{dev: d, handle: handle, id: resourceIDs.Add(1), count: count}}, nil
}

// Count returns the number of query slots.
func (s *TimestampQuerySet) Count() uint32 { return s.q.count }

// Destroy releases the query set. Idempotent.
func (s *TimestampQuerySet) Destroy() { s.q.destroy() }
