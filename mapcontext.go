package tgpu

import "fmt"

// byteRange is a half-open [start, end) range in buffer bytes.
type byteRange struct {
	start uint64
	end   uint64
}

func (r byteRange) len() uint64 { return r.end - r.start }

func (r byteRange) intersects(o byteRange) bool {
	return r.start < o.end && o.start < r.end
}

func (r byteRange) contains(o byteRange) bool {
	return o.start >= r.start && o.end <= r.end
}

// mapContext tracks the mapped region of a buffer and the sub-ranges
// currently claimed by live guards. Claimed sub-ranges never overlap;
// a violation is a programming error and panics. All access goes through
// the owning buffer's mutex.
type mapContext struct {
	// initial is the mapped region. A zero-length initial range means
	// the buffer is not mapped.
	initial byteRange

	// subRanges are the byte ranges of unreleased guards.
	subRanges []byteRange
}

func (c *mapContext) mapped() bool { return c.initial.len() != 0 }

// beginMap records the mapped region. The buffer must not already be
// mapped.
func (c *mapContext) beginMap(r byteRange) {
	if c.mapped() {
		panic("tgpu: buffer is already mapped")
	}
	c.initial = r
}

// endMap clears the mapped region. Outstanding guard claims make the
// unmap illegal: their memory would be pulled out from under them.
func (c *mapContext) endMap() {
	if len(c.subRanges) != 0 {
		panic("tgpu: cannot unmap a buffer that still has accessible mapped views")
	}
	c.initial = byteRange{}
}

// claim registers a guard's byte range. The range must lie inside the
// mapped region and must not intersect any other claimed range.
func (c *mapContext) claim(r byteRange) {
	if !c.mapped() {
		panic("tgpu: buffer is not mapped")
	}
	if !c.initial.contains(r) {
		panic(fmt.Sprintf("tgpu: view range [%d, %d) is outside the mapped range [%d, %d)",
			r.start, r.end, c.initial.start, c.initial.end))
	}
	for _, s := range c.subRanges {
		if s.intersects(r) {
			panic(fmt.Sprintf("tgpu: view range [%d, %d) intersects the already mapped range [%d, %d)",
				r.start, r.end, s.start, s.end))
		}
	}
	c.subRanges = append(c.subRanges, r)
}

// release removes a previously claimed range. A missing range means the
// guard bookkeeping is corrupt.
func (c *mapContext) release(r byteRange) {
	for i, s := range c.subRanges {
		if s == r {
			c.subRanges = append(c.subRanges[:i], c.subRanges[i+1:]...)
			return
		}
	}
	panic("tgpu: unable to release an unclaimed mapped range")
}
