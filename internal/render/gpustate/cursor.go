package gpustate

import "github.com/kiln-gfx/kiln/internal/render"

// RingCursor tracks the CPU write position across the rotating byte
// ranges of one logical GPU buffer. The CPU writes into range k+1 while
// the GPU still consumes range k; the backend gates Advance on its
// fences. All allocations are bounds-checked so an oversized geometry
// surfaces an error instead of corrupting a neighboring range.
type RingCursor struct {
	rangeSize  int
	rangeCount int
	active     int
	offset     int
}

// NewRingCursor creates a cursor over rangeCount ranges of rangeSize
// bytes each.
func NewRingCursor(rangeCount, rangeSize int) *RingCursor {
	return &RingCursor{
		rangeSize:  rangeSize,
		rangeCount: rangeCount,
	}
}

// RangeCount returns the number of ranges (frames in flight).
func (c *RingCursor) RangeCount() int { return c.rangeCount }

// RangeSize returns the capacity of one range in bytes.
func (c *RingCursor) RangeSize() int { return c.rangeSize }

// TotalSize returns the byte size of the whole buffer.
func (c *RingCursor) TotalSize() int { return c.rangeSize * c.rangeCount }

// Active returns the index of the range currently being written.
func (c *RingCursor) Active() int { return c.active }

// Used returns the bytes written into the active range this frame.
func (c *RingCursor) Used() int { return c.offset }

// BeginFrame resets the write position to the start of the active range.
// The caller must have confirmed the GPU released this range.
func (c *RingCursor) BeginFrame() {
	c.offset = 0
}

// Alloc reserves size bytes in the active range, aligned to align (a
// power of two, or 0/1 for none), and returns the absolute byte offset
// within the whole buffer.
func (c *RingCursor) Alloc(size, align int) (int, error) {
	if size > c.rangeSize {
		return 0, &render.GeometryTooLargeError{Size: size, Capacity: c.rangeSize}
	}
	offset := c.offset
	if align > 1 {
		offset = (offset + align - 1) &^ (align - 1)
	}
	if offset+size > c.rangeSize {
		return 0, render.ErrRangeFull
	}
	c.offset = offset + size
	return c.active*c.rangeSize + offset, nil
}

// Advance rotates to the next range. Called once per presented frame.
func (c *RingCursor) Advance() {
	c.active = (c.active + 1) % c.rangeCount
}

// RangeBase returns the absolute byte offset of the active range.
func (c *RingCursor) RangeBase() int {
	return c.active * c.rangeSize
}

// StaticCursor is a bump allocator over the static (upload-once) region
// of a buffer.
type StaticCursor struct {
	capacity int
	offset   int
}

// NewStaticCursor creates a cursor over capacity bytes.
func NewStaticCursor(capacity int) *StaticCursor {
	return &StaticCursor{capacity: capacity}
}

// Alloc reserves size bytes, returning the byte offset.
func (c *StaticCursor) Alloc(size, align int) (int, error) {
	offset := c.offset
	if align > 1 {
		offset = (offset + align - 1) &^ (align - 1)
	}
	if offset+size > c.capacity {
		if size > c.capacity {
			return 0, &render.GeometryTooLargeError{Size: size, Capacity: c.capacity}
		}
		return 0, render.ErrRangeFull
	}
	c.offset = offset + size
	return offset, nil
}

// Used returns the bytes allocated so far.
func (c *StaticCursor) Used() int { return c.offset }

// Capacity returns the total size of the region.
func (c *StaticCursor) Capacity() int { return c.capacity }

// Reset discards all allocations.
func (c *StaticCursor) Reset() { c.offset = 0 }
