package exec

import "bytes"

// boundedBuffer accumulates output up to a byte cap, keeping the oldest
// content and discarding everything past the cap. Each stream drain owns
// exactly one buffer, so no locking is needed.
type boundedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func newBoundedBuffer(max int) *boundedBuffer {
	return &boundedBuffer{max: max}
}

// Write appends p until the cap is reached; the overflow is dropped.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }

func (b *boundedBuffer) Truncated() bool { return b.truncated }
