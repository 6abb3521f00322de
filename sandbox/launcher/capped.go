package launcher

// cappedBuffer is an io.Writer that stops retaining bytes once the cap
// is reached. Overflow is counted, not stored, so a runaway guest
// program can never grow the engine's memory unboundedly.
type cappedBuffer struct {
	cap       int64
	buf       []byte
	truncated bool
	discarded int64
}

func newCappedBuffer(capBytes int64) *cappedBuffer {
	return &cappedBuffer{cap: capBytes}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.cap - int64(len(b.buf))
	if remaining <= 0 {
		b.truncated = true
		b.discarded += int64(len(p))
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf = append(b.buf, p[:remaining]...)
		b.truncated = true
		b.discarded += int64(len(p)) - remaining
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return string(b.buf)
}

func (b *cappedBuffer) Truncated() bool {
	return b.truncated
}
