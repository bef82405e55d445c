package rtos

import "sync/atomic"

// ByteRing is a lock-free single-producer single-consumer byte channel. The
// producer side stands in for an interrupt handler: Push never blocks and
// drops the byte when the ring is full. The consumer polls with Pop.
type ByteRing struct {
	buf     []byte
	mask    uint32
	head    atomic.Uint32 // Next write position, owned by the producer
	tail    atomic.Uint32 // Next read position, owned by the consumer
	dropped atomic.Uint64
}

// NewByteRing creates a ring with capacity rounded up to a power of two.
func NewByteRing(capacity int) *ByteRing {
	size := 2
	for size < capacity {
		size <<= 1
	}
	return &ByteRing{
		buf:  make([]byte, size),
		mask: uint32(size - 1),
	}
}

// Push appends b. Returns false if the ring was full and b was dropped.
func (r *ByteRing) Push(b byte) bool {
	head := r.head.Load()
	if head-r.tail.Load() == uint32(len(r.buf)) {
		r.dropped.Add(1)
		return false
	}
	r.buf[head&r.mask] = b
	r.head.Store(head + 1)
	return true
}

// Pop removes the oldest byte. Returns false if the ring is empty.
func (r *ByteRing) Pop() (byte, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return 0, false
	}
	b := r.buf[tail&r.mask]
	r.tail.Store(tail + 1)
	return b, true
}

// Write pushes every byte of p so the ring can be the destination of io.Copy.
// Bytes that do not fit are dropped, the write itself never fails.
func (r *ByteRing) Write(p []byte) (int, error) {
	for _, b := range p {
		r.Push(b)
	}
	return len(p), nil
}

// Len returns the number of buffered bytes.
func (r *ByteRing) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Cap returns the ring capacity.
func (r *ByteRing) Cap() int { return len(r.buf) }

// Dropped returns the number of bytes lost to a full ring.
func (r *ByteRing) Dropped() uint64 { return r.dropped.Load() }
