package drbg

import "errors"

// ErrPoolOverflow is returned when adding to a pool would exceed its maximum
// length.
var ErrPoolOverflow = errors.New("random pool overflow")

// Pool is a dumb container collecting random input (entropy, nonce,
// additional data) from various sources before it is consumed by a generation
// algorithm. A pool has no locking because its scope and lifetime are
// restricted to a single call: create it, fill it, seed the generator,
// release it.
type Pool struct {
	buffer           []byte
	attached         bool // buffer belongs to the caller, never zeroed or freed here
	minLen, maxLen   int
	entropy          int // bits of entropy currently credited
	entropyRequested int // bits the caller still needs
}

// NewPool creates a pool owning a buffer sized between minLen and maxLen.
func NewPool(minLen, maxLen int) (*Pool, error) {
	if minLen < 0 || maxLen <= 0 || minLen > maxLen {
		return nil, errors.New("invalid pool length bounds")
	}
	return &Pool{
		buffer: make([]byte, 0, minLen),
		minLen: minLen,
		maxLen: maxLen,
	}, nil
}

// AttachPool wraps caller-supplied memory without taking ownership. The
// credited entropy is capped at 8 bits per byte.
func AttachPool(buf []byte, entropyBits int) *Pool {
	return &Pool{
		buffer:   buf,
		attached: true,
		minLen:   len(buf),
		maxLen:   len(buf),
		entropy:  min(entropyBits, 8*len(buf)),
	}
}

// Add appends data to the pool and credits entropyBits bits of entropy to it.
func (p *Pool) Add(data []byte, entropyBits int) error {
	if len(p.buffer)+len(data) > p.maxLen {
		return ErrPoolOverflow
	}
	if entropyBits > 8*len(data) {
		return errors.New("entropy credit exceeds 8 bits per byte")
	}
	p.buffer = append(p.buffer, data...)
	p.entropy += entropyBits
	return nil
}

// Buffer returns the bytes currently held by the pool.
func (p *Pool) Buffer() []byte { return p.buffer }

// Len returns the number of bytes currently held by the pool.
func (p *Pool) Len() int { return len(p.buffer) }

// Entropy returns the bits of entropy currently credited to the pool.
func (p *Pool) Entropy() int { return p.entropy }

// SetEntropyRequested records how many bits of entropy the caller needs.
func (p *Pool) SetEntropyRequested(bits int) { p.entropyRequested = bits }

// EntropyNeeded returns how many bits of entropy are still missing.
func (p *Pool) EntropyNeeded() int {
	return max(0, p.entropyRequested-p.entropy)
}

// BytesNeeded returns how many bytes a source crediting bitsPerByte bits of
// entropy per byte should add to satisfy the request, honoring the pool's
// minimum fill and remaining capacity.
func (p *Pool) BytesNeeded(bitsPerByte int) (int, error) {
	if bitsPerByte < 1 || bitsPerByte > 8 {
		return 0, errors.New("bits per byte out of range")
	}
	n := (p.EntropyNeeded() + bitsPerByte - 1) / bitsPerByte
	if fill := p.minLen - p.Len(); n < fill {
		n = fill
	}
	if n > p.BytesRemaining() {
		return 0, ErrPoolOverflow
	}
	return n, nil
}

// BytesRemaining returns the free capacity of the pool.
func (p *Pool) BytesRemaining() int {
	return p.maxLen - p.Len()
}

// Release zeroes and drops the buffer, unless it is attached caller memory,
// which is left untouched.
func (p *Pool) Release() {
	if p == nil {
		return
	}
	if !p.attached {
		wipe(p.buffer)
	}
	p.buffer = nil
	p.entropy = 0
	p.entropyRequested = 0
}
