package drbg

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/hkdf"
)

// GetEntropyFn gathers fresh randomness into a pool sized between minLen and
// maxLen bytes, crediting at least minEntropyBits bits of entropy, or fails.
// It must never silently retry forever.
type GetEntropyFn func(minEntropyBits, minLen, maxLen int) (*Pool, error)

// CleanupEntropyFn releases a pool returned by the matching GetEntropyFn.
type CleanupEntropyFn func(*Pool)

// GetNonceFn returns a single-use value between minLen and maxLen bytes.
type GetNonceFn func(minLen, maxLen int) ([]byte, error)

// CleanupNonceFn releases a buffer returned by the matching GetNonceFn.
type CleanupNonceFn func([]byte)

// hkdf output is capped at 255 blocks of the underlying hash.
const condChunkLen = 4096

// defaultGetEntropy reads the OS random source and conditions it through
// HKDF-SHA256 salted with timing jitter. The conditioned output is credited
// 8 bits of entropy per byte, the OS source being trusted to provide full
// entropy input.
func defaultGetEntropy(minEntropyBits, minLen, maxLen int) (*Pool, error) {
	pool, err := NewPool(minLen, maxLen)
	if err != nil {
		return nil, err
	}
	pool.SetEntropyRequested(minEntropyBits)
	n, err := pool.BytesNeeded(8)
	if err != nil {
		pool.Release()
		return nil, err
	}
	if n == 0 {
		return pool, nil
	}
	raw := make([]byte, n)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		pool.Release()
		return nil, fmt.Errorf("%w: %v", ErrEntropySource, err)
	}
	salt := jitterSalt()
	cond := make([]byte, n)
	for off := 0; off < n; off += condChunkLen {
		end := min(off+condChunkLen, n)
		info := binary.BigEndian.AppendUint32([]byte("drbg entropy "), uint32(off))
		r := hkdf.New(sha256.New, raw, salt, info)
		if _, err = io.ReadFull(r, cond[off:end]); err != nil {
			wipe(raw)
			pool.Release()
			return nil, fmt.Errorf("%w: %v", ErrEntropySource, err)
		}
	}
	wipe(raw)
	err = pool.Add(cond, 8*n)
	wipe(cond)
	if err != nil {
		pool.Release()
		return nil, err
	}
	return pool, nil
}

func defaultCleanupEntropy(pool *Pool) {
	pool.Release()
}

// jitterSalt hashes a series of fine-grained timing measurements. It is only
// a salt for the conditioning step, not a credited entropy source.
func jitterSalt() []byte {
	h := sha256.New()
	var tmp [8]byte
	for i := 0; i < 32; i++ {
		t0 := time.Now()
		for k := 0; k < 100+(i%17); k++ {
			_ = k
		}
		binary.LittleEndian.PutUint64(tmp[:], uint64(time.Since(t0).Nanoseconds()))
		h.Write(tmp[:])
		binary.LittleEndian.PutUint64(tmp[:], uint64(time.Now().UnixNano()))
		h.Write(tmp[:])
	}
	return h.Sum(nil)
}

var nonceCounter atomic.Uint64

// defaultGetNonce builds a nonce from the pid, the wall clock and a
// per-process counter. Uniqueness matters here, not secrecy.
func defaultGetNonce(minLen, maxLen int) ([]byte, error) {
	n := min(max(minLen, 16), maxLen)
	if n > sha256.Size {
		return nil, fmt.Errorf("nonce length %d not supported", n)
	}
	var data [24]byte
	binary.BigEndian.PutUint64(data[0:8], uint64(os.Getpid()))
	binary.BigEndian.PutUint64(data[8:16], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(data[16:24], nonceCounter.Add(1))
	sum := sha256.Sum256(data[:])
	return sum[:n], nil
}

func defaultCleanupNonce(buf []byte) {
	wipe(buf)
}
