package drbg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool(16, 64)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Entropy())
	assert.Equal(t, 64, p.BytesRemaining())

	_, err = NewPool(64, 16)
	assert.Error(t, err)
	_, err = NewPool(-1, 16)
	assert.Error(t, err)
}

func TestPoolAdd(t *testing.T) {
	p, err := NewPool(0, 8)
	require.NoError(t, err)
	require.NoError(t, p.Add([]byte{1, 2, 3, 4}, 32))
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 32, p.Entropy())
	assert.Equal(t, []byte{1, 2, 3, 4}, p.Buffer())

	assert.ErrorIs(t, p.Add(make([]byte, 5), 0), ErrPoolOverflow)
	assert.Error(t, p.Add([]byte{5}, 9), "more than 8 bits per byte")
	require.NoError(t, p.Add([]byte{5, 6, 7, 8}, 16))
	assert.Equal(t, 48, p.Entropy())
}

func TestPoolBytesNeeded(t *testing.T) {
	p, err := NewPool(16, 64)
	require.NoError(t, err)
	p.SetEntropyRequested(256)
	n, err := p.BytesNeeded(8)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	// Low-quality input needs proportionally more bytes.
	p.SetEntropyRequested(64)
	n, err = p.BytesNeeded(2)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	// The minimum fill dominates small requests.
	p.SetEntropyRequested(8)
	n, err = p.BytesNeeded(8)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	// A request the pool cannot hold is an error.
	p.SetEntropyRequested(8 * 65)
	_, err = p.BytesNeeded(8)
	assert.ErrorIs(t, err, ErrPoolOverflow)

	_, err = p.BytesNeeded(0)
	assert.Error(t, err)
	_, err = p.BytesNeeded(9)
	assert.Error(t, err)
}

func TestPoolEntropyNeeded(t *testing.T) {
	p, err := NewPool(0, 64)
	require.NoError(t, err)
	p.SetEntropyRequested(128)
	assert.Equal(t, 128, p.EntropyNeeded())
	require.NoError(t, p.Add(make([]byte, 8), 64))
	assert.Equal(t, 64, p.EntropyNeeded())
	require.NoError(t, p.Add(make([]byte, 16), 128))
	assert.Equal(t, 0, p.EntropyNeeded())
}

func TestPoolReleaseZeroizes(t *testing.T) {
	p, err := NewPool(0, 8)
	require.NoError(t, err)
	require.NoError(t, p.Add([]byte{1, 2, 3, 4}, 32))
	buf := p.Buffer()
	p.Release()
	assert.Equal(t, make([]byte, 4), buf[:4])
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Entropy())
}

func TestAttachPool(t *testing.T) {
	mem := []byte{9, 8, 7, 6}
	p := AttachPool(mem, 16)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 16, p.Entropy())
	// Attached memory belongs to the caller and survives Release.
	p.Release()
	assert.Equal(t, []byte{9, 8, 7, 6}, mem)
}

func TestAttachPoolEntropyCap(t *testing.T) {
	p := AttachPool(bytes.Repeat([]byte{1}, 4), 1000)
	assert.Equal(t, 32, p.Entropy())
}

func TestPoolReleaseNil(t *testing.T) {
	var p *Pool
	p.Release() // must not panic
}
