package drbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGetEntropy(t *testing.T) {
	pool, err := defaultGetEntropy(256, 32, 1024)
	require.NoError(t, err)
	defer defaultCleanupEntropy(pool)
	assert.GreaterOrEqual(t, pool.Len(), 32)
	assert.GreaterOrEqual(t, pool.Entropy(), 256)
	assert.NotEqual(t, make([]byte, pool.Len()), pool.Buffer())
}

func TestDefaultGetEntropyZeroRequest(t *testing.T) {
	pool, err := defaultGetEntropy(0, 0, 64)
	require.NoError(t, err)
	defer defaultCleanupEntropy(pool)
	assert.Equal(t, 0, pool.Len())
}

func TestDefaultGetEntropyTooSmallPool(t *testing.T) {
	_, err := defaultGetEntropy(8*65, 0, 64)
	assert.ErrorIs(t, err, ErrPoolOverflow)
}

func TestDefaultGetEntropyIndependentDraws(t *testing.T) {
	p1, err := defaultGetEntropy(128, 16, 64)
	require.NoError(t, err)
	defer defaultCleanupEntropy(p1)
	p2, err := defaultGetEntropy(128, 16, 64)
	require.NoError(t, err)
	defer defaultCleanupEntropy(p2)
	assert.NotEqual(t, p1.Buffer(), p2.Buffer())
}

func TestDefaultGetNonce(t *testing.T) {
	n1, err := defaultGetNonce(16, 32)
	require.NoError(t, err)
	assert.Len(t, n1, 16)
	n2, err := defaultGetNonce(16, 32)
	require.NoError(t, err)
	assert.NotEqual(t, n1, n2, "counter makes every nonce unique")

	// Small minimums are padded up to a useful size, capped by maxLen.
	n3, err := defaultGetNonce(4, 8)
	require.NoError(t, err)
	assert.Len(t, n3, 8)

	n4, err := defaultGetNonce(32, 64)
	require.NoError(t, err)
	assert.Len(t, n4, 32)

	_, err = defaultGetNonce(48, 64)
	assert.Error(t, err)

	defaultCleanupNonce(n1)
	assert.Equal(t, make([]byte, 16), n1)
}

func TestJitterSalt(t *testing.T) {
	assert.Len(t, jitterSalt(), 32)
}
