package drbg

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d, err := New(HMACSHA256,
		WithClock(clock),
		WithLogger(discardLogger()),
		WithReseedInterval(42),
		WithReseedTimeInterval(3*time.Minute),
		WithLocking())
	require.NoError(t, err)
	defer d.Free()
	assert.Same(t, clock, d.clock)
	assert.Equal(t, uint64(42), d.reseedInterval)
	assert.Equal(t, 3*time.Minute, d.reseedTimeInterval)
	assert.NotNil(t, d.mu)
}

func TestOptionDefaults(t *testing.T) {
	d, err := New(CTRAES256)
	require.NoError(t, err)
	defer d.Free()
	assert.Equal(t, uint64(masterReseedInterval), d.reseedInterval)
	assert.Equal(t, masterReseedTimeInterval, d.reseedTimeInterval)
	assert.NotNil(t, d.getNonce)
	assert.Nil(t, d.mu)
}

func TestOptionChildDefaults(t *testing.T) {
	parent, err := New(CTRAES256, deterministicOpts()...)
	require.NoError(t, err)
	defer parent.Free()
	child, err := New(CTRAES256, deterministicOpts(WithParent(parent))...)
	require.NoError(t, err)
	defer child.Free()
	assert.True(t, child.hasParent)
	assert.Equal(t, parent.id, child.parentID)
	assert.Equal(t, uint64(childReseedInterval), child.reseedInterval)
	assert.Equal(t, childReseedTimeInterval, child.reseedTimeInterval)
}

func TestWithoutNonceSource(t *testing.T) {
	d, err := New(HMACSHA256, WithoutNonceSource(), WithLogger(discardLogger()))
	require.NoError(t, err)
	defer d.Free()
	assert.Nil(t, d.getNonce)
	assert.Nil(t, d.cleanupNonce)
}

func TestOptionIntervalOutOfRange(t *testing.T) {
	_, err := New(HMACSHA256, WithReseedInterval(maxReseedInterval+1))
	assert.Error(t, err)
	_, err = New(HMACSHA256, WithReseedTimeInterval(maxReseedTimeInterval+time.Second))
	assert.Error(t, err)
}
