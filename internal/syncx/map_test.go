package syncx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	var m Map[string, int]
	m.Store("a", 1)
	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, m.Has("a"))

	m.Store("b", 2)
	m.Delete("a")
	assert.False(t, m.Has("a"))

	v, ok = m.LoadAndDelete("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = m.LoadAndDelete("b")
	assert.False(t, ok)
}

func TestMapValues(t *testing.T) {
	var m Map[string, int]
	m.Store("a", 1)
	m.Store("b", 2)
	values := m.Values()
	assert.Len(t, values, 2)
	assert.ElementsMatch(t, []int{1, 2}, values)
	m.Clear()
	assert.Empty(t, m.Values())
}

func TestMapConcurrentAccess(t *testing.T) {
	var m Map[int, int]
	const n = 100

	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m.Store(i, i*10)
		}(i)
	}
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m.Load(i)
		}(i)
	}
	wg.Wait()
}
