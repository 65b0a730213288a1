package syncx

import (
	"iter"
	"slices"
	"sync"
)

// Map is a typed wrapper around sync.Map.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Has returns either or not the map has the provided key
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Load(key)
	return ok
}

func (m *Map[K, V]) Load(key K) (V, bool) {
	var zeroV V
	if v, ok := m.m.Load(key); ok {
		return v.(V), ok
	}
	return zeroV, false
}

// Store sets the value for a key.
func (m *Map[K, V]) Store(key K, value V) {
	m.m.Store(key, value)
}

func (m *Map[K, V]) LoadAndDelete(key K) (V, bool) {
	var zeroV V
	if v, loaded := m.m.LoadAndDelete(key); loaded {
		return v.(V), loaded
	}
	return zeroV, false
}

func (m *Map[K, V]) Delete(key K) {
	m.m.Delete(key)
}

func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.m.Range(func(k, v any) bool {
		typedKey, ok1 := k.(K)
		if !ok1 {
			panic("invalid key type")
		}
		typedValue, ok2 := v.(V)
		if !ok2 {
			panic("invalid value type")
		}
		return f(typedKey, typedValue)
	})
}

func (m *Map[K, V]) RangeValues(f func(value V) bool) {
	m.Range(func(_ K, value V) bool {
		return f(value)
	})
}

func (m *Map[K, V]) IterValues() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.RangeValues(yield)
	}
}

func (m *Map[K, V]) Values() (out []V) {
	return slices.Collect(m.IterValues())
}

func (m *Map[K, V]) Clear() {
	m.m.Clear()
}
