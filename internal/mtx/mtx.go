package mtx

import "sync"

// Mtx is a value guarded by its own mutex.
type Mtx[T any] struct {
	sync.Mutex
	v T
}

// NewMtx creates a new Mtx containing the given value.
func NewMtx[T any](v T) Mtx[T] {
	return Mtx[T]{v: v}
}

// Val returns a pointer to the protected value without locking.
// The caller is responsible for holding the lock.
func (m *Mtx[T]) Val() *T {
	return &m.v
}

// Get returns a copy of the protected value.
func (m *Mtx[T]) Get() (out T) {
	m.With(func(v *T) { out = *v })
	return
}

// Set replaces the protected value.
func (m *Mtx[T]) Set(newV T) {
	m.With(func(v *T) { *v = newV })
}

// With runs the clb while holding the lock.
func (m *Mtx[T]) With(clb func(v *T)) {
	_ = m.WithE(func(v *T) error {
		clb(v)
		return nil
	})
}

// WithE runs the clb while holding the lock, returning the clb error.
func (m *Mtx[T]) WithE(clb func(v *T) error) error {
	m.Lock()
	defer m.Unlock()
	return clb(&m.v)
}

// RWMtx is a value guarded by its own read-write mutex.
type RWMtx[T any] struct {
	sync.RWMutex
	v T
}

// NewRWMtx creates a new RWMtx containing the given value.
func NewRWMtx[T any](v T) RWMtx[T] {
	return RWMtx[T]{v: v}
}

// Val returns a pointer to the protected value without locking.
// The caller is responsible for holding the lock.
func (m *RWMtx[T]) Val() *T {
	return &m.v
}

// Get returns a copy of the protected value.
func (m *RWMtx[T]) Get() (out T) {
	m.RWith(func(v T) { out = v })
	return
}

// Set replaces the protected value.
func (m *RWMtx[T]) Set(newV T) {
	m.With(func(v *T) { *v = newV })
}

// RWith runs the clb while holding the read lock.
func (m *RWMtx[T]) RWith(clb func(v T)) {
	_ = m.RWithE(func(v T) error {
		clb(v)
		return nil
	})
}

// RWithE runs the clb while holding the read lock, returning the clb error.
func (m *RWMtx[T]) RWithE(clb func(v T) error) error {
	m.RLock()
	defer m.RUnlock()
	return clb(m.v)
}

// With runs the clb while holding the write lock.
func (m *RWMtx[T]) With(clb func(v *T)) {
	_ = m.WithE(func(v *T) error {
		clb(v)
		return nil
	})
}

// WithE runs the clb while holding the write lock, returning the clb error.
func (m *RWMtx[T]) WithE(clb func(v *T) error) error {
	m.Lock()
	defer m.Unlock()
	return clb(&m.v)
}
