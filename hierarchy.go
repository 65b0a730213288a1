package drbg

import "slices"

// Hierarchy wires one master instance to two children, a public and a
// private one. The children never poll the entropy source directly: they
// seed from the master's output, and the propagation counter guarantees that
// entropy added to the master has an immediate, deterministic effect on both
// children's output. All three instances have locking enabled and may be
// shared between goroutines.
//
// Keeping the generators for public values (nonces, salts) and for secrets
// (keys) separate means a leaked public output stream never shares state
// with the private one.
type Hierarchy struct {
	master  *DRBG
	public  *DRBG
	private *DRBG
}

// NewHierarchy creates and instantiates a master plus its public and private
// children, all of the given type. Options apply to all three instances.
func NewHierarchy(t Type, opts ...Option) (*Hierarchy, error) {
	master, err := New(t, append(slices.Clone(opts), WithLocking())...)
	if err != nil {
		return nil, err
	}
	if err = master.Instantiate([]byte("drbg hierarchy master")); err != nil {
		master.Free()
		return nil, err
	}
	newChild := func(role string) (*DRBG, error) {
		child, err := New(t, append(slices.Clone(opts), WithParent(master), WithLocking())...)
		if err != nil {
			return nil, err
		}
		if err = child.Instantiate([]byte("drbg hierarchy " + role)); err != nil {
			child.Free()
			return nil, err
		}
		return child, nil
	}
	public, err := newChild("public")
	if err != nil {
		master.Free()
		return nil, err
	}
	private, err := newChild("private")
	if err != nil {
		public.Free()
		master.Free()
		return nil, err
	}
	return &Hierarchy{master: master, public: public, private: private}, nil
}

// Master returns the master instance.
func (h *Hierarchy) Master() *DRBG { return h.master }

// Public returns the child used for publicly visible output.
func (h *Hierarchy) Public() *DRBG { return h.public }

// Private returns the child used for secret material.
func (h *Hierarchy) Private() *DRBG { return h.private }

// Instances returns the three instances, master first.
func (h *Hierarchy) Instances() []*DRBG {
	return []*DRBG{h.master, h.public, h.private}
}

// AddEntropy injects caller randomness into the master. Both children pick
// up the new seed material on their next generate call via the propagation
// counter.
func (h *Hierarchy) AddEntropy(data []byte, entropyBits int) error {
	return h.master.AddEntropy(data, entropyBits)
}

// Bytes fills out from the public child.
func (h *Hierarchy) Bytes(out []byte) error {
	return h.public.Generate(out, nil)
}

// PrivateBytes fills out from the private child.
func (h *Hierarchy) PrivateBytes(out []byte) error {
	return h.private.Generate(out, nil)
}

// Free releases the children first, then the master.
func (h *Hierarchy) Free() {
	h.private.Free()
	h.public.Free()
	h.master.Free()
}
