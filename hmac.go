package drbg

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// hmacDRBG is the HMAC_DRBG construction of SP 800-90A section 10.1.2.
type hmacDRBG struct {
	newHash func() hash.Hash
	outLen  int
	k       []byte
	v       []byte
	ready   bool
}

func newHMAC(t Type) (*hmacDRBG, int, int, error) {
	h := new(hmacDRBG)
	var strength int
	switch t {
	case HMACSHA256:
		h.newHash, h.outLen, strength = sha256.New, sha256.Size, 256
	case HMACSHA384:
		h.newHash, h.outLen, strength = sha512.New384, sha512.Size384, 256
	case HMACSHA512:
		h.newHash, h.outLen, strength = sha512.New, sha512.Size, 256
	default:
		return nil, 0, 0, ErrUnknownType
	}
	h.k = make([]byte, h.outLen)
	h.v = make([]byte, h.outLen)
	// The seed length plays no role in the HMAC construction beyond sizing,
	// report the combined K/V state size.
	return h, strength, 2 * h.outLen, nil
}

// update is HMAC_DRBG_Update: one 0x00 round always, one 0x01 round only when
// provided data is present.
func (h *hmacDRBG) update(provided ...[]byte) {
	hasData := false
	for _, p := range provided {
		if len(p) > 0 {
			hasData = true
			break
		}
	}
	for _, round := range []byte{0x00, 0x01} {
		mac := hmac.New(h.newHash, h.k)
		mac.Write(h.v)
		mac.Write([]byte{round})
		for _, p := range provided {
			mac.Write(p)
		}
		h.k = mac.Sum(h.k[:0])

		mac = hmac.New(h.newHash, h.k)
		mac.Write(h.v)
		h.v = mac.Sum(h.v[:0])

		if !hasData {
			break
		}
	}
}

func (h *hmacDRBG) instantiate(ent, nonce, pers []byte) error {
	for i := range h.k {
		h.k[i] = 0x00
	}
	for i := range h.v {
		h.v[i] = 0x01
	}
	h.update(ent, nonce, pers)
	h.ready = true
	return nil
}

func (h *hmacDRBG) reseed(ent, adin []byte) error {
	if !h.ready {
		return ErrNotInstantiated
	}
	h.update(ent, adin)
	return nil
}

func (h *hmacDRBG) generate(out, adin []byte) error {
	if !h.ready {
		return ErrNotInstantiated
	}
	if len(adin) > 0 {
		h.update(adin)
	}
	for done := 0; done < len(out); {
		mac := hmac.New(h.newHash, h.k)
		mac.Write(h.v)
		h.v = mac.Sum(h.v[:0])
		done += copy(out[done:], h.v)
	}
	h.update(adin)
	return nil
}

func (h *hmacDRBG) uninstantiate() {
	wipe(h.k)
	wipe(h.v)
	h.ready = false
}
