package drbg

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
)

// Seed lengths from SP 800-90A section 10.1 table 2.
const (
	hashSeedLen    = 440 / 8 // digests up to 256 bits
	hashSeedLenBig = 888 / 8 // SHA-384 and SHA-512
)

// hashDRBG is the Hash_DRBG construction of SP 800-90A section 10.1.1.
type hashDRBG struct {
	newHash func() hash.Hash
	seedLen int
	v       []byte
	c       []byte
	// Number of generate requests since the last (re)seeding, mixed into
	// the state update at the end of every generate call.
	genCounter uint64
	ready      bool
}

func newHash(t Type) (*hashDRBG, int, int, error) {
	h := new(hashDRBG)
	var strength int
	switch t {
	case HashSHA256:
		h.newHash, h.seedLen, strength = sha256.New, hashSeedLen, 256
	case HashSHA384:
		h.newHash, h.seedLen, strength = sha512.New384, hashSeedLenBig, 256
	case HashSHA512:
		h.newHash, h.seedLen, strength = sha512.New, hashSeedLenBig, 256
	default:
		return nil, 0, 0, ErrUnknownType
	}
	h.v = make([]byte, h.seedLen)
	h.c = make([]byte, h.seedLen)
	return h, strength, h.seedLen, nil
}

// hashDF is Hash_df (SP 800-90A section 10.3.1): stretch or compress the
// concatenated inputs into outLen bytes.
func (h *hashDRBG) hashDF(out []byte, inputs ...[]byte) {
	var lenBits [4]byte
	binary.BigEndian.PutUint32(lenBits[:], uint32(len(out)*8))
	hs := h.newHash()
	for done, counter := 0, byte(1); done < len(out); counter++ {
		hs.Reset()
		hs.Write([]byte{counter})
		hs.Write(lenBits[:])
		for _, in := range inputs {
			hs.Write(in)
		}
		done += copy(out[done:], hs.Sum(nil))
	}
}

// addTo adds src into dst modulo 2^(8*len(dst)), both big-endian.
func addTo(dst, src []byte) {
	var carry uint16
	j := len(src) - 1
	for i := len(dst) - 1; i >= 0; i-- {
		sum := uint16(dst[i]) + carry
		if j >= 0 {
			sum += uint16(src[j])
			j--
		} else if carry == 0 {
			break
		}
		dst[i] = byte(sum)
		carry = sum >> 8
	}
}

// addUint64To adds n into dst modulo 2^(8*len(dst)), big-endian.
func addUint64To(dst []byte, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	addTo(dst, buf[:])
}

func (h *hashDRBG) instantiate(ent, nonce, pers []byte) error {
	h.hashDF(h.v, ent, nonce, pers)
	h.hashDF(h.c, []byte{0x00}, h.v)
	h.genCounter = 1
	h.ready = true
	return nil
}

func (h *hashDRBG) reseed(ent, adin []byte) error {
	if !h.ready {
		return ErrNotInstantiated
	}
	newV := make([]byte, h.seedLen)
	h.hashDF(newV, []byte{0x01}, h.v, ent, adin)
	wipe(h.v)
	h.v = newV
	h.hashDF(h.c, []byte{0x00}, h.v)
	h.genCounter = 1
	return nil
}

// hashgen fills out by hashing successive increments of a copy of V.
func (h *hashDRBG) hashgen(out []byte) {
	data := make([]byte, h.seedLen)
	copy(data, h.v)
	hs := h.newHash()
	for done := 0; done < len(out); {
		hs.Reset()
		hs.Write(data)
		done += copy(out[done:], hs.Sum(nil))
		addUint64To(data, 1)
	}
	wipe(data)
}

func (h *hashDRBG) generate(out, adin []byte) error {
	if !h.ready {
		return ErrNotInstantiated
	}
	hs := h.newHash()
	if len(adin) > 0 {
		hs.Write([]byte{0x02})
		hs.Write(h.v)
		hs.Write(adin)
		addTo(h.v, hs.Sum(nil))
	}
	h.hashgen(out)
	hs.Reset()
	hs.Write([]byte{0x03})
	hs.Write(h.v)
	addTo(h.v, hs.Sum(nil))
	addTo(h.v, h.c)
	addUint64To(h.v, h.genCounter)
	h.genCounter++
	return nil
}

func (h *hashDRBG) uninstantiate() {
	wipe(h.v)
	wipe(h.c)
	h.genCounter = 0
	h.ready = false
}
