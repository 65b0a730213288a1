package drbg

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

const ctrBlockLen = 16

// ctrDRBG is the CTR_DRBG construction of SP 800-90A section 10.2, using
// AES-128/192/256 with the block cipher derivation function.
type ctrDRBG struct {
	keyLen  int
	seedLen int // keyLen + block length
	k       []byte
	v       [ctrBlockLen]byte
	block   cipher.Block
	ready   bool
}

func newCTR(t Type) (*ctrDRBG, int, int, error) {
	var keyLen int
	switch t {
	case CTRAES128:
		keyLen = 16
	case CTRAES192:
		keyLen = 24
	case CTRAES256:
		keyLen = 32
	default:
		return nil, 0, 0, ErrUnknownType
	}
	c := &ctrDRBG{
		keyLen:  keyLen,
		seedLen: keyLen + ctrBlockLen,
		k:       make([]byte, keyLen),
	}
	return c, keyLen * 8, c.seedLen, nil
}

// incV increments V as a 128-bit big-endian counter.
func (c *ctrDRBG) incV() {
	for i := ctrBlockLen - 1; i >= 0; i-- {
		c.v[i]++
		if c.v[i] != 0 {
			break
		}
	}
}

func (c *ctrDRBG) setKey(k []byte) error {
	block, err := aes.NewCipher(k)
	if err != nil {
		return err
	}
	copy(c.k, k)
	c.block = block
	return nil
}

// update is CTR_DRBG_Update: encrypt successive increments of V and fold the
// provided data into the keystream to derive the new K and V. provided must
// be at most seedLen bytes; shorter inputs act as if zero-padded.
func (c *ctrDRBG) update(provided []byte) error {
	if len(provided) > c.seedLen {
		return fmt.Errorf("update input larger than seed length")
	}
	temp := make([]byte, 0, c.seedLen)
	var blk [ctrBlockLen]byte
	for len(temp) < c.seedLen {
		c.incV()
		c.block.Encrypt(blk[:], c.v[:])
		temp = append(temp, blk[:]...)
	}
	temp = temp[:c.seedLen]
	for i := range provided {
		temp[i] ^= provided[i]
	}
	err := c.setKey(temp[:c.keyLen])
	if err == nil {
		copy(c.v[:], temp[c.keyLen:])
	}
	wipe(temp)
	wipe(blk[:])
	return err
}

// bcc is the block-chaining transform used by the derivation function.
func bcc(block cipher.Block, chain, data []byte) {
	var tmp [ctrBlockLen]byte
	for off := 0; off < len(data); off += ctrBlockLen {
		for i := 0; i < ctrBlockLen; i++ {
			tmp[i] = chain[i] ^ data[off+i]
		}
		block.Encrypt(chain, tmp[:])
	}
	wipe(tmp[:])
}

// df is Block_Cipher_df (SP 800-90A section 10.3.2): compress an arbitrary
// length input into outLen full-entropy seed material.
func (c *ctrDRBG) df(input []byte, outLen int) ([]byte, error) {
	// S = L || N || input || 0x80 || zero padding to a block multiple
	s := make([]byte, 8, 8+len(input)+ctrBlockLen)
	binary.BigEndian.PutUint32(s[0:4], uint32(len(input)))
	binary.BigEndian.PutUint32(s[4:8], uint32(outLen))
	s = append(s, input...)
	s = append(s, 0x80)
	for len(s)%ctrBlockLen != 0 {
		s = append(s, 0x00)
	}

	dfKey := make([]byte, c.keyLen)
	for i := range dfKey {
		dfKey[i] = byte(i)
	}
	block, err := aes.NewCipher(dfKey)
	if err != nil {
		return nil, err
	}

	// First pass: BCC over an IV'd copy of S for each output block.
	temp := make([]byte, 0, c.seedLen)
	iv := make([]byte, ctrBlockLen)
	chain := make([]byte, ctrBlockLen)
	for i := 0; len(temp) < c.keyLen+ctrBlockLen; i++ {
		binary.BigEndian.PutUint32(iv[0:4], uint32(i))
		wipe(chain)
		bcc(block, chain, iv)
		bcc(block, chain, s)
		temp = append(temp, chain...)
	}

	// Second pass: iterate the cipher keyed from the first pass output.
	block, err = aes.NewCipher(temp[:c.keyLen])
	if err != nil {
		return nil, err
	}
	x := make([]byte, ctrBlockLen)
	copy(x, temp[c.keyLen:c.keyLen+ctrBlockLen])
	out := make([]byte, 0, outLen)
	for len(out) < outLen {
		block.Encrypt(x, x)
		out = append(out, x...)
	}
	wipe(s)
	wipe(temp)
	wipe(x)
	wipe(chain)
	return out[:outLen], nil
}

func (c *ctrDRBG) instantiate(ent, nonce, pers []byte) error {
	input := make([]byte, 0, len(ent)+len(nonce)+len(pers))
	input = append(input, ent...)
	input = append(input, nonce...)
	input = append(input, pers...)
	seed, err := c.df(input, c.seedLen)
	wipe(input)
	if err != nil {
		return err
	}
	wipe(c.k)
	wipe(c.v[:])
	if err = c.setKey(c.k); err != nil {
		return err
	}
	err = c.update(seed)
	wipe(seed)
	if err != nil {
		return err
	}
	c.ready = true
	return nil
}

func (c *ctrDRBG) reseed(ent, adin []byte) error {
	if !c.ready {
		return ErrNotInstantiated
	}
	input := make([]byte, 0, len(ent)+len(adin))
	input = append(input, ent...)
	input = append(input, adin...)
	seed, err := c.df(input, c.seedLen)
	wipe(input)
	if err != nil {
		return err
	}
	err = c.update(seed)
	wipe(seed)
	return err
}

func (c *ctrDRBG) generate(out, adin []byte) error {
	if !c.ready {
		return ErrNotInstantiated
	}
	var seed []byte
	if len(adin) > 0 {
		var err error
		if seed, err = c.df(adin, c.seedLen); err != nil {
			return err
		}
		if err = c.update(seed); err != nil {
			wipe(seed)
			return err
		}
	}
	var blk [ctrBlockLen]byte
	for done := 0; done < len(out); {
		c.incV()
		c.block.Encrypt(blk[:], c.v[:])
		done += copy(out[done:], blk[:])
	}
	wipe(blk[:])
	err := c.update(seed)
	wipe(seed)
	return err
}

func (c *ctrDRBG) uninstantiate() {
	wipe(c.k)
	wipe(c.v[:])
	c.block = nil
	c.ready = false
}
