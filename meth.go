package drbg

import (
	"strings"
)

// Type identifies the generation algorithm backing a DRBG instance. The
// algorithm is fixed when the instance is created and never changes for the
// life of the instance.
type Type int

const (
	CTRAES128 Type = iota + 1
	CTRAES192
	CTRAES256
	HashSHA256
	HashSHA384
	HashSHA512
	HMACSHA256
	HMACSHA384
	HMACSHA512
)

// Name string to type mapping, also used for the reverse lookup.
var typeNames = []struct {
	name string
	typ  Type
}{
	{"ctr-aes128", CTRAES128},
	{"ctr-aes192", CTRAES192},
	{"ctr-aes256", CTRAES256},
	{"hash-sha256", HashSHA256},
	{"hash-sha384", HashSHA384},
	{"hash-sha512", HashSHA512},
	{"hmac-sha256", HMACSHA256},
	{"hmac-sha384", HMACSHA384},
	{"hmac-sha512", HMACSHA512},
}

func (t Type) String() string {
	for _, e := range typeNames {
		if e.typ == t {
			return e.name
		}
	}
	return "unknown"
}

// ParseType returns the Type for a name produced by Type.String.
// The comparison is case-insensitive.
func ParseType(name string) (Type, error) {
	for _, e := range typeNames {
		if strings.EqualFold(e.name, name) {
			return e.typ, nil
		}
	}
	return 0, ErrUnknownType
}

// method is the four-operation contract shared by the generation algorithm
// variants (SP 800-90A section 10). A method owns only the narrow
// cryptographic working state; all lifecycle bookkeeping lives in DRBG.
type method interface {
	// instantiate derives the initial working state from the inputs.
	instantiate(ent, nonce, pers []byte) error
	// reseed mixes fresh entropy and optional additional input into the
	// existing working state.
	reseed(ent, adin []byte) error
	// generate fills out with pseudorandom bytes, then moves the working
	// state forward so it is never reused for two outputs.
	generate(out, adin []byte) error
	// uninstantiate overwrites all secret working state with zeros.
	uninstantiate()
}

// newMethod creates the working state for the given type and returns it along
// with the algorithm security strength in bits and the seed length in bytes.
func newMethod(t Type) (meth method, strength, seedLen int, err error) {
	switch t {
	case CTRAES128, CTRAES192, CTRAES256:
		return newCTR(t)
	case HashSHA256, HashSHA384, HashSHA512:
		return newHash(t)
	case HMACSHA256, HMACSHA384, HMACSHA512:
		return newHMAC(t)
	}
	return nil, 0, 0, ErrUnknownType
}

// wipe overwrites b with zero bytes.
func wipe(b []byte) {
	clear(b)
}
