// Package digest implements Diger, a CESR-encoded cryptographic digest over
// an arbitrary serialization, and its fixed-point verify/compare operations.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
)

// Diger wraps a Matter holding a digest's raw bytes under a digest code.
type Diger struct {
	matter *codec.Matter
}

// FromRaw builds a Diger from raw digest bytes already computed under code.
func FromRaw(raw []byte, code string) (*Diger, error) {
	m, err := codec.FromRaw(raw, code)
	if err != nil {
		return nil, err
	}
	return &Diger{matter: m}, nil
}

// FromQb64 parses a digest's qb64 representation.
func FromQb64(qb64 string) (*Diger, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	return &Diger{matter: m}, nil
}

// New computes the digest of ser under code and wraps it in a Diger.
func New(code string, ser []byte) (*Diger, error) {
	raw, err := computeDigest(code, ser)
	if err != nil {
		return nil, err
	}
	return FromRaw(raw, code)
}

func computeDigest(code string, ser []byte) ([]byte, error) {
	switch code {
	case codec.CodeBlake3_256:
		sum := blake3.Sum256(ser)
		return sum[:], nil
	case codec.CodeBlake3_512:
		sum := blake3.Sum512(ser)
		return sum[:64], nil
	case codec.CodeSHA2_256:
		sum := sha256.Sum256(ser)
		return sum[:], nil
	case codec.CodeSHA2_512:
		sum := sha512.Sum512(ser)
		return sum[:], nil
	case codec.CodeSHA3_256:
		sum := sha3.Sum256(ser)
		return sum[:], nil
	case codec.CodeSHA3_512:
		sum := sha3.Sum512(ser)
		return sum[:], nil
	default:
		return nil, kerierr.ErrInvalidCode
	}
}

// Verify recomputes the digest of ser under d's code and compares it to d's
// stored raw bytes.
func (d *Diger) Verify(ser []byte) (bool, error) {
	computed, err := New(d.matter.Code(), ser)
	if err != nil {
		return false, err
	}
	return string(computed.Raw()) == string(d.Raw()), nil
}

// Compare reports whether d and other both authenticate ser. If they share a
// code, their raw bytes are compared directly; otherwise each is
// independently verified against ser.
func (d *Diger) Compare(ser []byte, other *Diger) (bool, error) {
	if d.matter.Code() == other.matter.Code() {
		return string(d.Raw()) == string(other.Raw()), nil
	}
	ok1, err := d.Verify(ser)
	if err != nil {
		return false, err
	}
	ok2, err := other.Verify(ser)
	if err != nil {
		return false, err
	}
	return ok1 && ok2, nil
}

// Matter returns the underlying Matter.
func (d *Diger) Matter() *codec.Matter { return d.matter }

// Code returns the digest's CESR code.
func (d *Diger) Code() string { return d.matter.Code() }

// Raw returns the raw digest bytes.
func (d *Diger) Raw() []byte { return d.matter.Raw() }

// Qb64 returns the qb64 encoding.
func (d *Diger) Qb64() string { return d.matter.Qb64() }

// Qb64b returns the qb64 encoding as bytes.
func (d *Diger) Qb64b() []byte { return d.matter.Qb64b() }

// Qb2 returns the qb2 binary encoding.
func (d *Diger) Qb2() []byte { return d.matter.Qb2() }
