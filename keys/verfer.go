package keys

import (
	"crypto/ed25519"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
)

// Verfer wraps a Matter holding an Ed25519 public key, transferable (code D)
// or non-transferable (code B).
type Verfer struct {
	matter *codec.Matter
}

func isValidVerferCode(code string) bool {
	return code == codec.CodeED25519 || code == codec.CodeED25519N
}

// FromRaw builds a Verfer from raw public-key bytes.
func FromRaw(raw []byte, code string) (*Verfer, error) {
	if !isValidVerferCode(code) {
		return nil, kerierr.ErrInvalidCode
	}
	m, err := codec.FromRaw(raw, code)
	if err != nil {
		return nil, err
	}
	return &Verfer{matter: m}, nil
}

// VerferFromQb64 parses a Verfer's qb64 representation.
func VerferFromQb64(qb64 string) (*Verfer, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	if !isValidVerferCode(m.Code()) {
		return nil, kerierr.ErrInvalidCode
	}
	return &Verfer{matter: m}, nil
}

// VerferFromQb2 parses a Verfer's qb2 representation.
func VerferFromQb2(qb2 []byte) (*Verfer, error) {
	m, err := codec.FromQb2(qb2)
	if err != nil {
		return nil, err
	}
	if !isValidVerferCode(m.Code()) {
		return nil, kerierr.ErrInvalidCode
	}
	return &Verfer{matter: m}, nil
}

// Verify checks sig against ser. A well-formed signature that simply
// doesn't match returns (false, nil); a malformed signature (wrong byte
// length) returns (false, ErrInvalidSize).
func (v *Verfer) Verify(sig, ser []byte) (bool, error) {
	switch v.matter.Code() {
	case codec.CodeED25519, codec.CodeED25519N:
		if len(sig) != ed25519.SignatureSize {
			return false, kerierr.ErrInvalidSize
		}
		return ed25519.Verify(ed25519.PublicKey(v.matter.Raw()), ser, sig), nil
	default:
		return false, kerierr.ErrInvalidCode
	}
}

// Matter returns the underlying Matter.
func (v *Verfer) Matter() *codec.Matter { return v.matter }

// Code returns the Verfer's CESR code.
func (v *Verfer) Code() string { return v.matter.Code() }

// Transferable reports whether the key is transferable (code D vs. B).
func (v *Verfer) Transferable() bool { return v.matter.Code() == codec.CodeED25519 }

// Raw returns the raw public-key bytes.
func (v *Verfer) Raw() []byte { return v.matter.Raw() }

// Qb64 returns the qb64 encoding.
func (v *Verfer) Qb64() string { return v.matter.Qb64() }

// Qb64b returns the qb64 encoding as bytes.
func (v *Verfer) Qb64b() []byte { return v.matter.Qb64b() }

// Qb2 returns the qb2 binary encoding.
func (v *Verfer) Qb2() []byte { return v.matter.Qb2() }
