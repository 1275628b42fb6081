// Package keys implements the Ed25519 signing primitives: Signer (seed +
// keypair), Verfer (public key + verify), Cigar (non-indexed signature) and
// Siger (indexed signature for multi-sig groups).
package keys

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
)

// Signer wraps an Ed25519 keypair: the seed (as a Matter) and its derived
// Verfer.
type Signer struct {
	matter *codec.Matter
	verfer *Verfer
}

// NewRandom generates a fresh random Ed25519 Signer.
func NewRandom(code string, transferable bool) (*Signer, error) {
	if code != codec.CodeED25519Seed {
		return nil, kerierr.ErrInvalidCode
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return FromSeed(seed, code, transferable)
}

// FromSeed builds a Signer deterministically from a 32-byte seed.
func FromSeed(seed []byte, code string, transferable bool) (*Signer, error) {
	if code != codec.CodeED25519Seed {
		return nil, kerierr.ErrInvalidCode
	}
	if len(seed) != ed25519.SeedSize {
		return nil, kerierr.ErrInvalidSize
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	m, err := codec.FromRaw(seed, code)
	if err != nil {
		return nil, err
	}

	verferCode := codec.CodeED25519N
	if transferable {
		verferCode = codec.CodeED25519
	}
	v, err := FromRaw(pub, verferCode)
	if err != nil {
		return nil, err
	}

	return &Signer{matter: m, verfer: v}, nil
}

// FromQb64 builds a Signer from the qb64 encoding of its seed.
func FromQb64(qb64 string, transferable bool) (*Signer, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	if m.Code() != codec.CodeED25519Seed {
		return nil, kerierr.ErrInvalidCode
	}
	return FromSeed(m.Raw(), m.Code(), transferable)
}

// Sign produces a raw 64-byte Ed25519 signature over ser.
func (s *Signer) Sign(ser []byte) []byte {
	priv := ed25519.NewKeyFromSeed(s.matter.Raw())
	return ed25519.Sign(priv, ser)
}

// Verfer returns the Signer's public-key Verfer.
func (s *Signer) Verfer() *Verfer { return s.verfer }

// Matter returns the Signer's seed Matter.
func (s *Signer) Matter() *codec.Matter { return s.matter }

// Qb64 returns the qb64 encoding of the seed.
func (s *Signer) Qb64() string { return s.matter.Qb64() }

// Qb64b returns the qb64 encoding of the seed as bytes.
func (s *Signer) Qb64b() []byte { return s.matter.Qb64b() }

// Transferable reports whether the Signer's Verfer is transferable.
func (s *Signer) Transferable() bool { return s.verfer.Transferable() }
