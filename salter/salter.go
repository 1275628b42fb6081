// Package salter implements Argon2id-based deterministic key stretching: a
// random (or passcode-derived) 128-bit salt from which an arbitrary number
// of independent Ed25519 seeds can be derived by varying the stretch path.
package salter

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
)

// Tier selects the Argon2id cost parameters used to stretch a salt into a
// key. Tier values MUST match signify-ts exactly for cross-implementation
// compatibility.
type Tier int

const (
	Low Tier = iota
	Med
	High
)

// Params returns (opslimit, memlimit_kb) for the tier.
func (t Tier) Params() (opslimit, memlimitKB uint32) {
	switch t {
	case Low:
		return 2, 65536
	case Med:
		return 3, 262144
	case High:
		return 4, 1048576
	default:
		return 2, 65536
	}
}

// String renders the tier's lowercase name.
func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Med:
		return "med"
	case High:
		return "high"
	default:
		return "low"
	}
}

// ParseTier parses a tier name ("low"/"med"/"high").
func ParseTier(s string) (Tier, error) {
	switch s {
	case "low":
		return Low, nil
	case "med":
		return Med, nil
	case "high":
		return High, nil
	default:
		return 0, kerierr.ErrInvalidArgument
	}
}

// Salter holds a 128-bit salt and the default tier used to stretch it.
type Salter struct {
	matter *codec.Matter
	tier   Tier
}

// New generates a Salter with a fresh random 16-byte salt.
func New(tier Tier) (*Salter, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return FromRaw(raw, tier)
}

// FromRaw builds a Salter from raw salt bytes.
func FromRaw(raw []byte, tier Tier) (*Salter, error) {
	m, err := codec.FromRaw(raw, codec.CodeSalt128)
	if err != nil {
		return nil, err
	}
	return &Salter{matter: m, tier: tier}, nil
}

// FromQb64 parses a Salter's qb64 representation.
func FromQb64(qb64 string, tier Tier) (*Salter, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	if m.Code() != codec.CodeSalt128 {
		return nil, kerierr.ErrInvalidCode
	}
	return &Salter{matter: m, tier: tier}, nil
}

// Stretch derives a size-byte key from the salt and path using Argon2id.
// tier overrides the Salter's default if non-nil. temp forces minimal
// (opslimit=1, memlimit=8KB) parameters for fast, INSECURE test runs; it
// must never be set outside tests.
func (s *Salter) Stretch(size int, path string, tier *Tier, temp bool) ([]byte, error) {
	t := s.tier
	if tier != nil {
		t = *tier
	}
	opslimit, memlimitKB := t.Params()
	if temp {
		opslimit, memlimitKB = 1, 8
	}
	key := argon2.IDKey([]byte(path), s.matter.Raw(), opslimit, memlimitKB, 1, uint32(size))
	return key, nil
}

// Signer derives an Ed25519 Signer by stretching the salt at path into a
// seed of the size code prescribes.
func (s *Salter) Signer(code string, transferable bool, path string, tier *Tier, temp bool) (*keys.Signer, error) {
	rawSize, err := codec.RawSize(code)
	if err != nil {
		return nil, err
	}
	seed, err := s.Stretch(rawSize, path, tier, temp)
	if err != nil {
		return nil, err
	}
	return keys.FromSeed(seed, code, transferable)
}

// Matter returns the underlying salt Matter.
func (s *Salter) Matter() *codec.Matter { return s.matter }

// Tier returns the Salter's default tier.
func (s *Salter) Tier() Tier { return s.tier }

// Qb64 returns the qb64 encoding of the salt.
func (s *Salter) Qb64() string { return s.matter.Qb64() }

// Qb64b returns the qb64 encoding of the salt as bytes.
func (s *Salter) Qb64b() []byte { return s.matter.Qb64b() }
