// Package manager implements key pair lifecycle management: creating,
// storing, rotating and signing with the Ed25519 keys behind a KERI
// identifier prefix. Two creation algorithms are supported, Randy (fresh
// random keys, recoverable only if encrypted at rest) and Salty
// (deterministically re-derivable from a salt and a stretch path); Group
// and Extern algorithms named by the reference implementation are out of
// scope, per SPEC_FULL.md §4.9b.
package manager

import (
	"fmt"

	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/salter"
)

// Algos names a key-creation algorithm.
type Algos int

const (
	Randy Algos = iota
	Salty
)

// String renders the algorithm's lowercase name, as stored in a Manager's
// global settings bucket.
func (a Algos) String() string {
	switch a {
	case Randy:
		return "randy"
	case Salty:
		return "salty"
	default:
		return "salty"
	}
}

// ParseAlgos parses an algorithm name ("randy"/"salty").
func ParseAlgos(s string) (Algos, error) {
	switch s {
	case "randy":
		return Randy, nil
	case "salty":
		return Salty, nil
	default:
		return 0, kerierr.ErrInvalidArgument
	}
}

// Keys is the result of a Creator generating one or more key pairs: the
// Signers themselves and, for path-derived algorithms, the stretch path
// that reproduces each one (nil for Randy, which cannot be regenerated).
type Keys struct {
	Signers []*keys.Signer
	Paths   []string
}

// Creator generates key pairs for one algorithm.
type Creator interface {
	// Create generates key pairs. If codes is non-empty it is used
	// verbatim, one code per key; otherwise count keys are generated under
	// code. pidx/ridx/kidx locate this key set within an identifier's
	// derivation sequence (prefix index, rotation index, starting key
	// index); temp forces a fast, insecure stretch for tests.
	Create(codes []string, count int, code string, transferable bool, pidx, ridx, kidx uint64, temp bool) (*Keys, error)

	// Salt returns the qb64 salt this Creator stretches from ("" for Randy).
	Salt() string
	// Stem returns the path prefix this Creator derives from ("" for Randy).
	Stem() string
	// Tier returns the Argon2id cost tier this Creator stretches at.
	Tier() salter.Tier
}

// RandyCreator generates fresh, non-deterministic key pairs. Without
// encryption at rest, keys it generates cannot be recovered once lost.
type RandyCreator struct{}

// NewRandyCreator builds a RandyCreator.
func NewRandyCreator() *RandyCreator { return &RandyCreator{} }

func (c *RandyCreator) Create(codes []string, count int, code string, transferable bool, pidx, ridx, kidx uint64, temp bool) (*Keys, error) {
	if len(codes) == 0 {
		codes = repeatCode(code, count)
	}
	signers := make([]*keys.Signer, len(codes))
	for i, cd := range codes {
		s, err := keys.NewRandom(cd, transferable)
		if err != nil {
			return nil, err
		}
		signers[i] = s
	}
	return &Keys{Signers: signers}, nil
}

func (c *RandyCreator) Salt() string      { return "" }
func (c *RandyCreator) Stem() string      { return "" }
func (c *RandyCreator) Tier() salter.Tier { return salter.Low }

// SaltyCreator generates key pairs by stretching a salt at a derivation
// path built from the creator's stem, the caller's rotation index and key
// index. Identical (salt, stem, ridx, kidx) inputs always reproduce the
// same keys.
type SaltyCreator struct {
	salt *salter.Salter
	stem string
}

// NewSaltyCreator builds a SaltyCreator. If saltQb64 is "", a fresh random
// salt is generated.
func NewSaltyCreator(saltQb64 string, tier salter.Tier, stem string) (*SaltyCreator, error) {
	var s *salter.Salter
	var err error
	if saltQb64 != "" {
		s, err = salter.FromQb64(saltQb64, tier)
	} else {
		s, err = salter.New(tier)
	}
	if err != nil {
		return nil, err
	}
	return &SaltyCreator{salt: s, stem: stem}, nil
}

func (c *SaltyCreator) Create(codes []string, count int, code string, transferable bool, pidx, ridx, kidx uint64, temp bool) (*Keys, error) {
	if len(codes) == 0 {
		codes = repeatCode(code, count)
	}
	signers := make([]*keys.Signer, len(codes))
	paths := make([]string, len(codes))
	for i, cd := range codes {
		path := derivationPath(c.stem, pidx, ridx, kidx+uint64(i))
		s, err := c.salt.Signer(cd, transferable, path, nil, temp)
		if err != nil {
			return nil, err
		}
		signers[i] = s
		paths[i] = path
	}
	return &Keys{Signers: signers, Paths: paths}, nil
}

// derivationPath builds the Argon2id stretch path for a key at (pidx, ridx,
// kidx). A non-empty stem yields "{stem}{ridx:x}{kidx:x}"; an empty stem
// (the legacy, pre-multi-identifier convention) yields just "{pidx:x}".
func derivationPath(stem string, pidx, ridx, kidx uint64) string {
	if stem == "" {
		return fmt.Sprintf("%x", pidx)
	}
	return fmt.Sprintf("%s%x%x", stem, ridx, kidx)
}

func (c *SaltyCreator) Salt() string      { return c.salt.Qb64() }
func (c *SaltyCreator) Stem() string      { return c.stem }
func (c *SaltyCreator) Tier() salter.Tier { return c.salt.Tier() }

func repeatCode(code string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = code
	}
	return out
}

// NewCreator builds the Creator for algo.
func NewCreator(algo Algos, saltQb64 string, tier salter.Tier, stem string) (Creator, error) {
	switch algo {
	case Randy:
		return NewRandyCreator(), nil
	case Salty:
		return NewSaltyCreator(saltQb64, tier, stem)
	default:
		return nil, kerierr.ErrInvalidArgument
	}
}
