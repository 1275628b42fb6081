package keys

import (
	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
)

// Cigar is a non-indexed signature (a Matter) with an optional attached
// Verfer to verify it against.
type Cigar struct {
	matter *codec.Matter
	verfer *Verfer
}

// NewCigar builds a Cigar from raw signature bytes.
func NewCigar(raw []byte, code string, verfer *Verfer) (*Cigar, error) {
	m, err := codec.FromRaw(raw, code)
	if err != nil {
		return nil, err
	}
	return &Cigar{matter: m, verfer: verfer}, nil
}

// CigarFromQb64 parses a Cigar's qb64 representation.
func CigarFromQb64(qb64 string, verfer *Verfer) (*Cigar, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	return &Cigar{matter: m, verfer: verfer}, nil
}

// Qb64 returns the qb64 encoding.
func (c *Cigar) Qb64() string { return c.matter.Qb64() }

// Qb64b returns the qb64 encoding as bytes.
func (c *Cigar) Qb64b() []byte { return c.matter.Qb64b() }

// Code returns the Cigar's CESR code.
func (c *Cigar) Code() string { return c.matter.Code() }

// Raw returns the raw signature bytes.
func (c *Cigar) Raw() []byte { return c.matter.Raw() }

// Verfer returns the attached Verfer, if any.
func (c *Cigar) Verfer() *Verfer { return c.verfer }

// SetVerfer attaches or replaces the Verfer.
func (c *Cigar) SetVerfer(v *Verfer) { c.verfer = v }

// Matter returns the underlying Matter.
func (c *Cigar) Matter() *codec.Matter { return c.matter }

// Verify checks the signature against message using the attached Verfer.
func (c *Cigar) Verify(message []byte) (bool, error) {
	if c.verfer == nil {
		return false, kerierr.ErrVerification
	}
	return c.verfer.Verify(c.Raw(), message)
}
