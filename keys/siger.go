package keys

import (
	"github.com/cvsouth/kericore/indexer"
	"github.com/cvsouth/kericore/kerierr"
)

// Siger is an indexed signature (an Indexer) with an optional attached
// Verfer to verify it against. Used in multi-sig key groups where a
// signature must record which key in the list produced it.
type Siger struct {
	indexer *indexer.Indexer
	verfer  *Verfer
}

// NewSiger builds a Siger from raw signature bytes and its index.
func NewSiger(raw []byte, code string, index uint64, ondex *uint64, verfer *Verfer) (*Siger, error) {
	if !indexer.IsValid(code) {
		return nil, kerierr.ErrInvalidCode
	}
	ix, err := indexer.New(raw, code, index, ondex)
	if err != nil {
		return nil, err
	}
	return &Siger{indexer: ix, verfer: verfer}, nil
}

// SigerFromQb64 parses a Siger's qb64 representation.
func SigerFromQb64(qb64 string, verfer *Verfer) (*Siger, error) {
	ix, err := indexer.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	return &Siger{indexer: ix, verfer: verfer}, nil
}

// Qb64 returns the qb64 encoding.
func (s *Siger) Qb64() string { return s.indexer.Qb64() }

// Qb64b returns the qb64 encoding as bytes.
func (s *Siger) Qb64b() []byte { return s.indexer.Qb64b() }

// Index returns the current-key index.
func (s *Siger) Index() uint64 { return s.indexer.Index() }

// Ondex returns the prior-next-key index.
func (s *Siger) Ondex() uint64 { return s.indexer.Ondex() }

// Code returns the Siger's CESR code.
func (s *Siger) Code() string { return s.indexer.Code() }

// Raw returns the raw signature bytes.
func (s *Siger) Raw() []byte { return s.indexer.Raw() }

// Verfer returns the attached Verfer, if any.
func (s *Siger) Verfer() *Verfer { return s.verfer }

// SetVerfer attaches or replaces the Verfer.
func (s *Siger) SetVerfer(v *Verfer) { s.verfer = v }

// Indexer returns the underlying Indexer.
func (s *Siger) Indexer() *indexer.Indexer { return s.indexer }

// Verify checks the signature against message using the attached Verfer.
func (s *Siger) Verify(message []byte) (bool, error) {
	if s.verfer == nil {
		return false, kerierr.ErrVerification
	}
	return s.verfer.Verify(s.Raw(), message)
}
