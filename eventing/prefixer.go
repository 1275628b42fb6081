// Package eventing implements KERI event construction: identifier prefix
// derivation (Prefixer) and the inception event builder (Incept).
package eventing

import (
	"strings"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/digest"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/sad"
	"github.com/cvsouth/kericore/serder"
)

// DerivationCode names the three ways a KERI identifier prefix is derived.
type DerivationCode int

const (
	DerivationEd25519N DerivationCode = iota
	DerivationEd25519
	DerivationBlake3_256
)

func derivationFromCode(code string) (DerivationCode, error) {
	switch code {
	case codec.CodeED25519N:
		return DerivationEd25519N, nil
	case codec.CodeED25519:
		return DerivationEd25519, nil
	case codec.CodeBlake3_256:
		return DerivationBlake3_256, nil
	default:
		return 0, kerierr.ErrInvalidCode
	}
}

// Code returns the CESR code associated with d.
func (d DerivationCode) Code() string {
	switch d {
	case DerivationEd25519N:
		return codec.CodeED25519N
	case DerivationEd25519:
		return codec.CodeED25519
	case DerivationBlake3_256:
		return codec.CodeBlake3_256
	default:
		return ""
	}
}

// isDigestiveCode reports whether code derives a self-addressing (hash)
// prefix rather than a basic (public-key) one.
func isDigestiveCode(code string) bool {
	switch code {
	case codec.CodeBlake3_256, codec.CodeSHA3_256, codec.CodeSHA2_256, codec.CodeBlake2b_256:
		return true
	}
	return false
}

// Prefixer is a KERI identifier prefix, either a basic public-key
// derivation or a self-addressing BLAKE3-256 digest of its inception event.
type Prefixer struct {
	matter     *codec.Matter
	derivation DerivationCode
}

// NewPrefixer wraps an existing Matter as a Prefixer.
func NewPrefixer(m *codec.Matter) (*Prefixer, error) {
	d, err := derivationFromCode(m.Code())
	if err != nil {
		return nil, err
	}
	return &Prefixer{matter: m, derivation: d}, nil
}

// PrefixerFromQb64 parses a Prefixer from its qb64 identifier string.
func PrefixerFromQb64(qb64 string) (*Prefixer, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	return NewPrefixer(m)
}

func isIncepting(ilk serder.Ilk) bool {
	return ilk == serder.IlkIcp || ilk == serder.IlkDip || ilk == serder.Ilk("vcp")
}

// PrefixerFromEvent derives a Prefixer from an inception-shaped event
// (icp/dip/vcp). If the event's 'i' field already holds a prefix, that
// prefix is used directly; otherwise one is derived per code (or, if code
// is empty, per the code implied by the event's own 'i' field).
func PrefixerFromEvent(s *serder.Serder, code string) (*Prefixer, error) {
	ilk, ok := s.Ilk()
	if !ok || !isIncepting(ilk) {
		return nil, kerierr.ErrInvalidEvent
	}

	sd := s.Sad()

	derivationCode := code
	if derivationCode == "" {
		pre, err := sd.GetString("i")
		if err != nil || pre == "" {
			return nil, kerierr.ErrInvalidEvent
		}
		m, err := codec.FromQb64(pre)
		if err != nil {
			return nil, err
		}
		derivationCode = m.Code()
	}
	if _, err := derivationFromCode(derivationCode); err != nil {
		return nil, err
	}

	if pre, err := sd.GetString("i"); err == nil && pre != "" {
		return PrefixerFromQb64(pre)
	}

	var raw []byte
	var matterCode string
	var err error
	switch derivationCode {
	case codec.CodeED25519N:
		raw, matterCode, err = deriveEd25519N(sd)
	case codec.CodeED25519:
		raw, matterCode, err = deriveEd25519(sd)
	case codec.CodeBlake3_256:
		raw, matterCode, err = deriveBlake3_256(s)
	default:
		err = kerierr.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	m, err := codec.FromRaw(raw, matterCode)
	if err != nil {
		return nil, err
	}
	return NewPrefixer(m)
}

func getStringSlice(m *sad.Map, key string) ([]string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []any:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func deriveEd25519N(sd *sad.Map) ([]byte, string, error) {
	ks, ok := getStringSlice(sd, "k")
	if !ok || len(ks) != 1 {
		return nil, "", kerierr.ErrInvalidEvent
	}
	v, err := keys.VerferFromQb64(ks[0])
	if err != nil {
		return nil, "", err
	}
	if v.Code() != codec.CodeED25519N {
		return nil, "", kerierr.ErrInvalidCode
	}
	if n, ok := getStringSlice(sd, "n"); ok && len(n) != 0 {
		return nil, "", kerierr.ErrInvalidEvent
	}
	if b, ok := getStringSlice(sd, "b"); ok && len(b) != 0 {
		return nil, "", kerierr.ErrInvalidEvent
	}
	return v.Raw(), codec.CodeED25519N, nil
}

func deriveEd25519(sd *sad.Map) ([]byte, string, error) {
	ks, ok := getStringSlice(sd, "k")
	if !ok || len(ks) != 1 {
		return nil, "", kerierr.ErrInvalidEvent
	}
	v, err := keys.VerferFromQb64(ks[0])
	if err != nil {
		return nil, "", err
	}
	if v.Code() != codec.CodeED25519 {
		return nil, "", kerierr.ErrInvalidCode
	}
	return v.Raw(), codec.CodeED25519, nil
}

func deriveBlake3_256(s *serder.Serder) ([]byte, string, error) {
	ilk, ok := s.Ilk()
	if !ok || !isIncepting(ilk) {
		return nil, "", kerierr.ErrInvalidEvent
	}

	sz, err := codec.SizageOf(codec.CodeBlake3_256)
	if err != nil {
		return nil, "", err
	}
	dummy := strings.Repeat("#", sz.FS)

	clone := s.Sad().Clone()
	clone.Set("i", dummy)
	clone.Set("d", dummy)

	temp, err := serder.New(clone, s.Kind(), "")
	if err != nil {
		return nil, "", err
	}

	d, err := digest.New(codec.CodeBlake3_256, []byte(temp.Raw()))
	if err != nil {
		return nil, "", err
	}
	return d.Raw(), codec.CodeBlake3_256, nil
}

// Verify reports whether the Prefixer's prefix matches serder. If prefixed
// is true, the event's 'i' field must also equal the prefix.
func (p *Prefixer) Verify(s *serder.Serder, prefixed bool) bool {
	ilk, ok := s.Ilk()
	if !ok || !isIncepting(ilk) {
		return false
	}
	switch p.derivation {
	case DerivationEd25519N:
		return p.verifyBasic(s, prefixed, true)
	case DerivationEd25519:
		return p.verifyBasic(s, prefixed, false)
	case DerivationBlake3_256:
		return p.verifyBlake3_256(s, prefixed)
	default:
		return false
	}
}

func (p *Prefixer) verifyBasic(s *serder.Serder, prefixed bool, nonTransferable bool) bool {
	sd := s.Sad()
	ks, ok := getStringSlice(sd, "k")
	if !ok || len(ks) != 1 || ks[0] != p.Qb64() {
		return false
	}
	if prefixed {
		pre, err := sd.GetString("i")
		if err != nil || pre != p.Qb64() {
			return false
		}
	}
	if nonTransferable {
		if n, ok := getStringSlice(sd, "n"); ok && len(n) != 0 {
			return false
		}
	}
	return true
}

func (p *Prefixer) verifyBlake3_256(s *serder.Serder, prefixed bool) bool {
	said, ok := s.SaidField()
	if !ok || said != p.Qb64() {
		return false
	}
	if prefixed {
		pre, ok := s.Pre()
		if !ok || pre != p.Qb64() {
			return false
		}
	}
	return true
}

// Qb64 returns the qb64 encoding.
func (p *Prefixer) Qb64() string { return p.matter.Qb64() }

// Qb2 returns the binary encoding.
func (p *Prefixer) Qb2() []byte { return p.matter.Qb2() }

// Raw returns the raw prefix bytes.
func (p *Prefixer) Raw() []byte { return p.matter.Raw() }

// Code returns the Prefixer's CESR code.
func (p *Prefixer) Code() string { return p.matter.Code() }

// Derivation returns the derivation method.
func (p *Prefixer) Derivation() DerivationCode { return p.derivation }

// Matter returns the underlying Matter.
func (p *Prefixer) Matter() *codec.Matter { return p.matter }
