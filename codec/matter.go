package codec

import (
	"encoding/base64"

	"github.com/cvsouth/kericore/kerierr"
)

// Matter is the atomic CESR-tagged value: a code identifying its type, a
// fixed-length raw payload, and the qb64/qb2 encodings of the pair. Once
// constructed a Matter is immutable.
type Matter struct {
	code string
	raw  []byte
	qb64 string
	qb2  []byte
}

// Opts selects one of the four equivalent ways to construct a Matter.
// Construction priority, matching the reference implementation, is
// Qb64 > Qb64b > Qb2 > Raw.
type Opts struct {
	Raw   []byte
	Code  string
	Qb64  string
	Qb64b []byte
	Qb2   []byte
}

// New builds a Matter from whichever of opts.Qb64/Qb64b/Qb2/Raw is present,
// in that priority order.
func New(opts Opts) (*Matter, error) {
	switch {
	case opts.Qb64 != "":
		return FromQb64(opts.Qb64)
	case len(opts.Qb64b) > 0:
		return FromQb64(string(opts.Qb64b))
	case len(opts.Qb2) > 0:
		return FromQb2(opts.Qb2)
	case len(opts.Raw) > 0 || opts.Code != "":
		if opts.Code == "" {
			return nil, kerierr.ErrInvalidCode
		}
		return FromRaw(opts.Raw, opts.Code)
	default:
		return nil, kerierr.ErrEmptyMaterial
	}
}

// FromRaw builds a Matter from raw bytes under the given code, validating
// that len(raw) matches the code's prescribed size.
func FromRaw(raw []byte, code string) (*Matter, error) {
	sz, err := SizageOf(code)
	if err != nil {
		return nil, err
	}
	want, err := RawSize(code)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, kerierr.ErrInvalidSize
	}

	padded := raw
	if sz.LS > 0 {
		padded = make([]byte, sz.LS+len(raw))
		copy(padded[sz.LS:], raw)
	}

	qb64 := code + base64.RawURLEncoding.EncodeToString(padded)
	if len(qb64) != sz.FS {
		return nil, kerierr.ErrInvalidSize
	}

	qb2 := append([]byte(code), raw...)

	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)

	return &Matter{code: code, raw: rawCopy, qb64: qb64, qb2: qb2}, nil
}

// FromQb64 parses a qb64 string into a Matter, validating its full size
// against the code's Sizage entry.
func FromQb64(qb64 string) (*Matter, error) {
	if qb64 == "" {
		return nil, kerierr.ErrEmptyMaterial
	}
	hs, err := HardSize(qb64[0])
	if err != nil {
		return nil, err
	}
	if len(qb64) < hs {
		return nil, kerierr.ErrInvalidCesr
	}
	code := qb64[:hs]
	sz, err := SizageOf(code)
	if err != nil {
		return nil, err
	}
	if len(qb64) < sz.FS {
		return nil, kerierr.ErrInvalidCesr
	}
	qb64 = qb64[:sz.FS]

	payload := qb64[sz.HS:]
	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, kerierr.ErrInvalidCesr
	}
	if sz.LS > 0 {
		if len(decoded) < sz.LS {
			return nil, kerierr.ErrInvalidCesr
		}
		decoded = decoded[sz.LS:]
	}

	want, err := RawSize(code)
	if err != nil {
		return nil, err
	}
	if len(decoded) != want {
		return nil, kerierr.ErrInvalidSize
	}

	qb2 := append([]byte(code), decoded...)

	return &Matter{code: code, raw: decoded, qb64: qb64, qb2: qb2}, nil
}

// FromQb2 parses the binary encoding (code bytes followed by raw bytes) into
// a Matter.
func FromQb2(qb2 []byte) (*Matter, error) {
	if len(qb2) == 0 {
		return nil, kerierr.ErrEmptyMaterial
	}
	hs, err := HardSize(qb2[0])
	if err != nil {
		return nil, err
	}
	if len(qb2) < hs {
		return nil, kerierr.ErrInvalidCesr
	}
	code := string(qb2[:hs])
	want, err := RawSize(code)
	if err != nil {
		return nil, err
	}
	raw := qb2[hs:]
	if len(raw) != want {
		return nil, kerierr.ErrInvalidSize
	}
	return FromRaw(raw, code)
}

// Code returns the Matter's CESR code.
func (m *Matter) Code() string { return m.code }

// Raw returns the Matter's raw payload bytes.
func (m *Matter) Raw() []byte { return m.raw }

// Qb64 returns the qb64 (code + URL-safe base64) encoding.
func (m *Matter) Qb64() string { return m.qb64 }

// Qb64b returns the qb64 encoding as bytes.
func (m *Matter) Qb64b() []byte { return []byte(m.qb64) }

// Qb2 returns the binary (code bytes + raw bytes) encoding.
func (m *Matter) Qb2() []byte { return m.qb2 }
