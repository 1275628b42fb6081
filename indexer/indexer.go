// Package indexer implements the two indexed CESR primitives: Indexer, for
// signatures that carry the index of the key that made them within a
// multi-sig key list, and Counter, for CESR group-count framing codes.
package indexer

import (
	"encoding/base64"

	"github.com/cvsouth/kericore/kerierr"
)

// IndexerCodex enumerates the indexed-signature codes. "Both" codes mark a
// signature valid against both the current and prior-next key lists (used
// when co-signing a rotation); "Crt" ("current") codes are valid against the
// current list only. Ed448 (0A/0B, 3A/3B) and ECDSA (C/D/E/F, 2C-2F) variants
// are listed for completeness with the reference code space but have no
// constructor this module exercises, since no signer in this package
// produces Ed448 or ECDSA key material; see DESIGN.md.
const (
	IdxED25519Sig      = "A" // Ed25519 sig, both, small
	IdxED25519CrtSig   = "B" // Ed25519 sig, current only, small
	IdxECDSA256k1Sig   = "C"
	IdxECDSA256k1Crt   = "D"
	IdxECDSA256r1Sig   = "E"
	IdxECDSA256r1Crt   = "F"
	IdxED448Sig        = "0A"
	IdxED448CrtSig     = "0B"
	IdxED25519BigSig   = "2A" // Ed25519 sig, both, big
	IdxED25519CrtBig   = "2B" // Ed25519 sig, current only, big
	IdxECDSA256k1Big   = "2C"
	IdxECDSA256k1CrtBg = "2D"
	IdxECDSA256r1Big   = "2E"
	IdxECDSA256r1CrtBg = "2F"
	IdxED448BigSig     = "3A"
	IdxED448CrtBigSig  = "3B"
)

var bothCodes = map[string]bool{
	IdxED25519Sig: true, IdxECDSA256k1Sig: true, IdxECDSA256r1Sig: true,
	IdxED448Sig: true, IdxED25519BigSig: true, IdxECDSA256k1Big: true,
	IdxECDSA256r1Big: true, IdxED448BigSig: true,
}

var currentOnlyCodes = map[string]bool{
	IdxED25519CrtSig: true, IdxECDSA256k1Crt: true, IdxECDSA256r1Crt: true,
	IdxED448CrtSig: true, IdxED25519CrtBig: true, IdxECDSA256k1CrtBg: true,
	IdxECDSA256r1CrtBg: true, IdxED448CrtBigSig: true,
}

var bigCodes = map[string]bool{
	IdxED25519BigSig: true, IdxED25519CrtBig: true, IdxECDSA256k1Big: true,
	IdxECDSA256k1CrtBg: true, IdxECDSA256r1Big: true, IdxECDSA256r1CrtBg: true,
	IdxED448BigSig: true, IdxED448CrtBigSig: true,
}

// IsValid reports whether code is a recognized indexer code.
func IsValid(code string) bool {
	return bothCodes[code] || currentOnlyCodes[code]
}

// IsCurrentOnly reports whether a signature under code applies to the
// current key list only.
func IsCurrentOnly(code string) bool { return currentOnlyCodes[code] }

// IsBoth reports whether a signature under code applies to both the current
// and prior-next key lists.
func IsBoth(code string) bool { return bothCodes[code] }

// IsBig reports whether code uses the 2-char/index>63 encoding.
func IsBig(code string) bool { return bigCodes[code] }

type sizage struct{ hs, ss, fs int }

var sizes = map[string]sizage{
	IdxED25519Sig: {1, 1, 88}, IdxED25519CrtSig: {1, 1, 88},
	IdxECDSA256k1Sig: {1, 1, 88}, IdxECDSA256k1Crt: {1, 1, 88},
	IdxECDSA256r1Sig: {1, 1, 88}, IdxECDSA256r1Crt: {1, 1, 88},
	IdxED448Sig: {2, 2, 156}, IdxED448CrtSig: {2, 2, 156},
	IdxED25519BigSig: {2, 4, 92}, IdxED25519CrtBig: {2, 4, 92},
	IdxECDSA256k1Big: {2, 4, 92}, IdxECDSA256k1CrtBg: {2, 4, 92},
	IdxECDSA256r1Big: {2, 4, 92}, IdxECDSA256r1CrtBg: {2, 4, 92},
	IdxED448BigSig: {2, 6, 160}, IdxED448CrtBigSig: {2, 6, 160},
}

const maxSmallIndex = 63
const maxBigIndex = 16383

// Indexer is a signature tagged with the index (and, for "both" codes, the
// prior-next index) of the key that produced it within an ordered key list.
type Indexer struct {
	code  string
	raw   []byte
	index uint64
	ondex uint64
}

// New builds an Indexer over raw (the signature bytes) at the given index.
// ondex defaults to index when nil, matching the reference behavior; pass a
// distinct ondex only for a "both" code signing across a key rotation.
func New(raw []byte, code string, index uint64, ondex *uint64) (*Indexer, error) {
	if !IsValid(code) {
		return nil, kerierr.ErrInvalidCode
	}
	limit := uint64(maxSmallIndex)
	if IsBig(code) {
		limit = maxBigIndex
	}
	if index > limit {
		return nil, kerierr.ErrInvalidIndex
	}
	od := index
	if ondex != nil {
		od = *ondex
	}
	if od > limit {
		return nil, kerierr.ErrInvalidIndex
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	return &Indexer{code: code, raw: rawCopy, index: index, ondex: od}, nil
}

// FromQb64 parses an indexed signature's qb64 representation.
func FromQb64(qb64 string) (*Indexer, error) {
	if qb64 == "" {
		return nil, kerierr.ErrEmptyMaterial
	}
	var code string
	if len(qb64) >= 1 && qb64[0] >= '0' && qb64[0] <= '9' {
		if len(qb64) < 2 {
			return nil, kerierr.ErrInvalidCesr
		}
		code = qb64[:2]
	} else {
		code = qb64[:1]
	}
	if !IsValid(code) {
		return nil, kerierr.ErrInvalidCode
	}
	sz := sizes[code]
	if len(qb64) < sz.fs {
		return nil, kerierr.ErrInvalidCesr
	}
	qb64 = qb64[:sz.fs]

	var index, ondex uint64
	var err error
	if IsBig(code) {
		index, err = b64ToInt(qb64[sz.hs : sz.hs+2])
		if err != nil {
			return nil, err
		}
		ondex, err = b64ToInt(qb64[sz.hs+2 : sz.hs+4])
		if err != nil {
			return nil, err
		}
	} else {
		index, err = b64ToInt(qb64[sz.hs : sz.hs+1])
		if err != nil {
			return nil, err
		}
		ondex = index
	}

	raw, err := base64.RawURLEncoding.DecodeString(qb64[sz.hs+sz.ss:])
	if err != nil {
		return nil, kerierr.ErrInvalidCesr
	}

	return &Indexer{code: code, raw: raw, index: index, ondex: ondex}, nil
}

// Qb64 renders the qb64 encoding.
func (ix *Indexer) Qb64() string {
	sigB64 := base64.RawURLEncoding.EncodeToString(ix.raw)
	if IsBig(ix.code) {
		return ix.code + intToB64(ix.index, 2) + intToB64(ix.ondex, 2) + sigB64
	}
	return ix.code + intToB64(ix.index, 1) + sigB64
}

// Qb64b renders the qb64 encoding as bytes.
func (ix *Indexer) Qb64b() []byte { return []byte(ix.Qb64()) }

// Code returns the Indexer's CESR code.
func (ix *Indexer) Code() string { return ix.code }

// Raw returns the raw signature bytes.
func (ix *Indexer) Raw() []byte { return ix.raw }

// Index returns the current-key index.
func (ix *Indexer) Index() uint64 { return ix.index }

// Ondex returns the prior-next-key index.
func (ix *Indexer) Ondex() uint64 { return ix.ondex }

const b64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func intToB64(n uint64, width int) string {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = b64Chars[n&0x3f]
		n >>= 6
	}
	return string(out)
}

func b64ToInt(s string) (uint64, error) {
	var result uint64
	for i := 0; i < len(s); i++ {
		b := s[i]
		var val uint64
		switch {
		case b >= 'A' && b <= 'Z':
			val = uint64(b - 'A')
		case b >= 'a' && b <= 'z':
			val = uint64(b-'a') + 26
		case b >= '0' && b <= '9':
			val = uint64(b-'0') + 52
		case b == '-':
			val = 62
		case b == '_':
			val = 63
		default:
			return 0, kerierr.ErrInvalidCesr
		}
		result = (result << 6) | val
	}
	return result, nil
}
