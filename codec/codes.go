// Package codec implements the CESR (Composable Event Streaming
// Representation) primitive codec: the Matter type and its Sizage table.
package codec

import "github.com/cvsouth/kericore/kerierr"

// Matter codes used by this module. The full CESR code space also defines
// ECDSA secp256k1/secp256r1 and Ed448 variants (codes.rs: K, L, 1AAA-1AAJ
// minus the ones below, and the 7/8/9-prefixed big variable-length string
// codes); none of those are exercised by any operation this module
// specifies, so they are omitted rather than fabricated. See DESIGN.md.
const (
	CodeED25519Seed      = "A"    // Ed25519 signing seed (private)
	CodeED25519N         = "B"    // Ed25519 non-transferable verification key
	CodeX25519           = "C"    // X25519 public encryption key
	CodeED25519          = "D"    // Ed25519 transferable verification key
	CodeBlake3_256       = "E"    // BLAKE3-256 digest
	CodeBlake2b_256      = "F"    // BLAKE2b-256 digest
	CodeBlake2s_256      = "G"    // BLAKE2s-256 digest
	CodeSHA3_256         = "H"    // SHA3-256 digest
	CodeSHA2_256         = "I"    // SHA2-256 digest
	CodeX25519Private    = "O"    // X25519 private scalar
	CodeX25519CipherSeed = "P"    // X25519 sealed-box ciphertext of a 32-byte seed
	CodeSalt128          = "0A"   // 128-bit (16-byte) random salt
	CodeED25519Sig       = "0B"   // non-indexed Ed25519 signature
	CodeBlake3_512       = "0D"   // BLAKE3-512 digest
	CodeBlake2b_512      = "0E"   // BLAKE2b-512 digest
	CodeSHA3_512         = "0F"   // SHA3-512 digest
	CodeSHA2_512         = "0G"   // SHA2-512 digest
	CodeX25519CipherSalt = "1AAH" // X25519 sealed-box ciphertext of a 16-byte salt
)

// Sizage describes the four fixed lengths associated with a CESR code.
type Sizage struct {
	HS int // hard size: length of the code itself, in qb64 characters
	SS int // soft size: length of an embedded soft (count/index) field, 0 if none
	FS int // full size: total qb64 length (code + soft + base64 payload)
	LS int // lead size: zero bytes prepended to raw before base64, 0/1/2
}

var sizes = map[string]Sizage{
	CodeED25519Seed:      {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeED25519N:         {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeX25519:           {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeED25519:          {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeBlake3_256:       {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeBlake2b_256:      {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeBlake2s_256:      {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeSHA3_256:         {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeSHA2_256:         {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeX25519Private:    {HS: 1, SS: 0, FS: 44, LS: 0},
	CodeX25519CipherSeed: {HS: 1, SS: 0, FS: 124, LS: 0},
	CodeSalt128:          {HS: 2, SS: 0, FS: 24, LS: 0},
	CodeED25519Sig:       {HS: 2, SS: 0, FS: 88, LS: 0},
	CodeBlake3_512:       {HS: 2, SS: 0, FS: 88, LS: 0},
	CodeBlake2b_512:      {HS: 2, SS: 0, FS: 88, LS: 0},
	CodeSHA3_512:         {HS: 2, SS: 0, FS: 88, LS: 0},
	CodeSHA2_512:         {HS: 2, SS: 0, FS: 88, LS: 0},
	CodeX25519CipherSalt: {HS: 4, SS: 0, FS: 100, LS: 0},
}

// SizageOf returns the Sizage table entry for code.
func SizageOf(code string) (Sizage, error) {
	sz, ok := sizes[code]
	if !ok {
		return Sizage{}, kerierr.ErrInvalidCode
	}
	return sz, nil
}

// HardSize returns the hard size (code length in qb64 characters) implied by
// the first character of a qb64 string, per the CESR hard-size table.
func HardSize(first byte) (int, error) {
	switch {
	case first >= 'A' && first <= 'Z':
		return 1, nil
	case first == '0':
		return 2, nil
	case first == '1':
		return 4, nil
	default:
		return 0, kerierr.ErrInvalidCesr
	}
}

// RawSize returns the raw byte length a code's payload must have:
// ((fs - hs) * 3 / 4) - ls.
func RawSize(code string) (int, error) {
	sz, err := SizageOf(code)
	if err != nil {
		return 0, err
	}
	qb64DataSize := sz.FS - sz.HS
	rawWithPad := qb64DataSize * 3 / 4
	return rawWithPad - sz.LS, nil
}
