// Package crypt implements X25519 sealed-box encryption of at-rest key
// material: Ed25519 keys are converted to X25519 for the sole purpose of
// encrypting seeds and salts, never for signing.
package crypt

import (
	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
)

// Cipher wraps a CESR-encoded X25519 sealed-box ciphertext, tagged with
// whether it encrypts a 16-byte salt or a 32-byte seed.
type Cipher struct {
	matter *codec.Matter
}

// NewCipher builds a Cipher from raw ciphertext bytes, inferring the code
// from the raw length when code is empty.
func NewCipher(raw []byte, code string) (*Cipher, error) {
	if code == "" {
		switch len(raw) {
		case mustRawSize(codec.CodeX25519CipherSalt):
			code = codec.CodeX25519CipherSalt
		case mustRawSize(codec.CodeX25519CipherSeed):
			code = codec.CodeX25519CipherSeed
		default:
			return nil, kerierr.ErrInvalidCode
		}
	}
	if code != codec.CodeX25519CipherSalt && code != codec.CodeX25519CipherSeed {
		return nil, kerierr.ErrInvalidCode
	}
	m, err := codec.FromRaw(raw, code)
	if err != nil {
		return nil, err
	}
	return &Cipher{matter: m}, nil
}

// CipherFromQb64 parses a Cipher's qb64 representation.
func CipherFromQb64(qb64 string) (*Cipher, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	if m.Code() != codec.CodeX25519CipherSalt && m.Code() != codec.CodeX25519CipherSeed {
		return nil, kerierr.ErrInvalidCode
	}
	return &Cipher{matter: m}, nil
}

func mustRawSize(code string) int {
	n, err := codec.RawSize(code)
	if err != nil {
		return -1
	}
	return n
}

// Matter returns the underlying Matter.
func (c *Cipher) Matter() *codec.Matter { return c.matter }

// Code returns the Cipher's CESR code.
func (c *Cipher) Code() string { return c.matter.Code() }

// Raw returns the raw ciphertext bytes.
func (c *Cipher) Raw() []byte { return c.matter.Raw() }

// Qb64 returns the qb64 encoding.
func (c *Cipher) Qb64() string { return c.matter.Qb64() }

// Qb64b returns the qb64 encoding as bytes.
func (c *Cipher) Qb64b() []byte { return c.matter.Qb64b() }

// Qb2 returns the binary encoding.
func (c *Cipher) Qb2() []byte { return c.matter.Qb2() }
