package crypt

import (
	"crypto/sha512"

	"golang.org/x/crypto/curve25519"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/salter"
)

// Decrypter holds an X25519 private scalar converted from an Ed25519
// signing seed, and opens sealed boxes addressed to it.
type Decrypter struct {
	matter *codec.Matter
}

// NewDecrypterFromSeed derives a Decrypter from an Ed25519 seed's qb64
// encoding by converting the expanded Ed25519 secret key to an X25519
// scalar.
func NewDecrypterFromSeed(seedQb64 string) (*Decrypter, error) {
	signer, err := keys.FromQb64(seedQb64, true)
	if err != nil {
		return nil, err
	}
	if signer.Matter().Code() != codec.CodeED25519Seed {
		return nil, kerierr.ErrInvalidCode
	}
	x25519Priv := ed25519SeedToX25519(signer.Matter().Raw())
	m, err := codec.FromRaw(x25519Priv, codec.CodeX25519Private)
	if err != nil {
		return nil, err
	}
	return &Decrypter{matter: m}, nil
}

// DecryptedMatter is the result of Decrypt: exactly one of Salter or Signer
// is set, depending on the Cipher's code.
type DecryptedMatter struct {
	Salter *salter.Salter
	Signer *keys.Signer
}

// Decrypt opens cipher and reconstructs either the Salter or Signer it was
// sealing, per its code.
func (d *Decrypter) Decrypt(cipher *Cipher, transferable bool) (*DecryptedMatter, error) {
	var priv [32]byte
	copy(priv[:], d.matter.Raw())

	x25519Pub, err := x25519PublicFromPrivate(priv)
	if err != nil {
		return nil, err
	}

	plaintext, err := openAnonymous(&x25519Pub, &priv, cipher.Raw())
	if err != nil {
		return nil, err
	}

	switch cipher.Code() {
	case codec.CodeX25519CipherSalt:
		s, err := salter.FromQb64(string(plaintext), salter.Low)
		if err != nil {
			return nil, err
		}
		return &DecryptedMatter{Salter: s}, nil
	case codec.CodeX25519CipherSeed:
		s, err := keys.FromQb64(string(plaintext), transferable)
		if err != nil {
			return nil, err
		}
		return &DecryptedMatter{Signer: s}, nil
	default:
		return nil, kerierr.ErrInvalidCode
	}
}

// Matter returns the underlying X25519 private scalar Matter.
func (d *Decrypter) Matter() *codec.Matter { return d.matter }

// Raw returns the raw X25519 private scalar bytes.
func (d *Decrypter) Raw() []byte { return d.matter.Raw() }

func x25519PublicFromPrivate(priv [32]byte) ([32]byte, error) {
	var pub [32]byte
	out, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], out)
	return pub, nil
}

// ed25519SeedToX25519 reproduces RFC 8032 §5.1.5's secret key expansion
// and clamping, which is exactly the scalar an X25519 private key uses.
func ed25519SeedToX25519(seed []byte) []byte {
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	out := make([]byte, 32)
	copy(out, h[:32])
	return out
}
