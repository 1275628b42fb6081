package crypt

import (
	"filippo.io/edwards25519"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
)

// Encrypter holds an X25519 public key converted from an Ed25519
// verification key, and seals data against it.
type Encrypter struct {
	matter *codec.Matter
}

// NewEncrypterFromVerfer derives an Encrypter from an Ed25519 Verfer by
// converting its Edwards public key to its Montgomery (X25519) form.
func NewEncrypterFromVerfer(v *keys.Verfer) (*Encrypter, error) {
	if v.Code() != codec.CodeED25519 && v.Code() != codec.CodeED25519N {
		return nil, kerierr.ErrInvalidCode
	}
	x25519Pub, err := ed25519PubToX25519(v.Raw())
	if err != nil {
		return nil, err
	}
	m, err := codec.FromRaw(x25519Pub, codec.CodeX25519)
	if err != nil {
		return nil, err
	}
	return &Encrypter{matter: m}, nil
}

// NewEncrypterFromQb64 parses an Encrypter's own qb64 X25519 public key
// representation directly (no Ed25519 conversion).
func NewEncrypterFromQb64(qb64 string) (*Encrypter, error) {
	m, err := codec.FromQb64(qb64)
	if err != nil {
		return nil, err
	}
	if m.Code() != codec.CodeX25519 {
		return nil, kerierr.ErrInvalidCode
	}
	return &Encrypter{matter: m}, nil
}

// VerifySeed checks that the signer derived from seedQb64 converts to this
// Encrypter's X25519 public key.
func (e *Encrypter) VerifySeed(seedQb64 string) (bool, error) {
	signer, err := keys.FromQb64(seedQb64, true)
	if err != nil {
		return false, err
	}
	x25519Pub, err := ed25519PubToX25519(signer.Verfer().Raw())
	if err != nil {
		return false, err
	}
	return string(x25519Pub) == string(e.matter.Raw()), nil
}

// Encrypt seals the qb64 bytes of m in an X25519 sealed box, choosing the
// cipher code by whether m's code marks it a salt or a signing seed.
func (e *Encrypter) Encrypt(m *codec.Matter) (*Cipher, error) {
	cipherCode := codec.CodeX25519CipherSeed
	if m.Code() == codec.CodeSalt128 {
		cipherCode = codec.CodeX25519CipherSalt
	}

	var pub [32]byte
	copy(pub[:], e.matter.Raw())
	sealed, err := sealAnonymous(&pub, m.Qb64b())
	if err != nil {
		return nil, err
	}
	return NewCipher(sealed, cipherCode)
}

// Matter returns the underlying X25519 public key Matter.
func (e *Encrypter) Matter() *codec.Matter { return e.matter }

// Raw returns the raw X25519 public key bytes.
func (e *Encrypter) Raw() []byte { return e.matter.Raw() }

// Qb64 returns the qb64 encoding.
func (e *Encrypter) Qb64() string { return e.matter.Qb64() }

func ed25519PubToX25519(edPub []byte) ([]byte, error) {
	if len(edPub) != 32 {
		return nil, kerierr.ErrInvalidKey
	}
	p, err := new(edwards25519.Point).SetBytes(edPub)
	if err != nil {
		return nil, kerierr.ErrInvalidKey
	}
	return p.BytesMontgomery(), nil
}
