package crypt

import (
	"crypto/rand"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/box"

	"github.com/cvsouth/kericore/kerierr"
)

// sealAnonymous implements the libsodium crypto_box_seal construction: an
// ephemeral X25519 keypair is generated, the nonce is derived as
// blake2b(ephemeralPub || recipientPub), the message is boxed with the
// ephemeral private key against the recipient's public key, and the
// ephemeral public key is prepended to the result so the recipient can
// recover the shared secret with only their own private key.
func sealAnonymous(recipientPub *[32]byte, message []byte) ([]byte, error) {
	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	nonce, err := sealNonce(ephPub, recipientPub)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 32+box.Overhead+len(message))
	out = append(out, ephPub[:]...)
	out = box.Seal(out, message, &nonce, recipientPub, ephPriv)
	return out, nil
}

// openAnonymous reverses sealAnonymous given the recipient's keypair.
func openAnonymous(recipientPub, recipientPriv *[32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < 32+box.Overhead {
		return nil, kerierr.ErrInvalidSize
	}
	var ephPub [32]byte
	copy(ephPub[:], sealed[:32])
	nonce, err := sealNonce(&ephPub, recipientPub)
	if err != nil {
		return nil, err
	}
	out, ok := box.Open(nil, sealed[32:], &nonce, &ephPub, recipientPriv)
	if !ok {
		return nil, kerierr.ErrDecryption
	}
	return out, nil
}

func sealNonce(ephPub, recipientPub *[32]byte) ([24]byte, error) {
	var nonce [24]byte
	h, err := blake2b.New(24, nil)
	if err != nil {
		return nonce, err
	}
	h.Write(ephPub[:])
	h.Write(recipientPub[:])
	copy(nonce[:], h.Sum(nil))
	return nonce, nil
}
