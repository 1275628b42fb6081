// Package kerierr collects the sentinel errors shared across the KERI core
// packages. Call sites wrap a sentinel with context via fmt.Errorf's %w so
// errors.Is still matches against the taxonomy.
package kerierr

import "errors"

var (
	// ErrEmptyMaterial is returned when a constructor receives no raw, qb64,
	// or qb2 representation to build from.
	ErrEmptyMaterial = errors.New("kericore: empty material")

	// ErrInvalidCode is returned for an unknown or contextually inappropriate
	// CESR code.
	ErrInvalidCode = errors.New("kericore: invalid code")

	// ErrInvalidSize is returned when raw bytes don't match the length the
	// code prescribes.
	ErrInvalidSize = errors.New("kericore: invalid size")

	// ErrInvalidCesr is returned for malformed qb64/qb2, including base64
	// decode failures.
	ErrInvalidCesr = errors.New("kericore: invalid cesr encoding")

	// ErrInvalidKey is returned when key bytes don't decode as a valid
	// point or scalar.
	ErrInvalidKey = errors.New("kericore: invalid key")

	// ErrInvalidEvent is returned for a missing mandatory field, malformed
	// version string, or unexpected ilk.
	ErrInvalidEvent = errors.New("kericore: invalid event")

	// ErrInvalidIndex is returned when an index exceeds its code's capacity.
	ErrInvalidIndex = errors.New("kericore: invalid index")

	// ErrInvalidThreshold is returned for a signing threshold outside
	// [1, len(keys)] or a next threshold greater than len(ndigs).
	ErrInvalidThreshold = errors.New("kericore: invalid threshold")

	// ErrInvalidArgument covers duplicate witnesses, short passcodes, and
	// incompatible algorithm selections.
	ErrInvalidArgument = errors.New("kericore: invalid argument")

	// ErrInvalidState is returned when a controller/manager operation is
	// called before the required initialization.
	ErrInvalidState = errors.New("kericore: invalid state")

	// ErrCryptoError marks an Ed25519 verify failure at the primitive level,
	// distinct from a well-formed verify that legitimately returned false.
	ErrCryptoError = errors.New("kericore: crypto error")

	// ErrDecryption is returned when a sealed-box unseal fails (wrong key,
	// tampered ciphertext).
	ErrDecryption = errors.New("kericore: decryption failed")

	// ErrVerification is returned when a Cigar/Siger is asked to verify but
	// holds no Verfer.
	ErrVerification = errors.New("kericore: no verfer to verify with")

	// ErrNotFound is returned by KeyStore lookups and facade operations
	// that address a prefix or key that doesn't exist.
	ErrNotFound = errors.New("kericore: not found")
)
