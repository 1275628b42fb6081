package keys

import (
	"bytes"
	"testing"

	"github.com/cvsouth/kericore/codec"
)

func seedOf(b byte) []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestSignerFromSeed(t *testing.T) {
	s, err := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if s.Matter().Code() != codec.CodeED25519Seed {
		t.Fatalf("matter code = %q", s.Matter().Code())
	}
	if s.Verfer().Code() != codec.CodeED25519 {
		t.Fatalf("verfer code = %q", s.Verfer().Code())
	}
	if !s.Transferable() {
		t.Fatal("expected transferable")
	}
}

func TestSignerNonTransferable(t *testing.T) {
	s, err := FromSeed(seedOf(1), codec.CodeED25519Seed, false)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	if s.Verfer().Code() != codec.CodeED25519N {
		t.Fatalf("verfer code = %q", s.Verfer().Code())
	}
	if s.Transferable() {
		t.Fatal("expected non-transferable")
	}
}

func TestSignerInvalidSeedSize(t *testing.T) {
	if _, err := FromSeed(make([]byte, 16), codec.CodeED25519Seed, true); err == nil {
		t.Fatal("expected error for wrong seed size")
	}
}

func TestSignerInvalidCode(t *testing.T) {
	if _, err := FromSeed(seedOf(1), codec.CodeED25519, true); err == nil {
		t.Fatal("expected error for non-seed code")
	}
}

func TestSignerSignAndVerify(t *testing.T) {
	s, err := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	message := []byte("test message to sign")
	sig := s.Sign(message)
	ok, err := s.Verfer().Verify(sig, message)
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
}

func TestSignerSignWrongMessage(t *testing.T) {
	s, err := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	sig := s.Sign([]byte("test message"))
	ok, err := s.Verfer().Verify(sig, []byte("wrong message"))
	if err != nil || ok {
		t.Fatalf("Verify(wrong message) = %v, %v, want false", ok, err)
	}
}

func TestSignerQb64RoundTrip(t *testing.T) {
	s1, err := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	s2, err := FromQb64(s1.Qb64(), true)
	if err != nil {
		t.Fatalf("FromQb64: %v", err)
	}
	if !bytes.Equal(s1.Matter().Raw(), s2.Matter().Raw()) {
		t.Fatal("seed mismatch after round trip")
	}
	if !bytes.Equal(s1.Verfer().Raw(), s2.Verfer().Raw()) {
		t.Fatal("verfer mismatch after round trip")
	}
}

func TestSignerDeterministic(t *testing.T) {
	s1, _ := FromSeed(seedOf(42), codec.CodeED25519Seed, true)
	s2, _ := FromSeed(seedOf(42), codec.CodeED25519Seed, true)
	if !bytes.Equal(s1.Verfer().Raw(), s2.Verfer().Raw()) {
		t.Fatal("same seed produced different keys")
	}
	message := []byte("deterministic test")
	if !bytes.Equal(s1.Sign(message), s2.Sign(message)) {
		t.Fatal("same seed+message produced different signatures")
	}
}

func TestVerferInvalidSignatureLength(t *testing.T) {
	s, _ := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	_, err := s.Verfer().Verify(make([]byte, 32), []byte("test message"))
	if err == nil {
		t.Fatal("expected error for wrong-length signature")
	}
}

func TestVerferQb64RoundTrip(t *testing.T) {
	s, _ := FromSeed(seedOf(1), codec.CodeED25519Seed, true)
	v1 := s.Verfer()
	qb64 := v1.Qb64()
	v2, err := VerferFromQb64(qb64)
	if err != nil {
		t.Fatalf("VerferFromQb64: %v", err)
	}
	if !bytes.Equal(v1.Raw(), v2.Raw()) || v1.Code() != v2.Code() {
		t.Fatal("round trip mismatch")
	}
}

func TestVerferInvalidCode(t *testing.T) {
	if _, err := FromRaw(make([]byte, 32), codec.CodeBlake3_256); err == nil {
		t.Fatal("expected error for non-verifier code")
	}
}
