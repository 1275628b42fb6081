package salter

import (
	"bytes"
	"testing"

	"github.com/cvsouth/kericore/codec"
)

func TestSalterNew(t *testing.T) {
	s, err := New(Low)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(s.Matter().Raw()) != 16 {
		t.Fatalf("raw len = %d, want 16", len(s.Matter().Raw()))
	}
	if s.Matter().Code() != codec.CodeSalt128 {
		t.Fatalf("code = %q", s.Matter().Code())
	}
}

func TestSalterStretch(t *testing.T) {
	s, err := New(Low)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k1, err := s.Stretch(32, "signify:controller00", nil, true)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	k2, err := s.Stretch(32, "signify:controller00", nil, true)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("same path produced different keys")
	}
	k3, err := s.Stretch(32, "signify:controller01", nil, true)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Fatal("different paths produced the same key")
	}
}

func TestSalterQb64RoundTrip(t *testing.T) {
	s1, err := New(Med)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s2, err := FromQb64(s1.Qb64(), Med)
	if err != nil {
		t.Fatalf("FromQb64: %v", err)
	}
	if !bytes.Equal(s1.Matter().Raw(), s2.Matter().Raw()) {
		t.Fatal("salt mismatch after round trip")
	}
}

func TestSalterDifferentTiers(t *testing.T) {
	s, err := New(Low)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k1, err := s.Stretch(32, "signify:controller00", nil, true)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	high := High
	k2, err := s.Stretch(32, "signify:controller00", &high, true)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("temp=true should ignore tier, but outputs differ")
	}
}

func TestTierParams(t *testing.T) {
	if ops, mem := Low.Params(); ops != 2 || mem != 65536 {
		t.Fatalf("Low.Params() = %d, %d", ops, mem)
	}
	if ops, mem := Med.Params(); ops != 3 || mem != 262144 {
		t.Fatalf("Med.Params() = %d, %d", ops, mem)
	}
	if ops, mem := High.Params(); ops != 4 || mem != 1048576 {
		t.Fatalf("High.Params() = %d, %d", ops, mem)
	}
}

func TestSalterSigner(t *testing.T) {
	s, err := New(Low)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	signer, err := s.Signer(codec.CodeED25519Seed, true, "signify:controller00", nil, true)
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if signer.Verfer().Code() != codec.CodeED25519 {
		t.Fatalf("verfer code = %q", signer.Verfer().Code())
	}
	signer2, err := s.Signer(codec.CodeED25519Seed, true, "signify:controller00", nil, true)
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if signer.Qb64() != signer2.Qb64() {
		t.Fatal("same salt+path produced different signers")
	}
}
