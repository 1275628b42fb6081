package indexer

import "testing"

func TestIndexerSmallCode(t *testing.T) {
	sig := make([]byte, 64)
	ix, err := New(sig, IdxED25519Sig, 5, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ix.Index() != 5 || ix.Ondex() != 5 {
		t.Fatalf("index=%d ondex=%d, want 5/5", ix.Index(), ix.Ondex())
	}
}

func TestIndexerBigCode(t *testing.T) {
	sig := make([]byte, 64)
	ondex := uint64(200)
	ix, err := New(sig, IdxED25519BigSig, 100, &ondex)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ix.Index() != 100 || ix.Ondex() != 200 {
		t.Fatalf("index=%d ondex=%d, want 100/200", ix.Index(), ix.Ondex())
	}
}

func TestIndexerInvalidIndex(t *testing.T) {
	sig := make([]byte, 64)
	if _, err := New(sig, IdxED25519Sig, 64, nil); err == nil {
		t.Fatal("expected error for index > 63 on small code")
	}
	if _, err := New(sig, IdxED25519BigSig, 16384, nil); err == nil {
		t.Fatal("expected error for index > 16383 on big code")
	}
}

func TestIndexerQb64RoundTrip(t *testing.T) {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = byte(i)
	}
	ix, err := New(sig, IdxED25519Sig, 10, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	qb64 := ix.Qb64()
	if len(qb64) != 88 {
		t.Fatalf("qb64 length = %d, want 88", len(qb64))
	}
	ix2, err := FromQb64(qb64)
	if err != nil {
		t.Fatalf("FromQb64: %v", err)
	}
	if ix2.Index() != ix.Index() || ix2.Code() != ix.Code() {
		t.Fatal("round trip mismatch")
	}
	if string(ix2.Raw()) != string(ix.Raw()) {
		t.Fatal("raw mismatch after round trip")
	}
}

func TestIndexerCodexChecks(t *testing.T) {
	if !IsValid(IdxED25519Sig) || !IsValid(IdxED25519BigSig) {
		t.Fatal("expected valid codes")
	}
	if IsValid("Z") {
		t.Fatal("expected Z to be invalid")
	}
	if !IsCurrentOnly(IdxED25519CrtSig) || IsCurrentOnly(IdxED25519Sig) {
		t.Fatal("current-only check failed")
	}
	if !IsBoth(IdxED25519Sig) || IsBoth(IdxED25519CrtSig) {
		t.Fatal("both check failed")
	}
	if !IsBig(IdxED25519BigSig) || IsBig(IdxED25519Sig) {
		t.Fatal("big check failed")
	}
}

func TestCounterBasic(t *testing.T) {
	c, err := NewCounter(CodeControllerIdxSigs, 5)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	if c.Code() != CodeControllerIdxSigs || c.Count() != 5 {
		t.Fatal("unexpected counter fields")
	}
}

func TestCounterQb64(t *testing.T) {
	c, err := NewCounter(CodeWitnessIdxSigs, 10)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	qb64 := c.Qb64()
	if qb64[:2] != "-B" || len(qb64) != 4 {
		t.Fatalf("qb64 = %q", qb64)
	}
	c2, err := CounterFromQb64(qb64)
	if err != nil {
		t.Fatalf("CounterFromQb64: %v", err)
	}
	if c2.Code() != c.Code() || c2.Count() != c.Count() {
		t.Fatal("round trip mismatch")
	}
}

func TestCounterMaxCount(t *testing.T) {
	if _, err := NewCounter(CodeControllerIdxSigs, 4095); err != nil {
		t.Fatalf("NewCounter at max: %v", err)
	}
	if _, err := NewCounter(CodeControllerIdxSigs, 4096); err == nil {
		t.Fatal("expected error exceeding max count")
	}
}

func TestCounterBig(t *testing.T) {
	c, err := NewCounter(CodeBigAttachedMatQuads, 1000000)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	qb64 := c.Qb64()
	if qb64[:3] != "-0V" || len(qb64) != 8 {
		t.Fatalf("qb64 = %q", qb64)
	}
	c2, err := CounterFromQb64(qb64)
	if err != nil {
		t.Fatalf("CounterFromQb64: %v", err)
	}
	if c2.Count() != c.Count() {
		t.Fatal("round trip mismatch")
	}
}

func TestCounterProtocolStack(t *testing.T) {
	c, err := NewCounter(CodeKeriProtocolStack, 100)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	qb64 := c.Qb64()
	if qb64[:5] != "--AAA" || len(qb64) != 8 {
		t.Fatalf("qb64 = %q", qb64)
	}
}

func TestCounterInvalidCode(t *testing.T) {
	if _, err := NewCounter("-Z", 5); err == nil {
		t.Fatal("expected error for invalid code")
	}
}

func TestCounterFromQb64Invalid(t *testing.T) {
	if _, err := CounterFromQb64("invalid"); err == nil {
		t.Fatal("expected error for non-counter input")
	}
	if _, err := CounterFromQb64("-X"); err == nil {
		t.Fatal("expected error for unknown counter code")
	}
}
