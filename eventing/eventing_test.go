package eventing

import (
	"strings"
	"testing"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/digest"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/sad"
	"github.com/cvsouth/kericore/salter"
	"github.com/cvsouth/kericore/serder"
)

func TestVersify(t *testing.T) {
	vs := serder.Versify(serder.ProtoKERI, nil, serder.KindJSON, 0)
	if vs != "KERI10JSON000000_" {
		t.Fatalf("versify = %q", vs)
	}
}

func TestAmple(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3}
	for n, want := range cases {
		if got := ample(n); got != want {
			t.Fatalf("ample(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestPrefixerFromQb64(t *testing.T) {
	qb64 := "DSuhyBcPZEZLK-fcw5tzHn2N46wRCG_ZOoeKtWTOunRA"
	p, err := PrefixerFromQb64(qb64)
	if err != nil {
		t.Fatalf("PrefixerFromQb64: %v", err)
	}
	if p.Qb64() != qb64 {
		t.Fatalf("qb64 = %q", p.Qb64())
	}
	if p.Code() != codec.CodeED25519 {
		t.Fatalf("code = %q", p.Code())
	}
}

func saltSigner(t *testing.T, salt byte, path string, transferable bool) *keys.Signer {
	t.Helper()
	raw := make([]byte, 16)
	for i := range raw {
		raw[i] = salt
	}
	s, err := salter.FromRaw(raw, salter.Low)
	if err != nil {
		t.Fatalf("salter.FromRaw: %v", err)
	}
	signer, err := s.Signer(codec.CodeED25519Seed, transferable, path, nil, true)
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	return signer
}

func TestPrefixerEd25519Derivation(t *testing.T) {
	signer := saltSigner(t, 1, "test:0", true)
	keysList := []string{signer.Verfer().Qb64()}

	s, err := Incept(InceptOpts{Keys: keysList, Code: codec.CodeED25519})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	p, err := PrefixerFromEvent(s, codec.CodeED25519)
	if err != nil {
		t.Fatalf("PrefixerFromEvent: %v", err)
	}
	if p.Qb64() != signer.Verfer().Qb64() {
		t.Fatalf("prefix = %q, want %q", p.Qb64(), signer.Verfer().Qb64())
	}
	if p.Derivation() != DerivationEd25519 {
		t.Fatalf("derivation = %v", p.Derivation())
	}
	if !p.Verify(s, true) {
		t.Fatal("Verify failed")
	}
}

func TestPrefixerEd25519NDerivation(t *testing.T) {
	signer := saltSigner(t, 2, "test:0", false)
	keysList := []string{signer.Verfer().Qb64()}

	s, err := Incept(InceptOpts{Keys: keysList, Code: codec.CodeED25519N})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	p, err := PrefixerFromEvent(s, codec.CodeED25519N)
	if err != nil {
		t.Fatalf("PrefixerFromEvent: %v", err)
	}
	if p.Qb64() != signer.Verfer().Qb64() {
		t.Fatalf("prefix = %q, want %q", p.Qb64(), signer.Verfer().Qb64())
	}
	if p.Derivation() != DerivationEd25519N {
		t.Fatalf("derivation = %v", p.Derivation())
	}
	if !p.Verify(s, true) {
		t.Fatal("Verify failed")
	}
}

func TestPrefixerBlake3_256Derivation(t *testing.T) {
	salt := make([]byte, 16)
	for i := range salt {
		salt[i] = 3
	}
	sl, err := salter.FromRaw(salt, salter.Low)
	if err != nil {
		t.Fatalf("salter.FromRaw: %v", err)
	}
	signer, err := sl.Signer(codec.CodeED25519Seed, true, "test:0", nil, true)
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	nextSigner, err := sl.Signer(codec.CodeED25519Seed, true, "test:1", nil, true)
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	nextDig, err := digest.New(codec.CodeBlake3_256, nextSigner.Verfer().Raw())
	if err != nil {
		t.Fatalf("digest.New: %v", err)
	}

	s, err := Incept(InceptOpts{
		Keys:  []string{signer.Verfer().Qb64()},
		Ndigs: []string{nextDig.Qb64()},
		Code:  codec.CodeBlake3_256,
	})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	p, err := PrefixerFromEvent(s, codec.CodeBlake3_256)
	if err != nil {
		t.Fatalf("PrefixerFromEvent: %v", err)
	}
	if p.Derivation() != DerivationBlake3_256 {
		t.Fatalf("derivation = %v", p.Derivation())
	}
	if !strings.HasPrefix(p.Qb64(), "E") {
		t.Fatalf("prefix %q does not start with E", p.Qb64())
	}
	if !p.Verify(s, true) {
		t.Fatal("Verify failed")
	}

	pre, ok := s.Pre()
	if !ok || pre != p.Qb64() {
		t.Fatalf("prefix %q != identifier %q", p.Qb64(), pre)
	}
}

func TestPrefixerInvalidIlk(t *testing.T) {
	sd := sad.New(
		sad.Field{Key: "v", Val: "KERI10JSON000000_"},
		sad.Field{Key: "t", Val: "rot"},
		sad.Field{Key: "d", Val: "EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM"},
		sad.Field{Key: "i", Val: "EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM"},
		sad.Field{Key: "s", Val: "1"},
	)
	s, err := serder.New(sd, serder.KindJSON, "")
	if err != nil {
		t.Fatalf("serder.New: %v", err)
	}
	if _, err := PrefixerFromEvent(s, codec.CodeBlake3_256); err == nil {
		t.Fatal("expected error for non-inception ilk")
	}
}

func TestPrefixerMultiKeyError(t *testing.T) {
	signer1, _ := keys.NewRandom(codec.CodeED25519Seed, true)
	signer2, _ := keys.NewRandom(codec.CodeED25519Seed, true)

	_, err := Incept(InceptOpts{
		Keys: []string{signer1.Verfer().Qb64(), signer2.Verfer().Qb64()},
		Code: codec.CodeED25519,
	})
	if err == nil {
		t.Fatal("expected error deriving basic prefix from multiple keys")
	}
}

func TestInceptSingleKey(t *testing.T) {
	signer, err := keys.NewRandom(codec.CodeED25519Seed, true)
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}

	s, err := Incept(InceptOpts{Keys: []string{signer.Verfer().Qb64()}, Isith: "1"})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	sd := s.Sad()
	if v, _ := sd.GetString("t"); v != "icp" {
		t.Fatalf("t = %q", v)
	}
	if v, _ := sd.GetString("s"); v != "0" {
		t.Fatalf("s = %q", v)
	}
	if v, _ := sd.GetString("kt"); v != "1" {
		t.Fatalf("kt = %q", v)
	}
	if v, _ := sd.GetString("i"); v == "" {
		t.Fatal("i field is empty")
	}
}

func TestInceptMultiKey(t *testing.T) {
	signer1, _ := keys.NewRandom(codec.CodeED25519Seed, true)
	signer2, _ := keys.NewRandom(codec.CodeED25519Seed, true)
	signer3, _ := keys.NewRandom(codec.CodeED25519Seed, true)

	keysList := []string{
		signer1.Verfer().Qb64(),
		signer2.Verfer().Qb64(),
		signer3.Verfer().Qb64(),
	}

	s, err := Incept(InceptOpts{Keys: keysList, Isith: "2", Code: codec.CodeBlake3_256})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	sd := s.Sad()
	if v, _ := sd.GetString("t"); v != "icp" {
		t.Fatalf("t = %q", v)
	}
	if v, _ := sd.GetString("kt"); v != "2" {
		t.Fatalf("kt = %q", v)
	}
	if v, _ := sd.GetString("i"); v == "" {
		t.Fatal("i field is empty")
	}
	if v, _ := sd.GetString("d"); v == "" {
		t.Fatal("d field is empty")
	}
}

func TestInceptWithWitnesses(t *testing.T) {
	signer, _ := keys.NewRandom(codec.CodeED25519Seed, true)
	wits := []string{
		"BWitness1AAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"BWitness2AAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	}
	toad := 2

	s, err := Incept(InceptOpts{
		Keys:  []string{signer.Verfer().Qb64()},
		Isith: "1",
		Toad:  &toad,
		Wits:  wits,
	})
	if err != nil {
		t.Fatalf("Incept: %v", err)
	}

	sd := s.Sad()
	if v, _ := sd.GetString("bt"); v != "2" {
		t.Fatalf("bt = %q", v)
	}
	b, ok := getStringSlice(sd, "b")
	if !ok || len(b) != 2 {
		t.Fatalf("b = %v", b)
	}
}

func TestInceptInvalidThreshold(t *testing.T) {
	signer, _ := keys.NewRandom(codec.CodeED25519Seed, true)
	_, err := Incept(InceptOpts{Keys: []string{signer.Verfer().Qb64()}, Isith: "2"})
	if err == nil {
		t.Fatal("expected error: threshold greater than key count")
	}
}
