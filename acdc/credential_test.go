package acdc

import (
	"testing"
	"time"

	"github.com/cvsouth/kericore/sad"
)

var fixedNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCredentialSubjectBuilder(t *testing.T) {
	subject := NewCredentialSubject().
		WithIssuee("EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM").
		WithData("name", "John Doe").
		WithData("age", 30)

	if subject.Issuee != "EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM" {
		t.Fatalf("Issuee = %q", subject.Issuee)
	}
	if subject.Data["name"] != "John Doe" || subject.Data["age"] != 30 {
		t.Fatalf("Data = %+v", subject.Data)
	}
}

func TestCredentialBuilderBuild(t *testing.T) {
	subject := NewCredentialSubject().
		WithIssuee("EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM").
		WithData("name", "John Doe")

	cred, err := NewCredentialBuilder(
		"EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM",
		"EWCeT9zTxaZkaC_3-amV2JtG6oUxNA36sCC0P5MI7Buw",
		subject,
	).Issuer("EKYLUMmNPZeEs77Zvclf0bSN5IN-mLfLpx2ySb-HDlk4").Build(fixedNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sd := cred.Sad()
	if _, ok := sd.Get("t"); ok {
		t.Fatal("ACDC SAD must not carry a 't' field")
	}
	d, err := sd.GetString("d")
	if err != nil || d == "" {
		t.Fatalf("GetString(d) = %q, %v", d, err)
	}
	if _, ok := sd.Get("a"); !ok {
		t.Fatal("expected an 'a' field")
	}

	said, err := cred.Said("")
	if err != nil || said != d {
		t.Fatalf("Said() = %q, %v; want %q", said, err, d)
	}
}

func TestCredentialBuildReproducible(t *testing.T) {
	build := func() (string, error) {
		subject := NewCredentialSubject().WithIssuee("EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM")
		cred, err := NewCredentialBuilder("Ereg", "Eschema", subject).Build(fixedNow)
		if err != nil {
			return "", err
		}
		return cred.Said("")
	}
	a, err := build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a != b {
		t.Fatalf("identical inputs produced different SAIDs: %q != %q", a, b)
	}
}

func TestCreateIssuanceEvent(t *testing.T) {
	iss, err := CreateIssuanceEvent(
		"EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM",
		"EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM",
		fixedNow.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("CreateIssuanceEvent: %v", err)
	}
	sd := iss.Sad()
	typ, err := sd.GetString("t")
	if err != nil || typ != "iss" {
		t.Fatalf("t = %q, %v", typ, err)
	}
	s, err := sd.GetString("s")
	if err != nil || s != "0" {
		t.Fatalf("s = %q, %v", s, err)
	}
	if d, err := sd.GetString("d"); err != nil || d == "" {
		t.Fatalf("d = %q, %v", d, err)
	}
}

func TestIssueCredential(t *testing.T) {
	subject := NewCredentialSubject().WithIssuee("EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM")
	b := NewCredentialBuilder("Ereg", "Eschema", subject)

	result, err := IssueCredential(b, fixedNow)
	if err != nil {
		t.Fatalf("IssueCredential: %v", err)
	}
	if result.Anc != nil {
		t.Fatal("Anc must be nil: no anchoring interaction event is constructed")
	}
	if result.ACDC == nil || result.Iss == nil {
		t.Fatal("expected both ACDC and Iss to be set")
	}
	credSAID, _ := result.ACDC.Said("")
	issI, err := result.Iss.Sad().GetString("i")
	if err != nil || issI != credSAID {
		t.Fatalf("Iss.i = %q, want credential SAID %q", issI, credSAID)
	}
}

func TestCredentialEvidenceAndRules(t *testing.T) {
	subject := NewCredentialSubject().WithIssuee("EaU6JR2nmwyZ-i0d8JZAoTNZH3ULvYAfSVPzhzS6b5CM")
	evidence := sad.New(sad.Field{Key: "source", Val: "Ddigest"})
	cred, err := NewCredentialBuilder("Ereg", "Eschema", subject).Evidence(evidence).Build(fixedNow)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e, ok := cred.Sad().Get("e")
	if !ok {
		t.Fatal("expected 'e' field to be present")
	}
	if _, ok := e.(*sad.Map); !ok {
		t.Fatalf("e = %T, want *sad.Map", e)
	}
}
