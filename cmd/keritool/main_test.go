package main

import (
	"testing"

	"github.com/cvsouth/kericore/habery"
	"github.com/cvsouth/kericore/keystore/filestore"
	"github.com/cvsouth/kericore/manager"
	"github.com/cvsouth/kericore/salter"
)

const testBran = "GCiBGAhduxcggJE4qJeaA"

func TestOpenHaberyPersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	one := 1
	hby, err := openHabery(dir, "test", testBran, salter.Low)
	if err != nil {
		t.Fatalf("openHabery: %v", err)
	}
	hab, err := hby.MakeHab("test", habery.MakeHabArgs{ICount: &one, NCount: &one})
	if err != nil {
		t.Fatalf("MakeHab: %v", err)
	}
	pre, err := hab.Pre()
	if err != nil || pre == "" {
		t.Fatalf("Pre() = %q, %v", pre, err)
	}

	store := filestore.New(dir)
	if _, ok := store.GetPrms(pre); !ok {
		t.Fatalf("expected %s's parameters to persist under %s", pre, dir)
	}

	hby2, err := openHabery(dir, "test", testBran, salter.Low)
	if err != nil {
		t.Fatalf("second openHabery: %v", err)
	}
	sit, ok := store.GetSits(pre)
	if !ok {
		t.Fatalf("expected %s's rotation state to persist", pre)
	}

	cigars, sigers, err := hby2.Mgr().Sign([]byte("hello"), sit.New.Pubs, nil, true, nil)
	if err != nil {
		t.Fatalf("Sign across a fresh Habery instance: %v", err)
	}
	if len(sigers) != 1 || len(cigars) != 0 {
		t.Fatalf("got %d sigers, %d cigars, want 1, 0", len(sigers), len(cigars))
	}

	verfers, digers, err := hby2.Mgr().Rotate(pre, manager.RotateOpts{NCount: 1, Transferable: true})
	if err != nil {
		t.Fatalf("Rotate across a fresh Habery instance: %v", err)
	}
	if len(verfers) != 1 || len(digers) != 1 {
		t.Fatalf("got %d verfers, %d digers after rotate, want 1, 1", len(verfers), len(digers))
	}
}

func TestParseTierDefaultsToLow(t *testing.T) {
	tier, err := parseTier("")
	if err != nil {
		t.Fatalf("parseTier(\"\"): %v", err)
	}
	if tier != salter.Low {
		t.Fatalf("parseTier(\"\") = %v, want Low", tier)
	}
}

func TestParseTierRejectsUnknown(t *testing.T) {
	if _, err := parseTier("extreme"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestRunShowRequiresExistingIdentifier(t *testing.T) {
	dir := t.TempDir()
	if err := runShow([]string{"-store-dir", dir, "-pre", "EnoSuchIdentifier"}, nil); err == nil {
		t.Fatal("expected error for an identifier never incepted")
	}
}
