package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cvsouth/kericore/manager"
)

func TestFileStoreGblsRoundTrip(t *testing.T) {
	fs := New(t.TempDir())

	if _, ok := fs.GetGbls("pidx"); ok {
		t.Fatal("expected no pidx before first write")
	}
	fs.PinGbls("pidx", "0")
	v, ok := fs.GetGbls("pidx")
	if !ok || v != "0" {
		t.Fatalf("GetGbls(pidx) = %q, %v", v, ok)
	}
	fs.PinGbls("pidx", "1")
	if v, _ := fs.GetGbls("pidx"); v != "1" {
		t.Fatalf("PinGbls did not overwrite: got %q", v)
	}
}

func TestFileStorePutPrmsInsertOnly(t *testing.T) {
	fs := New(t.TempDir())
	pre := "Epre"
	prm := manager.PrePrm{Pidx: 0, Algo: manager.Salty, Stem: "test"}

	if !fs.PutPrms(pre, prm) {
		t.Fatal("first PutPrms should succeed")
	}
	if fs.PutPrms(pre, manager.PrePrm{Pidx: 7}) {
		t.Fatal("second PutPrms for the same pre should fail")
	}
	got, ok := fs.GetPrms(pre)
	if !ok || got.Stem != "test" {
		t.Fatalf("GetPrms = %+v, %v, want unmodified original", got, ok)
	}

	fs.PinPrms(pre, manager.PrePrm{Pidx: 7})
	got, ok = fs.GetPrms(pre)
	if !ok || got.Pidx != 7 {
		t.Fatalf("PinPrms should unconditionally overwrite, got %+v", got)
	}
}

func TestFileStoreSitsPersistAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	pre := "Epre"
	sit := manager.PreSit{New: manager.PubLot{Pubs: []string{"Da", "Db"}, Ridx: 0}}

	fs1 := New(dir)
	if !fs1.PutSits(pre, sit) {
		t.Fatal("PutSits should succeed")
	}

	fs2 := New(dir)
	got, ok := fs2.GetSits(pre)
	if !ok || len(got.New.Pubs) != 2 {
		t.Fatalf("GetSits on a fresh FileStore over the same dir = %+v, %v", got, ok)
	}

	sit.New.Ridx = 1
	fs2.PinSits(pre, sit)
	if _, err := os.Stat(filepath.Join(dir, "sits.json")); err != nil {
		t.Fatalf("sits.json not found: %v", err)
	}
	got, _ = fs1.GetSits(pre)
	if got.New.Ridx != 1 {
		t.Fatalf("fs1 did not observe fs2's PinSits write: got Ridx=%d", got.New.Ridx)
	}
}

func TestFileStorePubsInsertOnly(t *testing.T) {
	fs := New(t.TempDir())
	key := manager.RiKey("Epre", 0)
	if !fs.PutPubs(key, manager.PubSet{Pubs: []string{"Da"}}) {
		t.Fatal("first PutPubs should succeed")
	}
	if fs.PutPubs(key, manager.PubSet{Pubs: []string{"Db"}}) {
		t.Fatal("second PutPubs for the same key should fail")
	}
}
