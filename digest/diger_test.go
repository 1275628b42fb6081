package digest

import (
	"bytes"
	"testing"

	"github.com/cvsouth/kericore/codec"
)

func TestDigerBlake3256(t *testing.T) {
	data := []byte("test data for hashing")
	d, err := New(codec.CodeBlake3_256, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Code() != codec.CodeBlake3_256 {
		t.Fatalf("code = %q", d.Code())
	}
	if len(d.Raw()) != 32 {
		t.Fatalf("raw length = %d, want 32", len(d.Raw()))
	}
	if d.Qb64()[0] != 'E' || len(d.Qb64()) != 44 {
		t.Fatalf("qb64 = %q", d.Qb64())
	}
	ok, err := d.Verify(data)
	if err != nil || !ok {
		t.Fatalf("Verify(data) = %v, %v", ok, err)
	}
	ok, err = d.Verify([]byte("different data"))
	if err != nil || ok {
		t.Fatalf("Verify(wrong data) = %v, %v, want false", ok, err)
	}
}

func TestDigerSHA2256(t *testing.T) {
	data := []byte("SHA2 test data")
	d, err := New(codec.CodeSHA2_256, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(d.Raw()) != 32 {
		t.Fatalf("raw length = %d", len(d.Raw()))
	}
	if ok, err := d.Verify(data); err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
}

func TestDigerSHA3256(t *testing.T) {
	data := []byte("SHA3 test data")
	d, err := New(codec.CodeSHA3_256, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, err := d.Verify(data); err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
}

func TestDigerFromQb64(t *testing.T) {
	data := []byte("original data")
	d1, err := New(codec.CodeBlake3_256, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d2, err := FromQb64(d1.Qb64())
	if err != nil {
		t.Fatalf("FromQb64: %v", err)
	}
	if !bytes.Equal(d1.Raw(), d2.Raw()) || d1.Code() != d2.Code() || d1.Qb64() != d2.Qb64() {
		t.Fatal("round trip mismatch")
	}
}

func TestDigerCompareSameCode(t *testing.T) {
	data := []byte("comparison test")
	d1, _ := New(codec.CodeBlake3_256, data)
	d2, _ := New(codec.CodeBlake3_256, data)
	ok, err := d1.Compare(data, d2)
	if err != nil || !ok {
		t.Fatalf("Compare = %v, %v", ok, err)
	}
}

func TestDigerCompareDifferentCodes(t *testing.T) {
	data := []byte("multi-algorithm test")
	d1, _ := New(codec.CodeBlake3_256, data)
	d2, _ := New(codec.CodeSHA2_256, data)
	ok, err := d1.Compare(data, d2)
	if err != nil || !ok {
		t.Fatalf("Compare across codes = %v, %v", ok, err)
	}
}

func TestDigerEmptyData(t *testing.T) {
	d, err := New(codec.CodeBlake3_256, []byte(""))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, err := d.Verify([]byte("")); err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
}

func TestDigerUnsupportedCode(t *testing.T) {
	if _, err := New("INVALID", []byte("test")); err == nil {
		t.Fatal("expected error for invalid digest code")
	}
}
