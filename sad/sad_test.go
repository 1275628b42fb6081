package sad

import "testing"

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := New(
		Field{"v", "KERI10JSON0000ff_"},
		Field{"t", "icp"},
		Field{"d", ""},
		Field{"i", ""},
	)
	got, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"v":"KERI10JSON0000ff_","t":"icp","d":"","i":""}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMapSetUpdateKeepsPosition(t *testing.T) {
	m := New(Field{"a", 1}, Field{"b", 2})
	m.Set("a", 99)
	got, _ := m.MarshalJSON()
	if string(got) != `{"a":99,"b":2}` {
		t.Fatalf("got %s", got)
	}
}

func TestMapRoundTrip(t *testing.T) {
	src := `{"v":"KERI10JSON0000ff_","t":"icp","d":"Ex","i":"Ex","s":"0","kt":"1","k":["Dabc"],"nt":"0","n":[],"bt":"0","b":[],"c":[],"a":[]}`
	m := &Map{}
	if err := m.UnmarshalJSON([]byte(src)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	out, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != src {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", out, src)
	}
}

func TestMapClone(t *testing.T) {
	inner := New(Field{"x", "1"})
	m := New(Field{"d", "Ex"}, Field{"a", inner})
	clone := m.Clone()
	clone.Set("d", "changed")
	if v, _ := m.GetString("d"); v != "Ex" {
		t.Fatalf("original mutated: got %s", v)
	}
	nestedClone, _ := clone.Get("a")
	nestedClone.(*Map).Set("x", "2")
	orig, _ := inner.GetString("x")
	if orig != "1" {
		t.Fatalf("nested clone shares state with original: got %s", orig)
	}
}

func TestMapGetString(t *testing.T) {
	m := New(Field{"t", "icp"})
	v, err := m.GetString("t")
	if err != nil || v != "icp" {
		t.Fatalf("GetString = %q, %v", v, err)
	}
	if _, err := m.GetString("missing"); err == nil {
		t.Fatal("expected error for missing key")
	}
}
