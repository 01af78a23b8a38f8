package atom

import "testing"

func TestInternIdempotent(t *testing.T) {
	tbl := NewTable()
	a1 := tbl.Intern("foo")
	a2 := tbl.Intern("foo")
	if a1 != a2 {
		t.Fatalf("expected same handle, got %d and %d", a1, a2)
	}
	if tbl.Text(a1) != "foo" {
		t.Fatalf("expected text %q, got %q", "foo", tbl.Text(a1))
	}
}

func TestInternDistinct(t *testing.T) {
	tbl := NewTable()
	a1 := tbl.Intern("foo")
	a2 := tbl.Intern("bar")
	if a1 == a2 {
		t.Fatalf("expected distinct handles for distinct strings")
	}
}

func TestEmptyStringIsHandleZero(t *testing.T) {
	tbl := NewTable()
	if tbl.Intern("") != Empty {
		t.Fatalf("expected empty string to intern to handle 0")
	}
}

func TestSizeGrows(t *testing.T) {
	tbl := NewTable()
	base := tbl.Size()
	tbl.Intern("a")
	tbl.Intern("b")
	tbl.Intern("a")
	if got, want := tbl.Size(), base+2; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
}
