package dictionary

import (
	"strings"
	"testing"
)

func TestNewBuiltin_CommonWords(t *testing.T) {
	d := NewBuiltin()

	if d.Len() == 0 {
		t.Fatal("builtin dictionary is empty")
	}

	tr, ok := d.Lookup("book")
	if !ok {
		t.Fatal("Lookup(book) not found in builtin set")
	}
	if tr != "libro" {
		t.Errorf("Lookup(book) = %q, want %q", tr, "libro")
	}
}

func TestLookup_Missing(t *testing.T) {
	d := New()

	if _, ok := d.Lookup("zyzzyva"); ok {
		t.Error("Lookup on empty dictionary should miss")
	}
}

func TestLoadJSON_MergesNormalizedKeys(t *testing.T) {
	d := New()

	n, err := d.LoadJSON(strings.NewReader(`{"Cat.": "gato", "DOG": "perro", "": "nothing"}`))
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if n != 2 {
		t.Errorf("merged = %d, want 2", n)
	}

	if tr, ok := d.Lookup("cat"); !ok || tr != "gato" {
		t.Errorf("Lookup(cat) = %q, %v; want gato, true", tr, ok)
	}
	if tr, ok := d.Lookup("dog"); !ok || tr != "perro" {
		t.Errorf("Lookup(dog) = %q, %v; want perro, true", tr, ok)
	}
}

func TestLoadJSON_Invalid(t *testing.T) {
	d := New()

	if _, err := d.LoadJSON(strings.NewReader("[1,2,3]")); err == nil {
		t.Error("LoadJSON should fail on a non-object document")
	}
}
