package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeWireShape(t *testing.T) {
	blob, err := Encode(State{{ID: "A", Title: "Shoe", ImageURL: "https://img/a", Price: 9.9, Quantity: 3}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"id":"A","title":"Shoe","image_url":"https://img/a","price":9.9,"quantity":3}]`
	if string(blob) != want {
		t.Fatalf("unexpected blob\nwant %s\ngot  %s", want, blob)
	}
}

func TestEncodeEmptyState(t *testing.T) {
	blob, err := Encode(State{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(blob) != "[]" {
		t.Fatalf("expected [], got %s", blob)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	want := State{}.Add(product("A")).Add(product("B")).Increment("B").Add(product("C"))

	blob, err := Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{{`,
		"null":           `null`,
		"not an array":   `{"id":"A"}`,
		"missing id":     `[{"title":"x","quantity":1}]`,
		"duplicate id":   `[{"id":"A","quantity":1},{"id":"A","quantity":2}]`,
		"zero quantity":  `[{"id":"A","quantity":0}]`,
		"wrong type":     `[{"id":"A","quantity":"two"}]`,
		"negative count": `[{"id":"A","quantity":-4}]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(blob))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}
