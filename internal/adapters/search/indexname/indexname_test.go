package indexname

import (
	"testing"

	"indexa/internal/core/docbuild"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name   string
		source string
		typ    string
		want   string
	}{
		{"leading slash stripped", "/petstore", "pets", "petstore-pets"},
		{"no leading slash", "petstore", "pets", "petstore-pets"},
		{"double leading slash stripped", "//petstore", "pets", "petstore-pets"},
		{"non ascii source kept byte for byte", "/café", "menú", "café-menú"},
		{"empty source", "", "pets", "-pets"},
		{"inner slashes kept", "/svc/v2", "pets", "svc/v2-pets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.source, tc.typ); got != tc.want {
				t.Fatalf("Format(%q, %q) = %q, want %q", tc.source, tc.typ, got, tc.want)
			}
		})
	}
}

func TestFor(t *testing.T) {
	doc := docbuild.Document{"source": "/petstore", "type": "pets", "id": "p1"}
	if got := For(doc); got != "petstore-pets" {
		t.Fatalf("For = %q, want petstore-pets", got)
	}
}

func TestGroup(t *testing.T) {
	docs := []docbuild.Document{
		{"source": "/petstore", "type": "pets", "id": "p1"},
		{"source": "/petstore", "type": "pets", "id": "p2"},
		{"source": "/petstore", "type": "owners", "id": "o1"},
	}
	groups := Group(docs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups["petstore-pets"]) != 2 {
		t.Fatalf("expected 2 docs in petstore-pets, got %d", len(groups["petstore-pets"]))
	}
	if len(groups["petstore-owners"]) != 1 {
		t.Fatalf("expected 1 doc in petstore-owners, got %d", len(groups["petstore-owners"]))
	}
}
