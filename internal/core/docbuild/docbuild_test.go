package docbuild

import (
	"testing"
	"time"
)

func TestExtractEntityType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subject string
		want    string
	}{
		{"/pets/:uuid/", "pets"},
		{"pets", "pets"},
		{"pets/123", "pets"},
		{":pets/123", "pets"},
		{"", ""},
		{"///", ""},
	}
	for _, tc := range cases {
		if got := ExtractEntityType(tc.subject); got != tc.want {
			t.Fatalf("ExtractEntityType(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func TestExtractEntityID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subject string
		want    string
	}{
		{"pets/:uuid", ":uuid"},
		{"pets/123/extra", "123/extra"},
		{"pets/", ""},
		{"pets", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractEntityID(tc.subject); got != tc.want {
			t.Fatalf("ExtractEntityID(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func TestBuildCoreFieldsWin(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now
	now = func() time.Time { return fixed }
	defer func() { now = old }()

	upstream := map[string]any{
		"id":             "evil",
		"objectID":       "evil",
		"type":           "evil",
		"schema_version": "9.9",
		"source":         "evil",
		"name":           "Rex",
		"age":            3,
	}

	doc := Build("pet-shop", "pets", "abc-123", upstream)

	if doc["id"] != "abc-123" || doc["objectID"] != "abc-123" {
		t.Fatalf("id fields not forced: id=%v objectID=%v", doc["id"], doc["objectID"])
	}
	if doc["type"] != "pets" {
		t.Fatalf("type = %v, want pets", doc["type"])
	}
	if doc["schema_version"] != SchemaVersion {
		t.Fatalf("schema_version = %v, want %s", doc["schema_version"], SchemaVersion)
	}
	if doc["source"] != "pet-shop" {
		t.Fatalf("source = %v, want pet-shop", doc["source"])
	}
	if doc["updated_at"] != fixed.Format(time.RFC3339) {
		t.Fatalf("updated_at = %v", doc["updated_at"])
	}
	// passthrough fields survive
	if doc["name"] != "Rex" || doc["age"] != 3 {
		t.Fatalf("passthrough fields lost: %v", doc)
	}
	// input map is not mutated
	if upstream["id"] != "evil" {
		t.Fatalf("upstream map mutated")
	}
}

func TestBuildIdempotentOnCoreFields(t *testing.T) {
	t.Parallel()

	upstream := map[string]any{"id": "x", "color": "brown"}
	a := Build("shop", "pets", "p1", upstream)
	b := Build("shop", "pets", "p1", upstream)

	for _, k := range []string{"id", "objectID", "type", "schema_version", "source"} {
		if a[k] != b[k] {
			t.Fatalf("core field %q differs across builds: %v vs %v", k, a[k], b[k])
		}
	}
}

func TestBuildEmptyUpstream(t *testing.T) {
	t.Parallel()

	doc := Build("shop", "pets", "p1", nil)
	if len(doc) != 6 {
		t.Fatalf("expected only core fields, got %v", doc)
	}
}
