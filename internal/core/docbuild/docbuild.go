// Package docbuild turns upstream entity payloads into canonical search documents
//
// A document is an open string-keyed map: unknown upstream fields pass through
// untouched, core fields always win over same-named upstream fields
package docbuild

import (
	"strings"
	"time"
)

// SchemaVersion is stamped on every built document
const SchemaVersion = "1.0"

// Document is the canonical indexable shape
type Document map[string]any

// now is a seam for tests
var now = func() time.Time { return time.Now().UTC() }

// Build merges an upstream response into a canonical document.
// Core fields (id, objectID, type, schema_version, updated_at, source) are applied
// as defaults first and forced again last so upstream collisions never survive
func Build(source, entityType, entityID string, upstream map[string]any) Document {
	doc := make(Document, len(upstream)+6)

	core := map[string]any{
		"id":             entityID,
		"objectID":       entityID,
		"type":           entityType,
		"schema_version": SchemaVersion,
		"updated_at":     now().Format(time.RFC3339),
		"source":         source,
	}

	for k, v := range core {
		doc[k] = v
	}
	for k, v := range upstream {
		doc[k] = v
	}
	// final overwrite: core fields win even when upstream sets them
	for k, v := range core {
		doc[k] = v
	}
	return doc
}

// ExtractEntityType parses the first subject segment into an entity type.
// "/pets/:uuid/" yields "pets", a leading ':' on the segment is stripped,
// empty input yields ""
func ExtractEntityType(subject string) string {
	s := strings.Trim(subject, "/")
	if s == "" {
		return ""
	}
	first := strings.SplitN(s, "/", 2)[0]
	return strings.TrimPrefix(first, ":")
}

// ExtractEntityID returns everything after the first subject segment verbatim.
// "pets/123/extra" yields "123/extra", a subject without an id yields ""
func ExtractEntityID(subject string) string {
	s := strings.Trim(subject, "/")
	parts := strings.SplitN(s, "/", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
