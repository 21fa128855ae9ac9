// Package indexname derives provider index names from document identity fields
package indexname

import (
	"strings"

	"indexa/internal/core/docbuild"
)

// Format derives the index name from (source, entityType) as
// "{source-without-leading-slash}-{entityType}". This naming is externally
// observable in the search backend and must stay stable, so the source is
// used byte for byte apart from the stripped leading slashes
func Format(source, entityType string) string {
	return strings.TrimLeft(source, "/") + "-" + entityType
}

// For reads source and type off a built document
func For(doc docbuild.Document) string {
	src, _ := doc["source"].(string)
	typ, _ := doc["type"].(string)
	return Format(src, typ)
}

// Group buckets documents by their computed index name
func Group(docs []docbuild.Document) map[string][]docbuild.Document {
	out := make(map[string][]docbuild.Document)
	for _, d := range docs {
		name := For(d)
		out[name] = append(out[name], d)
	}
	return out
}
