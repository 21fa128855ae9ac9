package module

import dom "indexa/internal/services/indexing/domain"

// Ports holds the ports exposed by the indexing module
type Ports struct {
	Indexer dom.IndexerPort
}
