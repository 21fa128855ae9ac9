package module

import dom "indexa/internal/services/reindex/domain"

// Ports holds the ports exposed by the reindex module
type Ports struct {
	Service dom.ServicePort
	Engine  dom.EnginePort
}
