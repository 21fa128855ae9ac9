package module

import dom "indexa/internal/services/registry/domain"

// Ports holds the ports exposed by the registry module
type Ports struct {
	Service  dom.ServicePort
	Resolver dom.ResolverPort
}
