package module

import (
	dom "indexa/internal/services/events/domain"
	registrydom "indexa/internal/services/registry/domain"
)

// Ports holds the ports exposed by the events module
type Ports struct {
	Service   dom.ServicePort
	Publisher registrydom.Publisher
}
