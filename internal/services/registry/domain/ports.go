package domain

import "context"

// ServicePort is the registry CRUD surface
type ServicePort interface {
	Create(ctx context.Context, in CreateInput) (DomainService, error)
	Get(ctx context.Context, id string) (DomainService, error)
	List(ctx context.Context, q ListQuery) ([]DomainService, int, error)
	Update(ctx context.Context, id string, in UpdateInput) (DomainService, error)
	Delete(ctx context.Context, id string) error
}

// ResolverPort answers which service owns an event type
type ResolverPort interface {
	// ResolveServiceForEvent returns the owning service for a dot separated
	// event type, or a not found error when no registered prefix matches
	ResolveServiceForEvent(ctx context.Context, eventType string) (DomainService, error)
	// GetServiceByDomain returns the first enabled service whose domain list
	// matches the given prefix, honoring trailing ".*" wildcards
	GetServiceByDomain(ctx context.Context, prefix string) (DomainService, error)
	// ListEnabled returns every enabled, non deleted service in listing order
	ListEnabled(ctx context.Context) ([]DomainService, error)
}

// Publisher receives registry mutation notifications.
// Publish failures are logged by the caller, never surfaced to API clients
type Publisher interface {
	PublishRegistryEvent(ctx context.Context, action string, svc DomainService) error
}
