package health

import "context"

// CachePinger checks solution cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Probe runs a self-check of the computation path.
type Probe interface {
	Probe(ctx context.Context) error
}
