package command

import (
	"context"

	"github.com/aurelia-gems/storefront/kafka"
)

// Authorizer gates catalog mutations on the admin session. The admin
// session machine satisfies it.
type Authorizer interface {
	Check(ctx context.Context) error
}

// CatalogCache is the slice of the cache the command handlers need.
// After every successful mutation the snapshot is invalidated and
// re-fetched in the background; the local state is never patched
// optimistically and trusted as final.
type CatalogCache interface {
	Invalidate()
	Refresh(ctx context.Context) error
}

// EventPublisher emits catalog change events. A nil publisher disables
// eventing.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, eventType string, event kafka.ProductEvent) error
}
