package ports

import (
	"context"

	"coverage-auditor/internal/core/domain"
)

// StateSource reads the declared side of an audit from an IaC state
// backend. Implementations must be safe for concurrent use per-call.
type StateSource interface {
	Type() string

	// ListAddresses returns every managed resource address in state.
	// Absence of state is a hard failure (CodeStateUnavailable), not an
	// empty list.
	ListAddresses(ctx context.Context) ([]string, error)

	// ResourceDetails resolves the given addresses into declared resource
	// entries keyed by address. Addresses whose details cannot be parsed
	// are omitted, not raised.
	ResourceDetails(ctx context.Context, addresses []string) (map[string]domain.DeclaredResource, error)
}

// InventorySource queries the live side of an audit from the cloud
// inventory backend.
type InventorySource interface {
	Type() string

	// Query returns the live resources within the scope. For group scopes
	// the result includes the group container itself when the extra
	// lookup succeeds; that lookup failing is absorbed, query failure is
	// a hard failure (CodeInventoryUnavailable).
	Query(ctx context.Context, scope domain.Scope) ([]domain.LiveResource, error)
}
