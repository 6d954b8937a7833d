package domain

import "fmt"

// ScopeKind selects the boundary an audit runs against.
type ScopeKind string

const (
	// ScopeResourceGroup audits a single resource group, including the
	// group container itself.
	ScopeResourceGroup ScopeKind = "resource-group"
	// ScopeSubscription audits every resource in a subscription.
	ScopeSubscription ScopeKind = "subscription"
	// ScopeQuery passes the value through verbatim as a Resource Graph
	// where-predicate.
	ScopeQuery ScopeKind = "query"
)

type Scope struct {
	Kind  ScopeKind
	Value string
}

func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeResourceGroup, ScopeSubscription, ScopeQuery:
	default:
		return fmt.Errorf("unsupported scope kind %q", s.Kind)
	}
	if s.Value == "" {
		return fmt.Errorf("scope %q requires a value", s.Kind)
	}
	return nil
}
