package azure

import (
	"fmt"
	"strings"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/errors"
)

// projection shared by every scope so downstream mapping sees a stable row
// shape regardless of how the predicate was built.
const queryProjection = "project id, name, type, location, resourceGroup"

// buildQuery translates an audit scope into a Resource Graph KQL query.
// Group and subscription scopes use case-insensitive equality; query scope
// trusts the caller's predicate verbatim.
func buildQuery(scope domain.Scope) (string, error) {
	var predicate string
	switch scope.Kind {
	case domain.ScopeResourceGroup:
		predicate = fmt.Sprintf("resourceGroup =~ '%s'", escapeKQLString(scope.Value))
	case domain.ScopeSubscription:
		predicate = fmt.Sprintf("subscriptionId =~ '%s'", escapeKQLString(scope.Value))
	case domain.ScopeQuery:
		predicate = scope.Value
	default:
		return "", errors.New(errors.CodeUnsupportedScope, fmt.Sprintf("unsupported scope kind %q", scope.Kind))
	}
	return fmt.Sprintf("Resources | where %s | %s", predicate, queryProjection), nil
}

// escapeKQLString doubles single quotes so a group or subscription value
// cannot terminate the string literal early.
func escapeKQLString(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
