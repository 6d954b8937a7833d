package ports

import (
	"context"

	"coverage-auditor/internal/core/domain"
)

// MatchOutcome partitions one audit's inputs: every live resource lands in
// exactly one of Matched or Missing, and every declared address not
// consumed by a match lands in Orphaned.
type MatchOutcome struct {
	Matched  []domain.MatchedResource
	Missing  []domain.MissingResource
	Orphaned []domain.OrphanedResource
}

type Matcher interface {
	Match(ctx context.Context, live []domain.LiveResource, declared map[string]domain.DeclaredResource) (MatchOutcome, error)
}
