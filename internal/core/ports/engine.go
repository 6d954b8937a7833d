package ports

import (
	"context"
	"time"

	"coverage-auditor/internal/core/domain"
)

// AuditRequest describes one coverage audit run.
type AuditRequest struct {
	Scope domain.Scope

	// IncludeMissing / IncludeOrphaned toggle whether those categories are
	// populated in the report. They never affect ManagedCount or
	// CoveragePercentage, which are always computed over the full sets.
	IncludeMissing  bool
	IncludeOrphaned bool

	// Timeout bounds each external read. Zero means the engine default.
	Timeout time.Duration
}

type AuditEngine interface {
	AuditCoverage(ctx context.Context, req AuditRequest) (*domain.CoverageReport, error)
}
