package ports

import (
	"context"

	"coverage-auditor/internal/core/domain"
)

type Reporter interface {
	Report(ctx context.Context, report *domain.CoverageReport) error
}
