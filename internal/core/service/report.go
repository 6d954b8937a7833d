package service

import (
	"fmt"
	"math"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
)

// buildReport aggregates a match outcome into the final coverage report.
// Pure computation: counts and percentage always reflect the full live and
// declared sets. The include toggles control which lists are emitted, and
// recommendations read off the emitted lists: an excluded category never
// drives a recommendation.
func buildReport(outcome ports.MatchOutcome, totalLive, totalDeclared int, req ports.AuditRequest) *domain.CoverageReport {
	coverage := 0.0
	if totalLive > 0 {
		coverage = round2(float64(len(outcome.Matched)) / float64(totalLive) * 100)
	}

	missing := make([]domain.MissingResource, 0)
	if req.IncludeMissing {
		missing = append(missing, outcome.Missing...)
		for i := range missing {
			missing[i].ImportDirective = fmt.Sprintf("terraform import <address> %q", missing[i].ID)
		}
	}
	orphaned := make([]domain.OrphanedResource, 0)
	if req.IncludeOrphaned {
		orphaned = append(orphaned, outcome.Orphaned...)
	}

	return &domain.CoverageReport{
		TotalLive:          totalLive,
		TotalDeclared:      totalDeclared,
		ManagedCount:       len(outcome.Matched),
		CoveragePercentage: coverage,
		Matched:            outcome.Matched,
		Missing:            missing,
		Orphaned:           orphaned,
		Recommendations:    recommendations(len(missing), len(orphaned), coverage),
	}
}

// recommendations derives guidance deterministically from the counts. The
// rules are evaluated in order and are not mutually exclusive, except that
// full coverage implies nothing is missing.
func recommendations(missing, orphaned int, coverage float64) []string {
	recs := make([]string, 0, 3)
	if missing > 0 {
		recs = append(recs, fmt.Sprintf("Export %d unmanaged resources into Terraform (see each missing entry's import directive)", missing))
	}
	if orphaned > 0 {
		recs = append(recs, fmt.Sprintf("Review %d orphaned resources in Terraform state - they may have been deleted in Azure or renamed", orphaned))
	}
	if coverage < 100 && missing == 0 {
		recs = append(recs, "Some resources could not be automatically matched. Review Azure and Terraform resources manually.")
	}
	if coverage == 100 {
		recs = append(recs, "All Azure resources in scope are managed by Terraform.")
	}
	return recs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
