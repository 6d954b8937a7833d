package json

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
)

const ReporterTypeJSON = "json"

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

type jsonReport struct {
	Summary         jsonSummary    `json:"summary"`
	Matched         []jsonMatched  `json:"matched_resources"`
	Missing         []jsonMissing  `json:"missing_resources"`
	Orphaned        []jsonOrphaned `json:"orphaned_resources"`
	Recommendations []string       `json:"recommendations"`
}

type jsonSummary struct {
	TotalLiveResources     int     `json:"total_live_resources"`
	TotalDeclaredResources int     `json:"total_declared_resources"`
	ManagedResources       int     `json:"managed_resources"`
	CoveragePercentage     float64 `json:"coverage_percentage"`
	MissingFromState       int     `json:"missing_from_state"`
	OrphanedInState        int     `json:"orphaned_in_state"`
}

type jsonMatched struct {
	LiveID       string `json:"live_id"`
	LiveType     string `json:"live_type,omitempty"`
	LiveName     string `json:"live_name,omitempty"`
	Address      string `json:"address"`
	DeclaredType string `json:"declared_type,omitempty"`
	Confidence   string `json:"confidence"`
	Method       string `json:"method"`
}

type jsonMissing struct {
	ID              string `json:"id"`
	Type            string `json:"type,omitempty"`
	Name            string `json:"name,omitempty"`
	Location        string `json:"location,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ImportDirective string `json:"import_directive,omitempty"`
}

type jsonOrphaned struct {
	Address      string `json:"address"`
	DeclaredType string `json:"declared_type,omitempty"`
	DeclaredName string `json:"declared_name,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (r *Reporter) Report(ctx context.Context, report *domain.CoverageReport) error {
	if ctx.Err() != nil {
		r.logger.Warnf(ctx, "JSON report generation cancelled.")
		return ctx.Err()
	}

	out := jsonReport{
		Summary: jsonSummary{
			TotalLiveResources:     report.TotalLive,
			TotalDeclaredResources: report.TotalDeclared,
			ManagedResources:       report.ManagedCount,
			CoveragePercentage:     report.CoveragePercentage,
			MissingFromState:       len(report.Missing),
			OrphanedInState:        len(report.Orphaned),
		},
		Matched:         make([]jsonMatched, 0, len(report.Matched)),
		Missing:         make([]jsonMissing, 0, len(report.Missing)),
		Orphaned:        make([]jsonOrphaned, 0, len(report.Orphaned)),
		Recommendations: report.Recommendations,
	}

	for _, m := range report.Matched {
		out.Matched = append(out.Matched, jsonMatched{
			LiveID:       m.LiveID,
			LiveType:     m.LiveType,
			LiveName:     m.LiveName,
			Address:      m.Address,
			DeclaredType: m.DeclaredType,
			Confidence:   string(m.Confidence),
			Method:       string(m.Method),
		})
	}
	for _, m := range report.Missing {
		out.Missing = append(out.Missing, jsonMissing{
			ID:              m.ID,
			Type:            m.Type,
			Name:            m.Name,
			Location:        m.Location,
			Reason:          m.Reason,
			ImportDirective: m.ImportDirective,
		})
	}
	for _, o := range report.Orphaned {
		out.Orphaned = append(out.Orphaned, jsonOrphaned{
			Address:      o.Address,
			DeclaredType: o.DeclaredType,
			DeclaredName: o.DeclaredName,
			Reason:       o.Reason,
		})
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return err
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}

var _ ports.Reporter = (*Reporter)(nil)
