package app

import (
	"context"

	"coverage-auditor/internal/core/ports"
)

// Application ties the audit engine to a reporter.
type Application struct {
	Engine   ports.AuditEngine
	Reporter ports.Reporter
	Logger   ports.Logger
}

func NewApplication(engine ports.AuditEngine, reporter ports.Reporter, logger ports.Logger) *Application {
	return &Application{
		Engine:   engine,
		Reporter: reporter,
		Logger:   logger,
	}
}

// Run executes one coverage audit and renders the report. A hard failure on
// either external read surfaces as an error with no report at all.
func (a *Application) Run(ctx context.Context, req ports.AuditRequest) error {
	a.Logger.Infof(ctx, "Starting coverage audit...")

	report, err := a.Engine.AuditCoverage(ctx, req)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Coverage audit failed")
		return err
	}

	if err := a.Reporter.Report(ctx, report); err != nil {
		a.Logger.Errorf(ctx, err, "Report rendering failed")
		return err
	}

	a.Logger.Infof(ctx, "Coverage audit completed successfully")
	return nil
}
