package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/internal/errors"
)

const defaultReadTimeout = 2 * time.Minute

// CoverageAuditEngine runs one audit: read declared state and live
// inventory, match, and aggregate into a coverage report. Both capabilities
// are injected; the engine owns no process-wide state and every run builds
// its indices from scratch.
type CoverageAuditEngine struct {
	state     ports.StateSource
	inventory ports.InventorySource
	matcher   ports.Matcher
	logger    ports.Logger
}

func NewCoverageAuditEngine(
	state ports.StateSource,
	inventory ports.InventorySource,
	matcher ports.Matcher,
	logger ports.Logger,
) (*CoverageAuditEngine, error) {
	if state == nil {
		return nil, errors.New(errors.CodeConfigValidation, "state source cannot be nil")
	}
	if inventory == nil {
		return nil, errors.New(errors.CodeConfigValidation, "inventory source cannot be nil")
	}
	if matcher == nil {
		return nil, errors.New(errors.CodeConfigValidation, "matcher cannot be nil")
	}
	return &CoverageAuditEngine{
		state:     state,
		inventory: inventory,
		matcher:   matcher,
		logger:    logger,
	}, nil
}

// AuditCoverage performs the full read/match/report pipeline. The two reads
// have no data dependency and run concurrently; the first hard failure
// cancels the sibling and aborts before matching, so the caller never sees
// a partial report mistaken for a real finding.
func (e *CoverageAuditEngine) AuditCoverage(ctx context.Context, req ports.AuditRequest) (*domain.CoverageReport, error) {
	if err := req.Scope.Validate(); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigValidation,
			"invalid audit scope", "Use resource-group, subscription, or query with a non-empty value.")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Infof(ctx, "Starting coverage audit using %s state and %s inventory (scope %s=%s)",
		e.state.Type(), e.inventory.Type(), req.Scope.Kind, req.Scope.Value)

	var (
		addresses []string
		declared  map[string]domain.DeclaredResource
		live      []domain.LiveResource
	)

	g, gctx := errgroup.WithContext(readCtx)
	g.Go(func() error {
		var err error
		addresses, err = e.state.ListAddresses(gctx)
		if err != nil {
			return err
		}
		e.logger.Infof(gctx, "Found %d resources in declared state", len(addresses))
		declared, err = e.state.ResourceDetails(gctx, addresses)
		if err != nil {
			return err
		}
		e.logger.Debugf(gctx, "Resolved details for %d of %d declared addresses", len(declared), len(addresses))
		if declared == nil {
			declared = make(map[string]domain.DeclaredResource, len(addresses))
		}
		fillUnresolved(addresses, declared)
		return nil
	})
	g.Go(func() error {
		var err error
		live, err = e.inventory.Query(gctx, req.Scope)
		if err != nil {
			return err
		}
		e.logger.Infof(gctx, "Found %d live resources in scope", len(live))
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			// Cancelled run: partial results are not valid, surface the
			// cancellation rather than a synthesized report.
			return nil, errors.Wrap(ctx.Err(), errors.CodeTimeout, "coverage audit cancelled")
		}
		e.logger.Errorf(ctx, err, "coverage audit aborted before matching")
		return nil, err
	}

	outcome, err := e.matcher.Match(ctx, live, declared)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resource matching failed")
	}

	report := buildReport(outcome, len(live), len(declared), req)
	e.logger.Infof(ctx, "Coverage audit completed: %.1f%% coverage (%d matched, %d missing, %d orphaned)",
		report.CoveragePercentage, report.ManagedCount, len(outcome.Missing), len(outcome.Orphaned))
	return report, nil
}

// fillUnresolved keeps addresses whose details could not be parsed in the
// declared index with empty identifier and normalized name. They can never
// be matched, so they classify as orphaned instead of silently vanishing
// from the declared totals.
func fillUnresolved(addresses []string, declared map[string]domain.DeclaredResource) {
	for _, addr := range addresses {
		if _, ok := declared[addr]; ok {
			continue
		}
		declaredType, declaredName := domain.ParseAddress(addr)
		declared[addr] = domain.DeclaredResource{
			Address:      addr,
			DeclaredType: declaredType,
			DeclaredName: declaredName,
		}
	}
}

var _ ports.AuditEngine = (*CoverageAuditEngine)(nil)
