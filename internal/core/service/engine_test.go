package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-auditor/internal/adapters/matching/hybrid"
	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/internal/errors"
	"coverage-auditor/internal/testutil"
)

type fakeStateSource struct {
	addresses []string
	details   map[string]domain.DeclaredResource

	listErr    error
	detailsErr error
}

func (f *fakeStateSource) Type() string { return "fake-state" }

func (f *fakeStateSource) ListAddresses(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.addresses, nil
}

func (f *fakeStateSource) ResourceDetails(ctx context.Context, addresses []string) (map[string]domain.DeclaredResource, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

type fakeInventorySource struct {
	live []domain.LiveResource
	err  error

	block bool
}

func (f *fakeInventorySource) Type() string { return "fake-inventory" }

func (f *fakeInventorySource) Query(ctx context.Context, scope domain.Scope) ([]domain.LiveResource, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.live, nil
}

func newTestEngine(t *testing.T, state ports.StateSource, inventory ports.InventorySource) *CoverageAuditEngine {
	t.Helper()
	engine, err := NewCoverageAuditEngine(state, inventory, hybrid.NewMatcher(testutil.NopLogger{}), testutil.NopLogger{})
	require.NoError(t, err)
	return engine
}

func groupRequest() ports.AuditRequest {
	return ports.AuditRequest{
		Scope:           domain.Scope{Kind: domain.ScopeResourceGroup, Value: "prod-rg"},
		IncludeMissing:  true,
		IncludeOrphaned: true,
	}
}

func TestNewCoverageAuditEngine_NilDependencies(t *testing.T) {
	state := &fakeStateSource{}
	inventory := &fakeInventorySource{}
	matcher := hybrid.NewMatcher(testutil.NopLogger{})

	_, err := NewCoverageAuditEngine(nil, inventory, matcher, testutil.NopLogger{})
	assert.Error(t, err)
	_, err = NewCoverageAuditEngine(state, nil, matcher, testutil.NopLogger{})
	assert.Error(t, err)
	_, err = NewCoverageAuditEngine(state, inventory, nil, testutil.NopLogger{})
	assert.Error(t, err)
}

func TestAuditCoverage_EndToEnd(t *testing.T) {
	storageID := "/subscriptions/S/resourceGroups/prod-rg/providers/Microsoft.Storage/storageAccounts/prodstore"
	state := &fakeStateSource{
		addresses: []string{"azurerm_storage_account.store", "azurerm_virtual_network.net"},
		details: map[string]domain.DeclaredResource{
			"azurerm_storage_account.store": {
				Address:        "azurerm_storage_account.store",
				DeclaredType:   "azurerm_storage_account",
				DeclaredName:   "store",
				ProviderID:     storageID,
				NormalizedName: "store",
			},
			"azurerm_virtual_network.net": {
				Address:        "azurerm_virtual_network.net",
				DeclaredType:   "azurerm_virtual_network",
				DeclaredName:   "net",
				NormalizedName: "net",
			},
		},
	}
	inventory := &fakeInventorySource{
		live: []domain.LiveResource{
			{ID: storageID, Type: "Microsoft.Storage/storageAccounts", Name: "prodstore"},
			{ID: "/subscriptions/S/resourceGroups/prod-rg/providers/Microsoft.Web/sites/legacy-app", Type: "Microsoft.Web/sites", Name: "legacy-app"},
		},
	}
	engine := newTestEngine(t, state, inventory)

	report, err := engine.AuditCoverage(context.Background(), groupRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalLive)
	assert.Equal(t, 2, report.TotalDeclared)
	assert.Equal(t, 1, report.ManagedCount)
	assert.Equal(t, 50.0, report.CoveragePercentage)
	require.Len(t, report.Matched, 1)
	assert.Equal(t, "azurerm_storage_account.store", report.Matched[0].Address)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, "legacy-app", report.Missing[0].Name)
	assert.Contains(t, report.Missing[0].ImportDirective, "terraform import")
	require.Len(t, report.Orphaned, 1)
	assert.Equal(t, "azurerm_virtual_network.net", report.Orphaned[0].Address)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAuditCoverage_InvalidScope(t *testing.T) {
	engine := newTestEngine(t, &fakeStateSource{}, &fakeInventorySource{})

	_, err := engine.AuditCoverage(context.Background(), ports.AuditRequest{
		Scope: domain.Scope{Kind: "tenant", Value: "x"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigValidation, errors.GetCode(err))
}

func TestAuditCoverage_StateFailureAbortsRun(t *testing.T) {
	stateErr := errors.New(errors.CodeStateUnavailable, "terraform state list failed")
	engine := newTestEngine(t,
		&fakeStateSource{listErr: stateErr},
		&fakeInventorySource{live: []domain.LiveResource{{ID: "/x"}}},
	)

	report, err := engine.AuditCoverage(context.Background(), groupRequest())
	assert.Nil(t, report)
	assert.Equal(t, errors.CodeStateUnavailable, errors.GetCode(err))
}

func TestAuditCoverage_InventoryFailureAbortsRun(t *testing.T) {
	invErr := errors.New(errors.CodeInventoryUnavailable, "resource graph query failed")
	engine := newTestEngine(t,
		&fakeStateSource{addresses: []string{"azurerm_storage_account.a"}},
		&fakeInventorySource{err: invErr},
	)

	report, err := engine.AuditCoverage(context.Background(), groupRequest())
	assert.Nil(t, report)
	assert.Equal(t, errors.CodeInventoryUnavailable, errors.GetCode(err))
}

func TestAuditCoverage_CancelledRun(t *testing.T) {
	engine := newTestEngine(t, &fakeStateSource{}, &fakeInventorySource{block: true})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	report, err := engine.AuditCoverage(ctx, groupRequest())
	assert.Nil(t, report)
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
}

func TestAuditCoverage_Timeout(t *testing.T) {
	engine := newTestEngine(t, &fakeStateSource{}, &fakeInventorySource{block: true})

	req := groupRequest()
	req.Timeout = 20 * time.Millisecond

	report, err := engine.AuditCoverage(context.Background(), req)
	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestAuditCoverage_UnresolvedAddressesBecomeOrphaned(t *testing.T) {
	// Details resolve for neither address; both must still appear in the
	// declared totals and classify as orphaned.
	engine := newTestEngine(t,
		&fakeStateSource{addresses: []string{
			"azurerm_storage_account.sa",
			`module.network.azurerm_subnet.internal["a"]`,
		}},
		&fakeInventorySource{},
	)

	report, err := engine.AuditCoverage(context.Background(), groupRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalDeclared)
	require.Len(t, report.Orphaned, 2)
	assert.Equal(t, "azurerm_storage_account.sa", report.Orphaned[0].Address)
	assert.Equal(t, "azurerm_storage_account", report.Orphaned[0].DeclaredType)
	assert.Equal(t, `module.network.azurerm_subnet.internal["a"]`, report.Orphaned[1].Address)
	assert.Equal(t, "azurerm_subnet", report.Orphaned[1].DeclaredType)
}

func TestAuditCoverage_RepeatedRunsProduceIdenticalReports(t *testing.T) {
	state := &fakeStateSource{
		addresses: []string{"azurerm_a_thing.shared", "azurerm_b_thing.shared"},
		details: map[string]domain.DeclaredResource{
			"azurerm_a_thing.shared": {Address: "azurerm_a_thing.shared", DeclaredType: "azurerm_a_thing", DeclaredName: "shared", NormalizedName: "shared"},
			"azurerm_b_thing.shared": {Address: "azurerm_b_thing.shared", DeclaredType: "azurerm_b_thing", DeclaredName: "shared", NormalizedName: "shared"},
		},
	}
	inventory := &fakeInventorySource{
		live: []domain.LiveResource{
			{ID: "/subscriptions/S/resourceGroups/RG/providers/P.T/shared", Type: "P.T/things", Name: "shared"},
		},
	}
	engine := newTestEngine(t, state, inventory)

	first, err := engine.AuditCoverage(context.Background(), groupRequest())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.AuditCoverage(context.Background(), groupRequest())
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("report differs between runs (-first +again):\n%s", diff)
		}
	}
}
