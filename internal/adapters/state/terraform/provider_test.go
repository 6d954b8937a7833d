package terraform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverage-auditor/internal/core/ports"
	apperrors "coverage-auditor/internal/errors"
	"coverage-auditor/internal/testutil"
)

// warnRecorder captures Warnf messages so degradation paths can assert on
// the operator guidance they emit.
type warnRecorder struct {
	testutil.NopLogger
	warnings []string
}

func (r *warnRecorder) Warnf(ctx context.Context, format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *warnRecorder) WithFields(map[string]any) ports.Logger { return r }

type runnerResult struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner answers terraform invocations keyed by their joined args.
type fakeRunner struct {
	results map[string]runnerResult
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	res, ok := f.results[key]
	if !ok {
		return "", "", errors.New("unexpected terraform invocation: " + key)
	}
	return res.stdout, res.stderr, res.err
}

func newTestSource(runner Runner) *Source {
	return NewSourceWithRunner(runner, testutil.NopLogger{})
}

func TestNewSource_RequiresWorkingDir(t *testing.T) {
	_, err := NewSource(Config{}, testutil.NopLogger{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigValidation, apperrors.GetCode(err))
}

func TestListAddresses(t *testing.T) {
	src := newTestSource(&fakeRunner{results: map[string]runnerResult{
		"state list": {stdout: "azurerm_storage_account.main\n\nmodule.network.azurerm_virtual_network.main\n  \n"},
	}})

	addresses, err := src.ListAddresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"azurerm_storage_account.main",
		"module.network.azurerm_virtual_network.main",
	}, addresses)
}

func TestListAddresses_CommandFailureIsFatal(t *testing.T) {
	src := newTestSource(&fakeRunner{results: map[string]runnerResult{
		"state list": {stderr: "Error: Backend initialization required\nrun terraform init", err: errors.New("exit status 1")},
	}})

	_, err := src.ListAddresses(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateUnavailable, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "Backend initialization required")
	assert.NotContains(t, err.Error(), "run terraform init")
}

func TestListAddresses_Cancelled(t *testing.T) {
	src := newTestSource(&fakeRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ListAddresses(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateUnavailable, apperrors.GetCode(err))
}

func TestResourceDetails_FromShow(t *testing.T) {
	src := newTestSource(&fakeRunner{results: map[string]runnerResult{
		"show -json": {stdout: string(loadFixture(t, "show.json"))},
	}})

	details, err := src.ResourceDetails(context.Background(), []string{
		"azurerm_storage_account.main",
		"azurerm_subnet.internal[0]",
		`azurerm_storage_container.data["primary"]`,
		"module.network.azurerm_virtual_network.main",
	})
	require.NoError(t, err)
	require.Len(t, details, 4)

	sa := details["azurerm_storage_account.main"]
	assert.Equal(t, "/subscriptions/S/resourceGroups/prod-rg/providers/Microsoft.Storage/storageAccounts/prodstore", sa.ProviderID)
	assert.Equal(t, "main", sa.NormalizedName)
	assert.Equal(t, "azurerm_virtual_network", details["module.network.azurerm_virtual_network.main"].DeclaredType)
	assert.Contains(t, details, `azurerm_storage_container.data["primary"]`)
}

func TestResourceDetails_ShowSkipsDataSources(t *testing.T) {
	src := newTestSource(&fakeRunner{results: map[string]runnerResult{
		"show -json": {stdout: string(loadFixture(t, "show.json"))},
	}})

	details, err := src.ResourceDetails(context.Background(), []string{"data.azurerm_client_config.current"})
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestResourceDetails_FallsBackToStatePull(t *testing.T) {
	runner := &fakeRunner{results: map[string]runnerResult{
		"show -json": {stderr: "Error: state snapshot was created by Terraform v1.9.0", err: errors.New("exit status 1")},
		"state pull": {stdout: string(loadFixture(t, "raw_state.tfstate"))},
	}}
	src := newTestSource(runner)

	details, err := src.ResourceDetails(context.Background(), []string{
		"azurerm_storage_account.main",
		"azurerm_subnet.internal[1]",
	})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, []string{"show -json", "state pull"}, runner.calls)
	assert.Contains(t, details["azurerm_subnet.internal[1]"].ProviderID, "subnets/internal-1")
}

func TestResourceDetails_BothPathsFailingDegradesToEmpty(t *testing.T) {
	recorder := &warnRecorder{}
	src := NewSourceWithRunner(&fakeRunner{results: map[string]runnerResult{
		"show -json": {err: errors.New("exit status 1")},
		"state pull": {err: errors.New("exit status 1")},
	}}, recorder)

	details, err := src.ResourceDetails(context.Background(), []string{"azurerm_storage_account.main"})
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)

	// The degradation warning points the operator at the usual recovery.
	require.NotEmpty(t, recorder.warnings)
	assert.Contains(t, recorder.warnings[len(recorder.warnings)-1], "terraform init")
}

func TestResourceDetails_Cancelled(t *testing.T) {
	src := newTestSource(&fakeRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ResourceDetails(ctx, []string{"azurerm_storage_account.main"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateUnavailable, apperrors.GetCode(err))
}
