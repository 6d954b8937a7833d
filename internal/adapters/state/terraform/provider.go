package terraform

import (
	"context"
	"fmt"
	"strings"

	tfjson "github.com/hashicorp/terraform-json"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/internal/errors"
	"coverage-auditor/pkg/azureid"
)

const SourceTypeTerraform = "terraform"

type Config struct {
	// WorkingDir is the Terraform workspace to audit.
	WorkingDir string `yaml:"working_dir" mapstructure:"working_dir" validate:"required"`
	// BinaryPath overrides the terraform binary; defaults to $PATH lookup.
	BinaryPath string `yaml:"binary_path" mapstructure:"binary_path"`
}

// Source reads declared resources through the terraform CLI. Addresses come
// from `state list`; details come from `show -json` (structured, works with
// remote backends) with a raw `state pull` parse as fallback.
type Source struct {
	runner Runner
	logger ports.Logger
}

func NewSource(cfg Config, logger ports.Logger) (*Source, error) {
	if cfg.WorkingDir == "" {
		return nil, errors.New(errors.CodeConfigValidation, "terraform state source requires a working directory")
	}
	slog := logger.WithFields(map[string]any{
		"source":      SourceTypeTerraform,
		"working_dir": cfg.WorkingDir,
	})
	return &Source{
		runner: NewRunner(cfg.BinaryPath, cfg.WorkingDir, slog),
		logger: slog,
	}, nil
}

// NewSourceWithRunner wires an explicit runner; used by tests and by any
// host that already owns a terraform execution layer.
func NewSourceWithRunner(runner Runner, logger ports.Logger) *Source {
	return &Source{runner: runner, logger: logger}
}

func (s *Source) Type() string { return SourceTypeTerraform }

// ListAddresses invokes `terraform state list`. A failing command means the
// workspace has no usable state, which is fatal to the whole run: an empty
// report would read as a false coverage finding.
func (s *Source) ListAddresses(ctx context.Context) ([]string, error) {
	stdout, stderr, err := s.runner.Run(ctx, "state", "list")
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeStateUnavailable, "terraform state listing timed out")
		}
		return nil, errors.WrapUserFacing(err, errors.CodeStateUnavailable,
			fmt.Sprintf("terraform state listing failed: %s", firstLine(stderr)),
			"Ensure the workspace is initialized (terraform init) and a state exists (terraform apply).")
	}

	var addresses []string
	for _, line := range strings.Split(stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	s.logger.Debugf(ctx, "Listed %d state addresses", len(addresses))
	return addresses, nil
}

// ResourceDetails resolves the requested addresses into declared entries.
// Unparseable state degrades to an empty index rather than failing the run;
// the caller may recover by re-initializing the workspace first.
func (s *Source) ResourceDetails(ctx context.Context, addresses []string) (map[string]domain.DeclaredResource, error) {
	requested := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		requested[addr] = struct{}{}
	}

	details, err := s.detailsFromShow(ctx, requested)
	if err == nil {
		s.logger.Debugf(ctx, "Resolved %d of %d addresses via terraform show", len(details), len(addresses))
		return details, nil
	}
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), errors.CodeStateUnavailable, "terraform state read timed out")
	}
	s.logger.Warnf(ctx, "terraform show -json unavailable (%v), falling back to raw state pull", err)

	details, err = s.detailsFromPull(ctx, requested)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeStateUnavailable, "terraform state read timed out")
		}
		s.logger.Warnf(ctx, "Raw state unavailable (%v), address details degrade to empty. Run 'terraform init' in the workspace if state lives in a remote backend.", err)
		return map[string]domain.DeclaredResource{}, nil
	}
	s.logger.Debugf(ctx, "Resolved %d of %d addresses via raw state", len(details), len(addresses))
	return details, nil
}

func (s *Source) detailsFromShow(ctx context.Context, requested map[string]struct{}) (map[string]domain.DeclaredResource, error) {
	stdout, stderr, err := s.runner.Run(ctx, "show", "-json")
	if err != nil {
		return nil, fmt.Errorf("terraform show failed: %s: %w", firstLine(stderr), err)
	}

	var state tfjson.State
	if err := json.Unmarshal([]byte(stdout), &state); err != nil {
		return nil, errors.Wrap(err, errors.CodeStateParseError, "invalid terraform show output")
	}
	if state.Values == nil || state.Values.RootModule == nil {
		return nil, errors.New(errors.CodeStateParseError, "terraform show output carries no state values")
	}

	details := make(map[string]domain.DeclaredResource)
	collectModuleDetails(state.Values.RootModule, requested, details)
	return details, nil
}

func (s *Source) detailsFromPull(ctx context.Context, requested map[string]struct{}) (map[string]domain.DeclaredResource, error) {
	stdout, stderr, err := s.runner.Run(ctx, "state", "pull")
	if err != nil {
		return nil, fmt.Errorf("terraform state pull failed: %s: %w", firstLine(stderr), err)
	}
	state, err := parseRawState([]byte(stdout))
	if err != nil {
		return nil, err
	}
	return collectRawDetails(state, requested), nil
}

func collectModuleDetails(mod *tfjson.StateModule, requested map[string]struct{}, out map[string]domain.DeclaredResource) {
	if mod == nil {
		return
	}
	for _, res := range mod.Resources {
		if res == nil || res.Mode != tfjson.ManagedResourceMode {
			continue
		}
		addr := res.Address
		if res.Index != nil && !strings.HasSuffix(addr, "]") {
			addr = addr + indexSuffix(res.Index)
		}
		if _, ok := requested[addr]; !ok {
			continue
		}
		providerID, _ := res.AttributeValues["id"].(string)
		out[addr] = domain.DeclaredResource{
			Address:        addr,
			DeclaredType:   res.Type,
			DeclaredName:   res.Name,
			ProviderID:     providerID,
			NormalizedName: azureid.Normalize(res.Name),
		}
	}
	for _, child := range mod.ChildModules {
		collectModuleDetails(child, requested, out)
	}
}

func indexSuffix(index any) string {
	switch key := index.(type) {
	case string:
		return fmt.Sprintf("[%q]", key)
	case float64:
		return fmt.Sprintf("[%d]", int(key))
	case int:
		return fmt.Sprintf("[%d]", key)
	default:
		return fmt.Sprintf("[%v]", key)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ ports.StateSource = (*Source)(nil)
