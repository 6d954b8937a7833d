package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"coverage-auditor/internal/adapters/matching/hybrid"
	"coverage-auditor/internal/adapters/platform/azure"
	"coverage-auditor/internal/adapters/state/terraform"
	"coverage-auditor/internal/config"
	"coverage-auditor/internal/core/ports"
	"coverage-auditor/internal/core/service"
	"coverage-auditor/internal/errors"
	"coverage-auditor/internal/log"
	jsonreport "coverage-auditor/internal/reporting/json"
	"coverage-auditor/internal/reporting/text"
)

type BootstrapResult struct {
	Engine   ports.AuditEngine
	Reporter ports.Reporter
	Logger   ports.Logger
	Config   *config.Config
}

// BuildApplicationFromViper assembles the full dependency graph: config,
// logger, both audit capabilities, matcher, engine, and reporter. All
// wiring is explicit; nothing here is process-global.
func BuildApplicationFromViper(ctx context.Context, v *viper.Viper) (*BootstrapResult, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigParseError, "failed to unmarshal configuration")
	}

	logCfg := log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat}
	logger, err := log.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	logger.Infof(ctx, "Logger initialized (Level: %s, Format: %s)", cfg.Settings.LogLevel, cfg.Settings.LogFormat)
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(ctx, cfg); err != nil {
		var details strings.Builder
		details.WriteString("Configuration validation failed:")
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range validationErrors {
				details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		}
		wrappedErr := errors.NewUserFacing(errors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
		logger.Errorf(ctx, wrappedErr, "Configuration validation failed")
		return nil, wrappedErr
	}

	stateSource, err := terraform.NewSource(*cfg.State.Terraform, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize terraform state source")
	}
	logger.Infof(ctx, "Using terraform state source: %s", cfg.State.Terraform.WorkingDir)

	// Credential bootstrapping follows the standard Azure chain
	// (environment service principal, workload identity, CLI session).
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"failed to acquire Azure credentials",
			"Run 'az login' or set ARM_CLIENT_ID, ARM_CLIENT_SECRET and ARM_TENANT_ID.")
	}

	inventorySource, err := azure.NewProvider(*cfg.Platform.Azure, cred, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to initialize azure inventory source")
	}
	logger.Infof(ctx, "Using azure inventory source (%d subscriptions configured)", len(cfg.Platform.Azure.Subscriptions))

	matcher := hybrid.NewMatcher(logger)

	engine, err := service.NewCoverageAuditEngine(stateSource, inventorySource, matcher, logger)
	if err != nil {
		return nil, err
	}

	reporter, err := buildReporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{
		Engine:   engine,
		Reporter: reporter,
		Logger:   logger,
		Config:   cfg,
	}, nil
}

func buildReporter(cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText, "":
		textCfg := text.Config{}
		if cfg.Settings.Reporter.Text != nil {
			textCfg = *cfg.Settings.Reporter.Text
		}
		return text.NewReporter(textCfg, logger)
	case jsonreport.ReporterTypeJSON:
		jsonCfg := jsonreport.Config{}
		if cfg.Settings.Reporter.JSON != nil {
			jsonCfg = *cfg.Settings.Reporter.JSON
		}
		return jsonreport.NewReporter(jsonCfg, logger)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported reporter type %q", cfg.Settings.ReporterType),
			"Use 'text' or 'json'.")
	}
}
