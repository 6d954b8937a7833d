package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coverage-auditor/internal/app"
	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
	apperrors "coverage-auditor/internal/errors"
)

var (
	cfgFile         string
	logLevel        string
	logFormat       string
	workspace       string
	scopeKind       string
	scopeValue      string
	includeMissing  bool
	includeOrphaned bool
	reporterType    string
	readTimeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "coverage-auditor",
	Short: "Audits how much of a live Azure environment is managed by Terraform.",
	Long: `Coverage Auditor compares the resources present in an Azure scope
(a resource group, a subscription, or a custom Resource Graph query)
against the resources declared in a Terraform workspace's state, and
reports unmanaged resources, orphaned state entries, and overall coverage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		result, bootstrapErr := app.BuildApplicationFromViper(cmd.Context(), viper.GetViper())
		if bootstrapErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Application initialization failed: %v\n", bootstrapErr)
			if appErr := (*apperrors.AppError)(nil); errors.As(bootstrapErr, &appErr) {
				if appErr.IsUserFacing {
					fmt.Fprintf(os.Stderr, "Error Details: %s\n", appErr.Message)
					if appErr.SuggestedAction != "" {
						fmt.Fprintf(os.Stderr, "Suggestion: %s\n", appErr.SuggestedAction)
					}
				}
			}
			return bootstrapErr
		}

		timeout := readTimeout
		if timeout <= 0 {
			timeout = result.Config.Settings.ReadTimeout
		}
		req := ports.AuditRequest{
			Scope: domain.Scope{
				Kind:  domain.ScopeKind(scopeKind),
				Value: scopeValue,
			},
			IncludeMissing:  includeMissing,
			IncludeOrphaned: includeOrphaned,
			Timeout:         timeout,
		}

		application := app.NewApplication(result.Engine, result.Reporter, result.Logger)
		runErr := application.Run(cmd.Context(), req)
		if runErr != nil {
			userMsg, suggestion, _ := apperrors.GetUserFacingMessage(runErr)
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
			if suggestion != "" {
				fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
			}
			return runErr
		}
		return nil
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is config.yaml or .coverage-auditor.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override log format (text, json)")
	rootCmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Terraform workspace directory to audit")
	rootCmd.Flags().StringVar(&scopeKind, "scope", string(domain.ScopeResourceGroup), "Audit scope: resource-group, subscription, or query")
	rootCmd.Flags().StringVar(&scopeValue, "scope-value", "", "Resource group name, subscription ID, or Resource Graph predicate")
	rootCmd.Flags().BoolVar(&includeMissing, "include-missing", true, "Include resources missing from Terraform in the report")
	rootCmd.Flags().BoolVar(&includeOrphaned, "include-orphaned", true, "Include orphaned Terraform state entries in the report")
	rootCmd.Flags().StringVar(&reporterType, "reporter", "", "Report format (text, json)")
	rootCmd.Flags().DurationVar(&readTimeout, "timeout", 0, "Timeout for each external read (default from config)")

	viper.BindPFlag("settings.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("settings.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("settings.reporter", rootCmd.Flags().Lookup("reporter"))
	viper.BindPFlag("state.terraform.working_dir", rootCmd.Flags().Lookup("workspace"))

	viper.SetEnvPrefix("COVERAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".coverage-auditor")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using configuration file:", viper.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintln(os.Stderr, "Config file not found, using defaults and environment variables.")
		} else {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}

	return nil
}
