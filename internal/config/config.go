package config

import (
	"time"

	"coverage-auditor/internal/adapters/platform/azure"
	"coverage-auditor/internal/adapters/state/terraform"
	"coverage-auditor/internal/log"
	jsonreport "coverage-auditor/internal/reporting/json"
	"coverage-auditor/internal/reporting/text"
)

type Config struct {
	Settings SettingsConfig `yaml:"settings" mapstructure:"settings"`
	State    StateConfig    `yaml:"state" mapstructure:"state"`
	Platform PlatformConfig `yaml:"platform" mapstructure:"platform"`
}

type SettingsConfig struct {
	LogLevel     log.Level       `yaml:"log_level" mapstructure:"log_level"`
	LogFormat    log.Format      `yaml:"log_format" mapstructure:"log_format"`
	ReporterType string          `yaml:"reporter" mapstructure:"reporter"`
	Reporter     ReporterConfigs `yaml:"reporter_config" mapstructure:"reporter_config"`
	// ReadTimeout bounds each external read (state and inventory).
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

type StateConfig struct {
	Terraform *terraform.Config `yaml:"terraform,omitempty" mapstructure:"terraform" validate:"required"`
}

type PlatformConfig struct {
	Azure *azure.Config `yaml:"azure,omitempty" mapstructure:"azure" validate:"required"`
}

type ReporterConfigs struct {
	Text *text.Config       `yaml:"text,omitempty" mapstructure:"text"`
	JSON *jsonreport.Config `yaml:"json,omitempty" mapstructure:"json"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:     log.LevelInfo,
			LogFormat:    log.FormatText,
			ReporterType: text.ReporterTypeText,
			Reporter: ReporterConfigs{
				Text: &text.Config{NoColor: false},
			},
			ReadTimeout: 2 * time.Minute,
		},
		State: StateConfig{
			Terraform: &terraform.Config{WorkingDir: "."},
		},
		Platform: PlatformConfig{
			Azure: &azure.Config{},
		},
	}
}
