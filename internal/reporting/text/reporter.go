package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"coverage-auditor/internal/core/domain"
	"coverage-auditor/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, report *domain.CoverageReport) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(r.writer, "Coverage Audit Report")
	fmt.Fprintln(r.writer, "=====================")

	coverage := fmt.Sprintf("%.2f%%", report.CoveragePercentage)
	switch {
	case report.CoveragePercentage >= 100:
		coverage = green(coverage)
	case report.CoveragePercentage >= 50:
		coverage = yellow(coverage)
	default:
		coverage = red(coverage)
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Live resources in scope:\t%d\n", report.TotalLive)
	fmt.Fprintf(tw, "Declared resources in state:\t%d\n", report.TotalDeclared)
	fmt.Fprintf(tw, "Managed (matched):\t%d\n", report.ManagedCount)
	fmt.Fprintf(tw, "Coverage:\t%s\n", coverage)
	tw.Flush()

	if len(report.Matched) > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", cyan("Managed resources"))
		mw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
		fmt.Fprintln(mw, "Address\tLive name\tConfidence\tMethod")
		for _, m := range report.Matched {
			confidence := string(m.Confidence)
			if m.Confidence == domain.ConfidenceHigh {
				confidence = green(confidence)
			} else {
				confidence = yellow(confidence)
			}
			fmt.Fprintf(mw, "%s\t%s\t%s\t%s\n", m.Address, m.LiveName, confidence, m.Method)
		}
		mw.Flush()
	}

	if len(report.Missing) > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", red(fmt.Sprintf("Missing from Terraform (%d)", len(report.Missing))))
		mw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
		fmt.Fprintln(mw, "Name\tType\tLocation\tImport directive")
		for _, m := range report.Missing {
			fmt.Fprintf(mw, "%s\t%s\t%s\t%s\n", m.Name, m.Type, m.Location, m.ImportDirective)
		}
		mw.Flush()
	}

	if len(report.Orphaned) > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", yellow(fmt.Sprintf("Orphaned in state (%d)", len(report.Orphaned))))
		ow := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
		fmt.Fprintln(ow, "Address\tType\tName")
		for _, o := range report.Orphaned {
			fmt.Fprintf(ow, "%s\t%s\t%s\n", o.Address, o.DeclaredType, o.DeclaredName)
		}
		ow.Flush()
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", cyan("Recommendations"))
		for _, rec := range report.Recommendations {
			fmt.Fprintf(r.writer, "  - %s\n", rec)
		}
	}

	r.logger.Debugf(ctx, "Text report successfully generated.")
	return nil
}

var _ ports.Reporter = (*Reporter)(nil)
