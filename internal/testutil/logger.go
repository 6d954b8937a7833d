// Package testutil holds tiny shared test doubles.
package testutil

import (
	"context"

	"coverage-auditor/internal/core/ports"
)

// NopLogger discards everything; it keeps table tests quiet without
// dragging a real handler into them.
type NopLogger struct{}

func (NopLogger) Debugf(context.Context, string, ...any)        {}
func (NopLogger) Infof(context.Context, string, ...any)         {}
func (NopLogger) Warnf(context.Context, string, ...any)         {}
func (NopLogger) Errorf(context.Context, error, string, ...any) {}
func (n NopLogger) WithFields(map[string]any) ports.Logger      { return n }

var _ ports.Logger = NopLogger{}
