// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"context"
	"log/slog"
	"time"
)

// WithLogging wraps module so that every call emits a debug record
// with the capability name, elapsed time, and outcome. kind labels the
// backend ("lua", "exec") in those records.
func WithLogging(module Module, kind string, logger *slog.Logger) Module {
	return &loggedModule{
		module: module,
		logger: logger.With("module_kind", kind),
	}
}

type loggedModule struct {
	module Module
	logger *slog.Logger
}

func (m *loggedModule) Decode(ctx context.Context, input any) (any, error) {
	start := time.Now()
	result, err := m.module.Decode(ctx, input)
	m.record(ctx, NameDecode, start, err)
	return result, err
}

func (m *loggedModule) Fingerprint(ctx context.Context) (string, error) {
	start := time.Now()
	result, err := m.module.Fingerprint(ctx)
	m.record(ctx, NameFingerprint, start, err)
	return result, err
}

func (m *loggedModule) Sign(ctx context.Context, tokenID, path, body string) (any, error) {
	start := time.Now()
	result, err := m.module.Sign(ctx, tokenID, path, body)
	m.record(ctx, NameSign, start, err)
	return result, err
}

func (m *loggedModule) Close() error {
	return m.module.Close()
}

func (m *loggedModule) record(ctx context.Context, capability string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		m.logger.DebugContext(ctx, "delegated call failed",
			"capability", capability,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	m.logger.DebugContext(ctx, "delegated call settled",
		"capability", capability,
		"elapsed", elapsed,
	)
}
