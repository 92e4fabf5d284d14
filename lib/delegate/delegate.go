// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delegate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/capshim/lib/capability"
	"github.com/bureau-foundation/capshim/lib/capability/execmodule"
	"github.com/bureau-foundation/capshim/lib/capability/luamodule"
	"github.com/bureau-foundation/capshim/lib/config"
	"github.com/bureau-foundation/capshim/lib/modulehash"
)

// Open verifies and loads the module. A digest mismatch fails before
// any module code runs. The caller must Close the returned module.
func Open(ctx context.Context, cfg config.ModuleConfig, logger *slog.Logger) (capability.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Digest != "" {
		target, err := cfg.DigestTarget()
		if err != nil {
			return nil, err
		}
		if err := modulehash.Verify(target, cfg.Digest); err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "module digest verified", "file", target)
	}

	var module capability.Module
	switch cfg.Kind {
	case config.KindLua:
		loaded, err := luamodule.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "lua module loaded", "path", cfg.Path, "exports", loaded.Exports())
		module = loaded
	case config.KindExec:
		loaded, err := execmodule.New(execmodule.Options{
			Argv:  cfg.Argv(),
			Codec: cfg.Codec,
			Dir:   cfg.Dir,
			Env:   cfg.Env,
		})
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "exec module configured", "argv", cfg.Argv(), "codec", cfg.Codec)
		module = loaded
	default:
		return nil, fmt.Errorf("unknown module kind %q", cfg.Kind)
	}

	return capability.WithLogging(module, string(cfg.Kind), logger), nil
}
