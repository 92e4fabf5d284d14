// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/capshim/lib/capability"
	"github.com/bureau-foundation/capshim/lib/process"
	"github.com/bureau-foundation/capshim/lib/shim"
)

var command = &shim.Command{
	Name:            "capshim-decode",
	Summary:         "decode a JSON document with the delegated module",
	Arguments:       "<json-string>",
	ExecutionPrefix: shim.PrefixExecution,
	Run: func(ctx context.Context, args []string, streams shim.Streams, module capability.Module) int {
		return shim.Decode(ctx, args, streams, module)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := command.Execute(ctx, os.Args[1:], shim.Streams{Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	process.Exit(code)
}
