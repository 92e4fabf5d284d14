// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package shim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/capshim/lib/capability"
	"github.com/bureau-foundation/capshim/lib/config"
	"github.com/bureau-foundation/capshim/lib/delegate"
	"github.com/bureau-foundation/capshim/lib/logging"
	"github.com/bureau-foundation/capshim/lib/process"
	"github.com/bureau-foundation/capshim/lib/version"
)

// Command is the shared main of the capshim binaries: flags, config,
// module loading, then one runner.
type Command struct {
	// Name is the binary name, used in help and --version output.
	Name string

	// Summary is the one-line description shown in help.
	Summary string

	// Arguments is the positional synopsis, e.g. "<json-string>".
	Arguments string

	// ExecutionPrefix precedes module loading failures on stderr, so
	// they read like the runner's own execution failures.
	ExecutionPrefix string

	// Run is the contract runner (Decode, Fingerprint, or Session).
	Run func(ctx context.Context, args []string, streams Streams, module capability.Module) int
}

// Execute runs the command with args (excluding the program name) and
// returns the process exit code.
func (c *Command) Execute(ctx context.Context, args []string, streams Streams) int {
	var configPath string
	var showVersion bool
	var verbose bool

	flagSet := pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "config file (YAML or JSONC); default $"+config.EnvConfig)
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "with --version, include Go version and platform")
	flagSet.BoolP("help", "h", false, "show help")

	limit := leadingFlags(flagSet, args)
	if err := flagSet.Parse(args[:limit]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.printHelp(streams.Stderr, flagSet)
			return ExitSuccess
		}
		process.Report(streams.Stderr, err)
		return ExitFailure
	}
	if help, _ := flagSet.GetBool("help"); help {
		c.printHelp(streams.Stderr, flagSet)
		return ExitSuccess
	}
	if showVersion {
		if verbose {
			version.FprintFull(streams.Stdout, c.Name)
		} else {
			version.Fprint(streams.Stdout, c.Name)
		}
		return ExitSuccess
	}
	positional := append(flagSet.Args(), args[limit:]...)

	cfg, err := config.Load(configPath)
	if err != nil {
		process.Report(streams.Stderr, err)
		return ExitFailure
	}

	logger, err := logging.NewWriter(streams.Stderr, logging.Options{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
	})
	if err != nil {
		process.Report(streams.Stderr, err)
		return ExitFailure
	}

	module, err := delegate.Open(ctx, cfg.Module, logger)
	if err != nil {
		return fail(streams, c.ExecutionPrefix+"loading module: "+err.Error())
	}
	defer func() {
		if err := module.Close(); err != nil {
			logger.Warn("closing module failed", "error", err)
		}
	}()

	return c.Run(ctx, positional, streams, module)
}

// leadingFlags returns how many leading arguments are this command's
// own flags (with their values), including a terminating "--". Parsing
// stops at the first argument that is not a known flag, so positional
// values such as "-1" or "-abc" are never read as flags.
func leadingFlags(flagSet *pflag.FlagSet, args []string) int {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return i + 1
		}

		var flag *pflag.Flag
		inlineValue := false
		switch {
		case strings.HasPrefix(arg, "--"):
			var name string
			name, _, inlineValue = strings.Cut(arg[2:], "=")
			flag = flagSet.Lookup(name)
		case len(arg) == 2 && arg[0] == '-':
			flag = flagSet.ShorthandLookup(arg[1:])
		}
		if flag == nil {
			return i
		}
		// Flags without a default for the bare form take the next
		// argument as their value.
		if !inlineValue && flag.NoOptDefVal == "" {
			i++
		}
	}
	return len(args)
}

func (c *Command) printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "%s: %s\n\nUsage:\n  %s [flags] %s\n\n", c.Name, c.Summary, c.Name, c.Arguments)
	fmt.Fprint(w, `The delegated module is selected by the config file or by the
CAPSHIM_MODULE_KIND, CAPSHIM_MODULE_PATH, and CAPSHIM_MODULE_COMMAND
environment variables.

Flags are read only before the first positional argument. Use "--" to
pass a positional argument that matches a flag name.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
