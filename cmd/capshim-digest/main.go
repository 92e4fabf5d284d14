// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/capshim/lib/modulehash"
	"github.com/bureau-foundation/capshim/lib/process"
	"github.com/bureau-foundation/capshim/lib/version"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		process.Report(os.Stderr, err)
	}
	process.Exit(process.ExitCode(err))
}

func run(args []string, stdout, stderr io.Writer) error {
	var check string
	var showVersion bool

	flagSet := pflag.NewFlagSet("capshim-digest", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&check, "check", "", "verify the file against this hex digest instead of printing")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprint(stderr, "Usage:\n  capshim-digest [--check <hex>] <module-file>\n\nFlags:\n")
		flagSet.SetOutput(stderr)
		flagSet.PrintDefaults()
		return nil
	}
	if showVersion {
		version.Fprint(stdout, "capshim-digest")
		return nil
	}

	if flagSet.NArg() != 1 {
		return errors.New("exactly one module file is required")
	}
	path := flagSet.Arg(0)

	if check != "" {
		if err := modulehash.Verify(path, check); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: OK\n", path)
		return nil
	}

	digest, err := modulehash.HashFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, digest)
	return nil
}
