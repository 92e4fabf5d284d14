// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// exitFunc is os.Exit, replaced in tests.
var exitFunc = os.Exit

// Exit terminates the process with code.
func Exit(code int) {
	exitFunc(code)
}

// Report writes "error: err" to w. Errors carrying their own exit code
// (see [ExitCode]) are still reported; callers that want silent exits
// check ExitCode first.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// ExitCode returns the code carried by err if it implements
// interface{ ExitCode() int }, or 1 otherwise. A nil error maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	return 1
}
