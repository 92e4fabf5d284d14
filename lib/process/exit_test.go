// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("exit code %d", e.code) }
func (e *codedError) ExitCode() int { return e.code }

func TestExitUsesCode(t *testing.T) {
	var got []int
	saved := exitFunc
	exitFunc = func(code int) { got = append(got, code) }
	t.Cleanup(func() { exitFunc = saved })

	Exit(0)
	Exit(1)
	Exit(3)

	want := []int{0, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("exit calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("exit call %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "coded error", err: &codedError{code: 2}, want: 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExitCode(test.err); got != test.want {
				t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	Report(&buffer, errors.New("loading config: missing module.kind"))
	if got, want := buffer.String(), "error: loading config: missing module.kind\n"; got != want {
		t.Errorf("Report wrote %q, want %q", got, want)
	}
}
