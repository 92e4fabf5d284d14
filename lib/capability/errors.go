// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"errors"
	"fmt"
)

// ErrUnsupported is matched (via errors.Is) by failures of capabilities
// a module does not export.
var ErrUnsupported = errors.New("capability not exported by module")

// ExecutionError is a failure reported by, or while reaching, a
// delegated capability.
type ExecutionError struct {
	// Capability is one of NameDecode, NameFingerprint, NameSign.
	Capability string

	// Err is the underlying failure.
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Failed wraps err as an [*ExecutionError] for capability. A nil err
// returns nil.
func Failed(capability string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Capability: capability, Err: err}
}

// Unsupported returns the error for a capability the module does not
// export.
func Unsupported(capability string) error {
	return &ExecutionError{Capability: capability, Err: ErrUnsupported}
}
