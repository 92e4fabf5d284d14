// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package delegate opens the delegated module described by a
// [config.ModuleConfig]: it checks the module digest when one is
// pinned, constructs the Lua or exec backend, and wraps the result
// with debug logging. It is the only package that knows about every
// backend, which keeps lib/capability free of backend imports.
package delegate
