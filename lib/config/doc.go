// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for capshim binaries.
//
// Configuration comes from at most one file, named by:
//   - the --config flag passed to the binary, or
//   - the CAPSHIM_CONFIG environment variable.
//
// There is no automatic discovery of config files. The file may be YAML
// (.yaml, .yml) or JSON with comments (.json, .jsonc). Unknown keys are
// rejected so that a misspelled setting fails loudly instead of being
// ignored.
//
// After the file is loaded, CAPSHIM_* environment variables override
// individual fields (CAPSHIM_MODULE_KIND, CAPSHIM_MODULE_PATH, and so
// on). A deployment can therefore run with no file at all and configure
// the delegated module purely from the environment. ${VAR} and
// ${VAR:-default} references in paths, the command, and the working
// directory are expanded last.
package config
