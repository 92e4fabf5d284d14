// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/capshim/lib/logging"
	"github.com/bureau-foundation/capshim/lib/modulehash"
)

// EnvConfig is the environment variable naming the config file.
const EnvConfig = "CAPSHIM_CONFIG"

// envPrefix prefixes every field override variable.
const envPrefix = "CAPSHIM_"

// Kind identifies how the delegated module is hosted.
type Kind string

const (
	// KindLua hosts a Lua script in-process (lib/capability/luamodule).
	KindLua Kind = "lua"
	// KindExec runs an external program per call (lib/capability/execmodule).
	KindExec Kind = "exec"
)

// Envelope codecs accepted by exec modules.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Config is the complete capshim configuration.
type Config struct {
	// Module selects and locates the delegated module.
	Module ModuleConfig `yaml:"module" json:"module" envPrefix:"MODULE_"`

	// Log configures the stderr logger.
	Log LogConfig `yaml:"log" json:"log" envPrefix:"LOG_"`
}

// ModuleConfig locates the delegated module.
type ModuleConfig struct {
	// Kind is lua or exec.
	Kind Kind `yaml:"kind" json:"kind" env:"KIND"`

	// Path is the Lua script for lua modules. For exec modules it is
	// the program to run when Command is empty.
	Path string `yaml:"path" json:"path" env:"PATH"`

	// Command is the argv of an exec module. The request envelope is
	// written to its stdin.
	Command []string `yaml:"command" json:"command" env:"COMMAND" envSeparator:" "`

	// Codec is the exec envelope encoding: json (default) or cbor.
	Codec string `yaml:"codec" json:"codec" env:"CODEC"`

	// Digest is an optional hex BLAKE3 module digest (see
	// lib/modulehash). When set, the module file must match it.
	Digest string `yaml:"digest" json:"digest" env:"DIGEST"`

	// Dir is the working directory of an exec module.
	Dir string `yaml:"dir" json:"dir" env:"DIR"`

	// Env holds extra KEY=VALUE entries for an exec module's
	// environment, appended to the inherited environment.
	Env []string `yaml:"env" json:"env"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: warn.
	Level string `yaml:"level" json:"level" env:"LEVEL"`

	// Format is auto, text, or json. Default: auto.
	Format string `yaml:"format" json:"format" env:"FORMAT"`
}

// Default returns the configuration used before any file or
// environment override is applied. It has no module: a module kind must
// come from the file or the environment.
func Default() *Config {
	return &Config{
		Module: ModuleConfig{
			Codec: CodecJSON,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: string(logging.FormatAuto),
		},
	}
}

// Load builds the configuration from path (or CAPSHIM_CONFIG when path
// is empty) and the process environment. A missing file name is not an
// error; a named file that cannot be read is.
func Load(path string) (*Config, error) {
	return LoadEnviron(path, environMap(os.Environ()))
}

// LoadEnviron is Load with an explicit environment, for tests and for
// callers that sanitize the environment.
func LoadEnviron(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = environ[EnvConfig]
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvironment(environ); err != nil {
		return nil, err
	}

	cfg.expandVariables(environ)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML or JSONC file over the current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(c); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty file is a valid (empty) configuration.
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvironment overrides fields from CAPSHIM_* variables. Fields
// whose variable is unset keep their current value.
func (c *Config) applyEnvironment(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// module location fields.
func (c *Config) expandVariables(environ map[string]string) {
	c.Module.Path = expandVars(c.Module.Path, environ)
	c.Module.Dir = expandVars(c.Module.Dir, environ)
	for i, argument := range c.Module.Command {
		c.Module.Command[i] = expandVars(argument, environ)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Module.Kind {
	case "":
		errs = append(errs, fmt.Errorf("module.kind is required (set it in the config file or %sMODULE_KIND)", envPrefix))
	case KindLua:
		if c.Module.Path == "" {
			errs = append(errs, fmt.Errorf("module.path is required for lua modules"))
		}
	case KindExec:
		switch {
		case len(c.Module.Command) == 0 && c.Module.Path == "":
			errs = append(errs, fmt.Errorf("module.command or module.path is required for exec modules"))
		case len(c.Module.Command) > 0 && c.Module.Path != "":
			errs = append(errs, fmt.Errorf("module.path and module.command are mutually exclusive for exec modules"))
		}
	default:
		errs = append(errs, fmt.Errorf("module.kind must be one of: %s, %s (got %q)", KindLua, KindExec, c.Module.Kind))
	}

	switch c.Module.Codec {
	case "", CodecJSON, CodecCBOR:
	default:
		errs = append(errs, fmt.Errorf("module.codec must be one of: %s, %s (got %q)", CodecJSON, CodecCBOR, c.Module.Codec))
	}

	if c.Module.Digest != "" {
		if _, err := modulehash.ParseDigest(c.Module.Digest); err != nil {
			errs = append(errs, fmt.Errorf("module.digest: %w", err))
		}
	}

	for _, entry := range c.Module.Env {
		if !strings.Contains(entry, "=") {
			errs = append(errs, fmt.Errorf("module.env entry %q is not KEY=VALUE", entry))
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: auto, text, json (got %q)", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Argv returns the argv of an exec module: Command when set, otherwise
// Path alone.
func (m *ModuleConfig) Argv() []string {
	if len(m.Command) > 0 {
		return m.Command
	}
	if m.Path != "" {
		return []string{m.Path}
	}
	return nil
}

// DigestTarget returns the file that Digest pins: Path when set,
// otherwise the exec program resolved through PATH. For exec modules
// this is always the program Argv runs, since Validate rejects a
// config that sets both.
func (m *ModuleConfig) DigestTarget() (string, error) {
	if m.Path != "" {
		return m.Path, nil
	}
	argv := m.Argv()
	if len(argv) == 0 {
		return "", fmt.Errorf("module has neither path nor command")
	}
	resolved, err := exec.LookPath(argv[0])
	if err != nil {
		return "", fmt.Errorf("resolving module program %q: %w", argv[0], err)
	}
	return resolved, nil
}

// environMap converts os.Environ output to a map.
func environMap(environ []string) map[string]string {
	result := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if found {
			result[key] = value
		}
	}
	return result
}
