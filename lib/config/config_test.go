// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Module.Kind != "" {
		t.Errorf("expected no default module kind, got %q", cfg.Module.Kind)
	}
	if cfg.Module.Codec != CodecJSON {
		t.Errorf("expected codec=json, got %q", cfg.Module.Codec)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "capshim.yaml", `
module:
  kind: exec
  command: [node, /opt/capshim/bridge.js]
  codec: cbor
  dir: /opt/capshim
  env:
    - NODE_OPTIONS=--no-warnings
log:
  level: debug
  format: json
`)

	cfg, err := LoadEnviron(path, map[string]string{})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}

	if cfg.Module.Kind != KindExec {
		t.Errorf("kind = %q, want exec", cfg.Module.Kind)
	}
	if got := strings.Join(cfg.Module.Command, " "); got != "node /opt/capshim/bridge.js" {
		t.Errorf("command = %q", got)
	}
	if cfg.Module.Codec != CodecCBOR {
		t.Errorf("codec = %q, want cbor", cfg.Module.Codec)
	}
	if cfg.Module.Dir != "/opt/capshim" {
		t.Errorf("dir = %q", cfg.Module.Dir)
	}
	if len(cfg.Module.Env) != 1 || cfg.Module.Env[0] != "NODE_OPTIONS=--no-warnings" {
		t.Errorf("env = %v", cfg.Module.Env)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadJSONC(t *testing.T) {
	path := writeConfig(t, "capshim.jsonc", `{
  // Lua module shipped alongside the binaries.
  "module": {
    "kind": "lua",
    "path": "/opt/capshim/module.lua", /* trailing comment */
  },
}`)

	cfg, err := LoadEnviron(path, map[string]string{})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}
	if cfg.Module.Kind != KindLua || cfg.Module.Path != "/opt/capshim/module.lua" {
		t.Errorf("module = %+v", cfg.Module)
	}
	if cfg.Module.Codec != CodecJSON {
		t.Errorf("codec default lost: %q", cfg.Module.Codec)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "c.yaml", content: "module:\n  kind: lua\n  path: m.lua\n  pth: typo\n"},
		{name: "jsonc", file: "c.jsonc", content: `{"module": {"kind": "lua", "path": "m.lua", "pth": "typo"}}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfig(t, test.file, test.content)
			if _, err := LoadEnviron(path, map[string]string{}); err == nil {
				t.Fatal("expected error for unknown key, got nil")
			}
		})
	}
}

func TestLoadFromEnvConfigVariable(t *testing.T) {
	path := writeConfig(t, "capshim.yml", "module:\n  kind: lua\n  path: /m.lua\n")

	cfg, err := LoadEnviron("", map[string]string{EnvConfig: path})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}
	if cfg.Module.Path != "/m.lua" {
		t.Errorf("path = %q, want /m.lua", cfg.Module.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := LoadEnviron(missing, map[string]string{}); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestEnvironmentOnly(t *testing.T) {
	cfg, err := LoadEnviron("", map[string]string{
		"CAPSHIM_MODULE_KIND":    "exec",
		"CAPSHIM_MODULE_COMMAND": "python3 -u bridge.py",
		"CAPSHIM_LOG_LEVEL":      "info",
	})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}
	if cfg.Module.Kind != KindExec {
		t.Errorf("kind = %q, want exec", cfg.Module.Kind)
	}
	if got := cfg.Module.Command; len(got) != 3 || got[0] != "python3" || got[2] != "bridge.py" {
		t.Errorf("command = %q", got)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "capshim.yaml", `
module:
  kind: lua
  path: /file/module.lua
log:
  level: error
`)

	cfg, err := LoadEnviron(path, map[string]string{
		"CAPSHIM_MODULE_PATH": "/env/module.lua",
	})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}
	if cfg.Module.Path != "/env/module.lua" {
		t.Errorf("path = %q, want env override", cfg.Module.Path)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want file value kept", cfg.Log.Level)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/capshim",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/capshim",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestLoadExpandsModuleLocation(t *testing.T) {
	path := writeConfig(t, "capshim.yaml", `
module:
  kind: exec
  command: ["${CAPSHIM_HOME}/bin/bridge", "--mode=${MODE:-strict}"]
  dir: ${CAPSHIM_HOME}
`)
	cfg, err := LoadEnviron(path, map[string]string{"CAPSHIM_HOME": "/srv/capshim"})
	if err != nil {
		t.Fatalf("LoadEnviron() failed: %v", err)
	}
	if cfg.Module.Command[0] != "/srv/capshim/bin/bridge" || cfg.Module.Command[1] != "--mode=strict" {
		t.Errorf("command = %q", cfg.Module.Command)
	}
	if cfg.Module.Dir != "/srv/capshim" {
		t.Errorf("dir = %q", cfg.Module.Dir)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Module.Kind = KindLua
		cfg.Module.Path = "/m.lua"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid lua config", modify: func(c *Config) {}},
		{name: "missing kind", modify: func(c *Config) { c.Module.Kind = "" }, wantErr: true},
		{name: "unknown kind", modify: func(c *Config) { c.Module.Kind = "wasm" }, wantErr: true},
		{name: "lua without path", modify: func(c *Config) { c.Module.Path = "" }, wantErr: true},
		{
			name: "exec with path only",
			modify: func(c *Config) {
				c.Module.Kind = KindExec
			},
		},
		{
			name: "exec with command only",
			modify: func(c *Config) {
				c.Module.Kind = KindExec
				c.Module.Path = ""
				c.Module.Command = []string{"node", "bridge.js"}
			},
		},
		{
			name: "exec with both command and path",
			modify: func(c *Config) {
				c.Module.Kind = KindExec
				c.Module.Command = []string{"node", "bridge.js"}
			},
			wantErr: true,
		},
		{
			name: "exec without command or path",
			modify: func(c *Config) {
				c.Module.Kind = KindExec
				c.Module.Path = ""
			},
			wantErr: true,
		},
		{name: "bad codec", modify: func(c *Config) { c.Module.Codec = "msgpack" }, wantErr: true},
		{name: "bad digest", modify: func(c *Config) { c.Module.Digest = "xyz" }, wantErr: true},
		{name: "bad env entry", modify: func(c *Config) { c.Module.Env = []string{"NOEQUALS"} }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad log format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsExecPathWithCommand(t *testing.T) {
	path := writeConfig(t, "capshim.yaml", `
module:
  kind: exec
  command: [node, /opt/capshim/bridge.js]
`)
	_, err := LoadEnviron(path, map[string]string{"CAPSHIM_MODULE_PATH": "/opt/capshim/other"})
	if err == nil {
		t.Fatal("LoadEnviron() succeeded with both path and command, want error")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("LoadEnviron() error = %v, want mutually exclusive error", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Module.Codec = "msgpack"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() succeeded, want error")
	}
	for _, fragment := range []string{"module.kind", "module.codec", "log.level"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Validate() error %q does not mention %s", err, fragment)
		}
	}
}

func TestArgvAndDigestTarget(t *testing.T) {
	module := ModuleConfig{Kind: KindExec, Path: "/opt/bridge"}
	if argv := module.Argv(); len(argv) != 1 || argv[0] != "/opt/bridge" {
		t.Errorf("Argv() = %q, want [/opt/bridge]", argv)
	}
	target, err := module.DigestTarget()
	if err != nil || target != "/opt/bridge" {
		t.Errorf("DigestTarget() = %q, %v", target, err)
	}

	script := writeConfig(t, "bridge", "#!/bin/sh\n")
	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	module = ModuleConfig{Kind: KindExec, Command: []string{script, "--flag"}}
	target, err = module.DigestTarget()
	if err != nil {
		t.Fatalf("DigestTarget() failed: %v", err)
	}
	if target != script {
		t.Errorf("DigestTarget() = %q, want %q", target, script)
	}
}
