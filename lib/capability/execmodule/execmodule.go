// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package execmodule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bureau-foundation/capshim/lib/capability"
	"github.com/bureau-foundation/capshim/lib/codec"
)

// Codec names accepted by [Options].
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Options describes the program to run.
type Options struct {
	// Argv is the program and its arguments. Required.
	Argv []string

	// Codec is CodecJSON (the default when empty) or CodecCBOR.
	Codec string

	// Dir is the working directory. Empty inherits the caller's.
	Dir string

	// Env holds KEY=VALUE entries appended to the inherited environment.
	Env []string
}

// Request envelopes, one per capability. Every field is always
// present: a null input and empty strings reach the program as such.

// DecodeRequest is written for decode calls.
type DecodeRequest struct {
	Capability string `json:"capability" cbor:"capability"`
	Input      any    `json:"input" cbor:"input"`
}

// FingerprintRequest is written for fingerprint calls.
type FingerprintRequest struct {
	Capability string `json:"capability" cbor:"capability"`
}

// SignRequest is written for sign calls.
type SignRequest struct {
	Capability string `json:"capability" cbor:"capability"`
	TokenID    string `json:"token_id" cbor:"token_id"`
	Path       string `json:"path" cbor:"path"`
	Body       string `json:"body" cbor:"body"`
}

// Response is the envelope read from the program's stdout.
type Response struct {
	Result any    `json:"result" cbor:"result"`
	Error  string `json:"error,omitempty" cbor:"error,omitempty"`
}

// Module runs a program per capability call. It holds no process
// between calls and is safe for concurrent use.
type Module struct {
	argv  []string
	codec string
	dir   string
	env   []string
}

var _ capability.Module = (*Module)(nil)

// New validates options and returns a Module. The program is not
// started until the first call.
func New(options Options) (*Module, error) {
	if len(options.Argv) == 0 || options.Argv[0] == "" {
		return nil, errors.New("execmodule: empty argv")
	}
	codecName := options.Codec
	if codecName == "" {
		codecName = CodecJSON
	}
	if codecName != CodecJSON && codecName != CodecCBOR {
		return nil, fmt.Errorf("execmodule: unknown codec %q", options.Codec)
	}
	return &Module{
		argv:  append([]string(nil), options.Argv...),
		codec: codecName,
		dir:   options.Dir,
		env:   append([]string(nil), options.Env...),
	}, nil
}

// Decode sends {"capability":"decode","input":input}.
func (m *Module) Decode(ctx context.Context, input any) (any, error) {
	if m.codec == CodecCBOR {
		converted, err := cborValue(input)
		if err != nil {
			return nil, capability.Failed(capability.NameDecode, fmt.Errorf("encoding request: %w", err))
		}
		input = converted
	}
	return m.call(ctx, capability.NameDecode, DecodeRequest{Capability: capability.NameDecode, Input: input})
}

// Fingerprint sends {"capability":"fingerprint"}. The result must be a
// string.
func (m *Module) Fingerprint(ctx context.Context) (string, error) {
	result, err := m.call(ctx, capability.NameFingerprint, FingerprintRequest{Capability: capability.NameFingerprint})
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", capability.Failed(capability.NameFingerprint,
			fmt.Errorf("result is %T, want string", result))
	}
	return text, nil
}

// Sign sends the three opaque strings as token_id, path, and body.
func (m *Module) Sign(ctx context.Context, tokenID, path, body string) (any, error) {
	return m.call(ctx, capability.NameSign, SignRequest{
		Capability: capability.NameSign,
		TokenID:    tokenID,
		Path:       path,
		Body:       body,
	})
}

// Close is a no-op: no process outlives a call.
func (m *Module) Close() error { return nil }

// call runs the program once with request as its stdin envelope.
func (m *Module) call(ctx context.Context, name string, request any) (any, error) {
	payload, err := m.encode(request)
	if err != nil {
		return nil, capability.Failed(name, fmt.Errorf("encoding request: %w", err))
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, m.argv[0], m.argv[1:]...)
	command.Stdin = bytes.NewReader(payload)
	command.Stdout = &stdout
	command.Stderr = &stderr
	command.Dir = m.dir
	if len(m.env) > 0 {
		command.Env = append(os.Environ(), m.env...)
	}

	if err := command.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, capability.Failed(name, fmt.Errorf("%s: %w (stderr: %s)",
			m.argv[0], err, strings.TrimSpace(stderr.String())))
	}

	response, err := m.decode(stdout.Bytes())
	if err != nil {
		return nil, capability.Failed(name, fmt.Errorf("%s: %w", m.argv[0], err))
	}
	if response.Error != "" {
		return nil, capability.Failed(name, errors.New(response.Error))
	}
	return response.Result, nil
}

func (m *Module) encode(request any) ([]byte, error) {
	if m.codec == CodecCBOR {
		return codec.Marshal(request)
	}
	return json.Marshal(request)
}

// cborValue replaces json.Number values (a string type, which CBOR
// would encode as text) with int64 or float64.
func cborValue(value any) (any, error) {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer, nil
		}
		number, err := typed.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", typed, err)
		}
		return number, nil
	case []any:
		converted := make([]any, len(typed))
		for i, element := range typed {
			item, err := cborValue(element)
			if err != nil {
				return nil, err
			}
			converted[i] = item
		}
		return converted, nil
	case map[string]any:
		converted := make(map[string]any, len(typed))
		for key, element := range typed {
			item, err := cborValue(element)
			if err != nil {
				return nil, err
			}
			converted[key] = item
		}
		return converted, nil
	default:
		return value, nil
	}
}

// decode parses exactly one response envelope from data.
func (m *Module) decode(data []byte) (Response, error) {
	var response Response
	if len(bytes.TrimSpace(data)) == 0 {
		return response, errors.New("empty response")
	}

	if m.codec == CodecCBOR {
		if err := codec.Unmarshal(data, &response); err != nil {
			diagnostic, diagErr := codec.Diagnose(data)
			if diagErr != nil {
				return response, fmt.Errorf("decoding CBOR response: %w", err)
			}
			return response, fmt.Errorf("decoding CBOR response %s: %w", diagnostic, err)
		}
		return response, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&response); err != nil {
		return response, fmt.Errorf("decoding JSON response: %w", err)
	}
	if decoder.More() {
		return response, errors.New("decoding JSON response: trailing data after envelope")
	}
	return response, nil
}
