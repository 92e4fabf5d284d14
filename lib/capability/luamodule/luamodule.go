// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package luamodule

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/bureau-foundation/capshim/lib/capability"
	"github.com/bureau-foundation/capshim/lib/modulefile"
)

// moduleIndex is the stack slot holding the table the script returned.
// It stays at the bottom of the stack for the lifetime of the state.
const moduleIndex = 1

// Module is a loaded Lua module.
type Module struct {
	mu     sync.Mutex
	state  *lua.State
	name   string
	closed bool
}

var _ capability.Module = (*Module)(nil)

// Open loads and evaluates the Lua script at path, which may be
// zstd or LZ4 compressed (see lib/modulefile).
func Open(path string) (*Module, error) {
	source, err := modulefile.Read(path)
	if err != nil {
		return nil, err
	}
	name := modulefile.SourceName(path)
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadBuffer(state, string(source), "@"+name, ""); err != nil {
		return nil, fmt.Errorf("loading lua module %s: %w", name, loadError(state, err))
	}
	return initialize(state, name)
}

// OpenSource evaluates source as a Lua module. name appears in Lua
// error positions.
func OpenSource(name, source string) (*Module, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("loading lua module %s: %w", name, loadError(state, err))
	}
	return initialize(state, name)
}

// initialize runs the loaded chunk and keeps the returned table at
// moduleIndex.
func initialize(state *lua.State, name string) (*Module, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("evaluating lua module %s: %w", name, callError(state, 0, err))
	}
	if state.TypeOf(-1) != lua.TypeTable {
		kind := typeName(state.TypeOf(-1))
		return nil, fmt.Errorf("lua module %s must return a table, got %s", name, kind)
	}
	return &Module{state: state, name: name}, nil
}

// Exports reports which capabilities the module defines as functions.
func (m *Module) Exports() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}

	var names []string
	for _, name := range []string{capability.NameDecode, capability.NameFingerprint, capability.NameSign} {
		m.state.Field(moduleIndex, name)
		if m.state.IsFunction(-1) {
			names = append(names, name)
		}
		m.state.Pop(1)
	}
	return names
}

// Decode calls the module's decode(value).
func (m *Module) Decode(ctx context.Context, input any) (any, error) {
	var result any
	err := m.call(ctx, capability.NameDecode, []any{input}, func(state *lua.State) error {
		var convertErr error
		result, convertErr = toGo(state, -1, 0)
		return convertErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Fingerprint calls the module's fingerprint(). The result must be a
// string (numbers are formatted by Lua's own rules).
func (m *Module) Fingerprint(ctx context.Context) (string, error) {
	var result string
	err := m.call(ctx, capability.NameFingerprint, nil, func(state *lua.State) error {
		switch state.TypeOf(-1) {
		case lua.TypeString, lua.TypeNumber:
			result, _ = state.ToString(-1)
			return nil
		default:
			return fmt.Errorf("fingerprint returned %s, want string", typeName(state.TypeOf(-1)))
		}
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// Sign calls the module's sign(tokenId, path, body).
func (m *Module) Sign(ctx context.Context, tokenID, path, body string) (any, error) {
	var result any
	err := m.call(ctx, capability.NameSign, []any{tokenID, path, body}, func(state *lua.State) error {
		var convertErr error
		result, convertErr = toGo(state, -1, 0)
		return convertErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close releases the Lua state. Further calls fail.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.state = nil
	return nil
}

// call pushes the named function and args, runs it with one result,
// and hands the result (at the stack top) to collect. The Lua
// interpreter cannot be interrupted, so ctx is only checked before the
// call starts.
func (m *Module) call(ctx context.Context, name string, args []any, collect func(*lua.State) error) error {
	if err := ctx.Err(); err != nil {
		return capability.Failed(name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return capability.Failed(name, fmt.Errorf("lua module %s is closed", m.name))
	}

	state := m.state
	defer state.SetTop(moduleIndex)

	state.Field(moduleIndex, name)
	if !state.IsFunction(-1) {
		return capability.Unsupported(name)
	}
	for i, arg := range args {
		if err := pushGo(state, arg, 0); err != nil {
			return capability.Failed(name, fmt.Errorf("argument %d: %w", i+1, err))
		}
	}
	if err := state.ProtectedCall(len(args), 1, 0); err != nil {
		return capability.Failed(name, callError(state, moduleIndex, err))
	}
	if err := collect(state); err != nil {
		return capability.Failed(name, err)
	}
	return nil
}

// callError extracts the Lua error message left on the stack above
// base by a failed protected call, falling back to err itself.
func callError(state *lua.State, base int, err error) error {
	if state.Top() > base && state.TypeOf(-1) == lua.TypeString {
		if message, ok := state.ToString(-1); ok && message != "" {
			return fmt.Errorf("%s", message)
		}
	}
	return err
}

// loadError extracts a syntax error message from the stack.
func loadError(state *lua.State, err error) error {
	return callError(state, 0, err)
}

func typeName(t lua.Type) string {
	switch t {
	case lua.TypeNone:
		return "no value"
	case lua.TypeNil:
		return "nil"
	case lua.TypeBoolean:
		return "boolean"
	case lua.TypeLightUserData, lua.TypeUserData:
		return "userdata"
	case lua.TypeNumber:
		return "number"
	case lua.TypeString:
		return "string"
	case lua.TypeTable:
		return "table"
	case lua.TypeFunction:
		return "function"
	case lua.TypeThread:
		return "thread"
	default:
		return fmt.Sprintf("type %d", int(t))
	}
}
