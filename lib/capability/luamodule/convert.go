// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package luamodule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/Shopify/go-lua"
)

// maxDepth bounds nesting in both directions. Lua tables can contain
// themselves, so conversion must not recurse without limit.
const maxDepth = 100

// maxExactInteger is the largest magnitude a float64 represents with
// every integer below it exact.
const maxExactInteger = 1 << 53

// pushGo pushes a JSON-shaped Go value onto the Lua stack.
func pushGo(state *lua.State, value any, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("value nested deeper than %d levels", maxDepth)
	}
	// One slot for the value and one for a nested element.
	if err := reserveStack(state, 2); err != nil {
		return err
	}

	switch typed := value.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(typed)
	case string:
		state.PushString(typed)
	case json.Number:
		number, err := typed.Float64()
		if err != nil {
			return fmt.Errorf("number %s: %w", typed, err)
		}
		state.PushNumber(number)
	case float64:
		state.PushNumber(typed)
	case float32:
		state.PushNumber(float64(typed))
	case int:
		state.PushNumber(float64(typed))
	case int64:
		state.PushNumber(float64(typed))
	case uint64:
		state.PushNumber(float64(typed))
	case []any:
		state.CreateTable(len(typed), 0)
		for i, element := range typed {
			if err := pushGo(state, element, depth+1); err != nil {
				state.Pop(1)
				return err
			}
			state.RawSetInt(-2, i+1)
		}
	case map[string]any:
		state.CreateTable(0, len(typed))
		for key, element := range typed {
			if err := pushGo(state, element, depth+1); err != nil {
				state.Pop(1)
				return err
			}
			state.SetField(-2, key)
		}
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	return nil
}

// toGo converts the Lua value at index to a JSON-shaped Go value.
func toGo(state *lua.State, index int, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("table nested deeper than %d levels (cyclic table?)", maxDepth)
	}
	index = state.AbsIndex(index)

	switch kind := state.TypeOf(index); kind {
	case lua.TypeNil, lua.TypeNone:
		return nil, nil
	case lua.TypeBoolean:
		return state.ToBoolean(index), nil
	case lua.TypeNumber:
		number, _ := state.ToNumber(index)
		return normalizeNumber(number)
	case lua.TypeString:
		text, _ := state.ToString(index)
		return text, nil
	case lua.TypeTable:
		return tableToGo(state, index, depth)
	default:
		return nil, fmt.Errorf("cannot return a %s value", typeName(kind))
	}
}

// reserveStack grows the Lua stack so that n more values fit. The
// stack does not grow on its own when Go pushes values.
func reserveStack(state *lua.State, n int) error {
	if !state.CheckStack(n) {
		return fmt.Errorf("lua stack cannot grow by %d slots", n)
	}
	return nil
}

func normalizeNumber(number float64) (any, error) {
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return nil, fmt.Errorf("cannot return non-finite number %v", number)
	}
	if number == math.Trunc(number) && math.Abs(number) <= maxExactInteger {
		return int64(number), nil
	}
	return number, nil
}

// tableToGo converts the table at the absolute index. A table whose
// keys are exactly 1..n becomes a slice; everything else becomes a map.
func tableToGo(state *lua.State, index int, depth int) (any, error) {
	// Iteration holds a key and a value above the table.
	if err := reserveStack(state, 3); err != nil {
		return nil, err
	}

	count := 0
	largest := 0
	sequence := true
	state.PushNil()
	for state.Next(index) {
		count++
		if sequence {
			key, ok := sequenceKey(state, -2)
			sequence = ok
			largest = max(largest, key)
		}
		state.Pop(1)
	}

	// count distinct positive integer keys, none above count, are
	// exactly 1..count.
	if sequence && count > 0 && largest == count {
		array := make([]any, 0, count)
		for i := 1; i <= count; i++ {
			state.RawGetInt(index, i)
			element, err := toGo(state, -1, depth+1)
			state.Pop(1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			array = append(array, element)
		}
		return array, nil
	}

	object := make(map[string]any, count)
	state.PushNil()
	for state.Next(index) {
		key, err := tableKey(state, -2)
		if err != nil {
			state.Pop(2)
			return nil, err
		}
		element, err := toGo(state, -1, depth+1)
		if err != nil {
			state.Pop(2)
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		object[key] = element
		state.Pop(1)
	}
	return object, nil
}

// tableKey renders a table key as an object key without disturbing
// the stack (lua_tolstring on a number key would break Next).
func tableKey(state *lua.State, index int) (string, error) {
	switch kind := state.TypeOf(index); kind {
	case lua.TypeString:
		key, _ := state.ToString(index)
		return key, nil
	case lua.TypeNumber:
		number, _ := state.ToNumber(index)
		if number == math.Trunc(number) && math.Abs(number) <= maxExactInteger {
			return strconv.FormatInt(int64(number), 10), nil
		}
		return strconv.FormatFloat(number, 'g', -1, 64), nil
	case lua.TypeBoolean:
		return strconv.FormatBool(state.ToBoolean(index)), nil
	default:
		return "", fmt.Errorf("table key of type %s cannot become an object key", typeName(kind))
	}
}

// sequenceKey returns the key at index when it is a positive integer.
func sequenceKey(state *lua.State, index int) (int, bool) {
	if state.TypeOf(index) != lua.TypeNumber {
		return 0, false
	}
	number, _ := state.ToNumber(index)
	if number < 1 || number != math.Trunc(number) || number > maxExactInteger {
		return 0, false
	}
	return int(number), true
}
