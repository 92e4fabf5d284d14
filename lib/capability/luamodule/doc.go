// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package luamodule hosts a delegated module written in Lua, using the
// pure-Go interpreter github.com/Shopify/go-lua.
//
// The module script is evaluated once when the module is opened and
// must return a table. Its fields are the exported capabilities, each
// optional:
//
//	return {
//	  decode = function(value) ... end,
//	  fingerprint = function() ... end,
//	  sign = function(tokenId, path, body) ... end,
//	}
//
// Values cross the boundary as JSON-shaped data. JSON objects become
// tables keyed by strings, arrays become sequences (1-based), numbers
// become Lua numbers, and null becomes nil. On the way back, a table
// whose keys are exactly 1..n (n > 0) becomes an array and any other
// table becomes an object; the empty table is the empty object.
// Integral numbers within ±2^53 come back as integers. Functions,
// userdata, threads, NaN, and infinities cannot be returned.
//
// A Lua error raised inside a capability is returned as a
// capability.ExecutionError carrying the Lua message. A Lua state is
// single-threaded, so calls on one Module are serialized.
package luamodule
