// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package shim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/capshim/lib/capability"
)

// Exit codes returned by every runner.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Fixed diagnostics.
const (
	MessageInvalidJSON  = "Invalid JSON input"
	PrefixExecution     = "Execution failed: "
	PrefixFingerprint   = "JS Error: "
	UsageSession        = "usage: capshim-session <tokenId> <path> <body>"
	sessionArgumentsLen = 3
)

// Streams are the output destinations of a run.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Decode runs the capshim-decode contract: args must hold exactly one
// JSON document, which is passed to decoder. The result is printed as
// compact JSON.
func Decode(ctx context.Context, args []string, streams Streams, decoder capability.Decoder) int {
	if len(args) != 1 {
		return fail(streams, MessageInvalidJSON)
	}
	input, err := ParseJSONArgument(args[0])
	if err != nil {
		return fail(streams, MessageInvalidJSON)
	}

	result, err := capability.Go(ctx, func(ctx context.Context) (any, error) {
		return decoder.Decode(ctx, input)
	}).Wait(ctx)
	if err != nil {
		return fail(streams, PrefixExecution+err.Error())
	}
	return printJSON(streams, result)
}

// Fingerprint runs the capshim-fingerprint contract. Positional
// arguments are ignored. The result is printed verbatim.
func Fingerprint(ctx context.Context, args []string, streams Streams, fingerprinter capability.Fingerprinter) int {
	result, err := capability.Go(ctx, fingerprinter.Fingerprint).Wait(ctx)
	if err != nil {
		return fail(streams, PrefixFingerprint+err.Error())
	}
	if _, err := io.WriteString(streams.Stdout, result+"\n"); err != nil {
		return fail(streams, PrefixFingerprint+err.Error())
	}
	return ExitSuccess
}

// Session runs the capshim-session contract: exactly three opaque
// arguments (token ID, request path, request body) are passed to
// signer unchanged. The result is printed as compact JSON.
func Session(ctx context.Context, args []string, streams Streams, signer capability.Signer) int {
	if len(args) != sessionArgumentsLen {
		return fail(streams, UsageSession)
	}
	tokenID, path, body := args[0], args[1], args[2]

	result, err := capability.Go(ctx, func(ctx context.Context) (any, error) {
		return signer.Sign(ctx, tokenID, path, body)
	}).Wait(ctx)
	if err != nil {
		return fail(streams, PrefixExecution+err.Error())
	}
	return printJSON(streams, result)
}

// ParseJSONArgument parses text as exactly one JSON value. Numbers are
// kept as json.Number so their digits reach the module unchanged.
func ParseJSONArgument(text string) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return value, nil
}

// MarshalResult encodes result as compact JSON followed by a newline.
// '<', '>' and '&' are not escaped. Object keys come out in sorted
// order, json.Number values keep their original digits ("1.0" stays
// 1.0), and U+2028 and U+2029 are written as \u2028 and \u2029.
func MarshalResult(result any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// printJSON writes result or, when it cannot be encoded, an execution
// failure. Nothing reaches stdout unless encoding succeeded.
func printJSON(streams Streams, result any) int {
	data, err := MarshalResult(result)
	if err != nil {
		return fail(streams, PrefixExecution+"encoding result: "+err.Error())
	}
	if _, err := streams.Stdout.Write(data); err != nil {
		return fail(streams, PrefixExecution+err.Error())
	}
	return ExitSuccess
}

func fail(streams Streams, message string) int {
	fmt.Fprintln(streams.Stderr, message)
	return ExitFailure
}
