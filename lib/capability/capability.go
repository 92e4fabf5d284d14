// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import "context"

// Capability names, as exported by delegated modules and used in error
// messages and exec request envelopes.
const (
	NameDecode      = "decode"
	NameFingerprint = "fingerprint"
	NameSign        = "sign"
)

// Decoder decodes an arbitrary JSON value (as produced by
// encoding/json with UseNumber) into a JSON-serializable result.
type Decoder interface {
	Decode(ctx context.Context, input any) (any, error)
}

// Fingerprinter produces a pre-formatted fingerprint string.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Signer signs a request described by three opaque strings and returns
// a JSON-serializable result.
type Signer interface {
	Sign(ctx context.Context, tokenID, path, body string) (any, error)
}

// Module is a loaded delegated module. Close releases whatever the
// backend holds (an interpreter state, nothing for exec modules).
type Module interface {
	Decoder
	Fingerprinter
	Signer
	Close() error
}

// Funcs adapts plain functions to [Module]. A nil function makes the
// corresponding capability unsupported.
type Funcs struct {
	DecodeFunc      func(ctx context.Context, input any) (any, error)
	FingerprintFunc func(ctx context.Context) (string, error)
	SignFunc        func(ctx context.Context, tokenID, path, body string) (any, error)
	CloseFunc       func() error
}

var _ Module = (*Funcs)(nil)

// Decode calls DecodeFunc.
func (f *Funcs) Decode(ctx context.Context, input any) (any, error) {
	if f.DecodeFunc == nil {
		return nil, Unsupported(NameDecode)
	}
	return f.DecodeFunc(ctx, input)
}

// Fingerprint calls FingerprintFunc.
func (f *Funcs) Fingerprint(ctx context.Context) (string, error) {
	if f.FingerprintFunc == nil {
		return "", Unsupported(NameFingerprint)
	}
	return f.FingerprintFunc(ctx)
}

// Sign calls SignFunc.
func (f *Funcs) Sign(ctx context.Context, tokenID, path, body string) (any, error) {
	if f.SignFunc == nil {
		return nil, Unsupported(NameSign)
	}
	return f.SignFunc(ctx, tokenID, path, body)
}

// Close calls CloseFunc if set.
func (f *Funcs) Close() error {
	if f.CloseFunc == nil {
		return nil
	}
	return f.CloseFunc()
}
