// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the chat wire schema.
package protocol

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind string

const (
	KindUnparsable     DecodeErrorKind = "unparsable"
	KindMissingType    DecodeErrorKind = "missing-type"
	KindUnknownType    DecodeErrorKind = "unknown-type"
	KindUnregistered   DecodeErrorKind = "unregistered"
	KindInvalidPayload DecodeErrorKind = "invalid-payload"
)

// DecodeError is returned for inbound frames that cannot become an Envelope.
// Callers log and drop; decode failures are never retried.
type DecodeError struct {
	Kind DecodeErrorKind
	Type Type
	Err  error
}

func (e *DecodeError) Error() string {
	msg := "decode: " + string(e.Kind)
	if e.Type != "" {
		msg += fmt.Sprintf(" (type %q)", e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeKind reports whether err is a DecodeError of the given kind.
func IsDecodeKind(err error, kind DecodeErrorKind) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
