// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tahu-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sparkplug

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on errors.As without string
// matching. The set is closed: codec, sequence tracker and MQTT supervisor
// all draw from it rather than minting ad-hoc sentinel errors.
type Kind int

const (
	Other Kind = iota
	InvalidArgument
	InvalidType
	UnknownType
	OutOfRange
	MalformedWire
	SequenceGap
	BdSeqMismatch
	NotConnected
	NotAuthorized
	Timeout
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidType:
		return "invalid_type"
	case UnknownType:
		return "unknown_type"
	case OutOfRange:
		return "out_of_range"
	case MalformedWire:
		return "malformed_wire"
	case SequenceGap:
		return "sequence_gap"
	case BdSeqMismatch:
		return "bd_seq_mismatch"
	case NotConnected:
		return "not_connected"
	case NotAuthorized:
		return "not_authorized"
	case Timeout:
		return "timeout"
	case Internal:
		return "internal"
	default:
		return "other"
	}
}

// Error is the shared error type for this module. Op names the failing
// operation ("decodeMetric", "NodeState.Advance", ...), Kind lets callers
// branch without string matching, and Err, when set, is the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err if it is (or wraps) a *Error, else Other.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Other
}
