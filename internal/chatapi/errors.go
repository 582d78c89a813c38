// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes transport failures.
type ErrorKind int

const (
	// KindConnection covers DNS, refused connections, resets and cancellation.
	KindConnection ErrorKind = iota
	// KindTimeout means the request timeout or context deadline expired.
	KindTimeout
	// KindStatus means the endpoint answered with a non-2xx status.
	KindStatus
	// KindMalformed means the body was not a JSON object with a string "response".
	KindMalformed
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// TransportError is returned for every failed round trip.
type TransportError struct {
	Kind    ErrorKind
	Status  int // HTTP status for KindStatus, else 0
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if e.Kind == KindStatus {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether err is a TransportError of KindTimeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindTimeout
}

// IsStatus reports whether err is a TransportError carrying the given HTTP
// status. A status of 0 matches any non-2xx status.
func IsStatus(err error, status int) bool {
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindStatus {
		return false
	}
	return status == 0 || te.Status == status
}
