// Copyright 2026 The Servant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package problem provides status-carrying error values and RFC 9457
// problem-details rendering for dispatch failures.
//
// Handlers return ordinary errors; an error that implements
// [StatusError] controls its own HTTP status code. The [Error] type is
// a ready-made implementation that can additionally carry a response
// payload to be encoded with the negotiated response codec.
package problem

import (
	"errors"
	"net/http"
)

// StatusError allows errors to declare their own HTTP status code.
// Handler errors implementing this interface pass their status through
// the dispatch layer unchanged.
//
// Example:
//
//	type PaymentRequired struct{}
//
//	func (PaymentRequired) Error() string   { return "payment required" }
//	func (PaymentRequired) HTTPStatus() int { return http.StatusPaymentRequired }
type StatusError interface {
	error
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// Error is a status-carrying error with an optional response payload.
//
// When a handler returns an *Error with a non-nil Payload, the dispatch
// layer encodes the payload with the response codec negotiated for the
// request; otherwise it renders a problem-details body.
type Error struct {
	// Status is the HTTP status code for the response.
	Status int

	// Message is the human-readable explanation.
	Message string

	// Payload, when non-nil, is encoded as the response body using the
	// negotiated response codec.
	Payload any

	// Cause holds the wrapped underlying error, if any.
	Cause error
}

// New creates a status-carrying error.
//
// Example:
//
//	return nil, problem.New(http.StatusPaymentRequired, "insufficient funds")
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// WithPayload returns a copy of the error carrying the given response
// payload.
func (e *Error) WithPayload(payload any) *Error {
	clone := *e
	clone.Payload = payload

	return &clone
}

// Wrap returns a copy of the error with the given cause attached.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.Cause = cause

	return &clone
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return http.StatusText(e.Status)
}

// HTTPStatus implements StatusError.
func (e *Error) HTTPStatus() int { return e.Status }

// Unwrap returns the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// StatusOf returns the HTTP status an error resolves to: the declared
// status when err (or anything it wraps) implements StatusError, and
// 500 otherwise.
func StatusOf(err error) int {
	var typed StatusError
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}
