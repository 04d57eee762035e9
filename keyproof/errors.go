/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keyproof

import (
	"fmt"
	"time"
)

// MalformedProofError reports a proof whose structure, headers or claims
// could not be decoded.
type MalformedProofError struct {
	Reason string
	cause  error
}

func (e *MalformedProofError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed proof: %s: %v", e.Reason, e.cause)
	}

	return fmt.Sprintf("malformed proof: %s", e.Reason)
}

// Unwrap returns the underlying decode error, when there is one.
func (e *MalformedProofError) Unwrap() error {
	return e.cause
}

// InvalidProofTypeError reports a proof whose declared type is not the
// expected proof type tag.
type InvalidProofTypeError struct {
	Typ string
}

func (e *InvalidProofTypeError) Error() string {
	return fmt.Sprintf("invalid proof type %q", e.Typ)
}

// InvalidSignatureError reports a proof whose signature does not verify
// against the holder key embedded in it.
type InvalidSignatureError struct {
	cause error
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid proof signature: %v", e.cause)
}

// Unwrap returns the underlying verification error.
func (e *InvalidSignatureError) Unwrap() error {
	return e.cause
}

// AudienceMismatchError reports a proof bound to a different audience.
type AudienceMismatchError struct {
	Expected string
	Actual   string
}

func (e *AudienceMismatchError) Error() string {
	return fmt.Sprintf("proof audience %q does not match expected audience %q", e.Actual, e.Expected)
}

// NonceMismatchError reports a proof bound to a different nonce.
type NonceMismatchError struct {
	Expected string
	Actual   string
}

func (e *NonceMismatchError) Error() string {
	return fmt.Sprintf("proof nonce %q does not match expected nonce %q", e.Actual, e.Expected)
}

// ExpiredProofError reports a proof issued outside the allowed clock-skew
// window.
type ExpiredProofError struct {
	IssuedAt time.Time
	Now      time.Time
	Skew     time.Duration
}

func (e *ExpiredProofError) Error() string {
	return fmt.Sprintf("proof issued at %s is not within %s of current time %s",
		e.IssuedAt.Format(time.RFC3339), e.Skew, e.Now.Format(time.RFC3339))
}
