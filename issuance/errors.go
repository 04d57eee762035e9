/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import "fmt"

// UnsupportedFormatError reports a credential configuration naming a format
// the issuer cannot produce.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported credential format %q", e.Format)
}

// SigningFailureError reports a failure of the resolved signing key while
// producing the credential signature.
type SigningFailureError struct {
	Algorithm string
	KeyID     string
	cause     error
}

func (e *SigningFailureError) Error() string {
	return fmt.Sprintf("sign credential with %s key %q: %v", e.Algorithm, e.KeyID, e.cause)
}

// Unwrap returns the underlying signer error.
func (e *SigningFailureError) Unwrap() error {
	return e.cause
}
