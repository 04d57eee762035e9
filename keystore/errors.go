/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keystore

import "fmt"

// KeyNotFoundError is returned by Resolve when no registered key is active
// for the requested algorithm and format. It is fatal for the issuance
// request, the store never substitutes a key with another algorithm.
type KeyNotFoundError struct {
	Algorithm string
	Format    string
}

func (e *KeyNotFoundError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("no active signing key for algorithm %q", e.Algorithm)
	}

	return fmt.Sprintf("no active signing key for algorithm %q and format %q", e.Algorithm, e.Format)
}
