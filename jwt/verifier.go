/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import "github.com/trustbloc/kms-go/doc/jose"

// ProofChecker checks the proof of a JWT against its jose headers.
type ProofChecker interface {
	CheckJWTProof(headers jose.Headers, payload, msg, signature []byte) error
}

type joseVerifier struct {
	proofChecker ProofChecker
}

func (v *joseVerifier) Verify(joseHeaders jose.Headers, payload, signingInput, signature []byte) error {
	if v.proofChecker == nil {
		return nil
	}

	return v.proofChecker.CheckJWTProof(joseHeaders, payload, signingInput, signature)
}
