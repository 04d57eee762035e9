/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"

	"github.com/trustbloc/kms-go/doc/jose"

	"github.com/trustbloc/vci-go/jwt"
)

// MarshalJWS serializes JWT into signed form (JWS).
func (jcc *JWTCredClaims) MarshalJWS(signatureAlg JWSAlgorithm, signer jwt.ProofCreator,
	keyID string) (string, jose.Headers, error) {
	return marshalJWS(jcc, signatureAlg, signer, keyID)
}

// ParseCredentialJWT parses a Verifiable Credential enveloped into a signed JWT (JWS).
// The JWT proof is not checked here, use Credential.CheckProof or ParseCredential.
func ParseCredentialJWT(rawJWT string) (*Credential, error) {
	joseHeaders, vcData, err := decodeCredJWT(rawJWT)
	if err != nil {
		return nil, fmt.Errorf("JWS decoding: %w", err)
	}

	vcJSON, err := parseCredentialJSON(vcData)
	if err != nil {
		return nil, err
	}

	contents, err := parseCredentialContents(vcJSON)
	if err != nil {
		return nil, err
	}

	return &Credential{
		credentialJSON:     vcJSON,
		credentialContents: *contents,
		JWTEnvelope: &JWTEnvelope{
			JWT:        rawJWT,
			JWTHeaders: joseHeaders,
		},
	}, nil
}
