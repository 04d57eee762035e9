/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testsupport

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/cwt"
	"github.com/trustbloc/vci-go/jwt"
	proofdesc "github.com/trustbloc/vci-go/proof"
)

// NewJWTProof builds a signed key proof JWT with the given typ header,
// carrying holderKey in the jwk header when it is not nil.
func NewJWTProof(t *testing.T, signer *ProofSigner, typ string, holderKey *jwk.JWK, claims interface{}) string {
	t.Helper()

	headers := jose.Headers{}

	if typ != "" {
		headers[jose.HeaderType] = typ
	}

	if holderKey != nil {
		headers[jose.HeaderJSONWebKey] = holderKey
	}

	token, err := jwt.NewSigned(claims, jwt.SignParameters{
		JWTAlg:            signer.JWTAlgorithm,
		AdditionalHeaders: headers,
	}, signer.ProofCreator)
	require.NoError(t, err)

	serialized, err := token.Serialize(false)
	require.NoError(t, err)

	return serialized
}

// NewCWTProof builds a serialized COSE_Sign1 key proof over the given claims
// with the given content type, carrying holderKey as a COSE_Key protected
// header when it is not nil.
func NewCWTProof(t *testing.T, signer *ProofSigner, contentType string, holderKey *jwk.JWK, claims interface{}) []byte {
	t.Helper()

	payload, err := cbor.Marshal(claims)
	require.NoError(t, err)

	protected := cose.ProtectedHeader{
		cose.HeaderLabelAlgorithm: signer.CWTAlgorithm,
	}

	if contentType != "" {
		protected[cose.HeaderLabelContentType] = contentType
	}

	if holderKey != nil {
		coseKey, encErr := cwt.EncodeCOSEKey(holderKey)
		require.NoError(t, encErr)

		protected[proofdesc.COSEKeyHeader] = coseKey
	}

	message := &cose.Sign1Message{
		Headers: cose.Headers{
			Protected: protected,
		},
		Payload: payload,
	}

	signature, err := signer.ProofCreator.SignCWT(cwt.SignParameters{CWTAlg: signer.CWTAlgorithm}, message)
	require.NoError(t, err)

	message.Signature = signature

	serialized, err := message.MarshalCBOR()
	require.NoError(t, err)

	return serialized
}
