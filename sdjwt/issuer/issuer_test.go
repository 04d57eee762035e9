/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"crypto"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose"
	kmsapi "github.com/trustbloc/kms-go/spi/kms"

	afjwt "github.com/trustbloc/vci-go/jwt"
	"github.com/trustbloc/vci-go/proof/testsupport"
	"github.com/trustbloc/vci-go/sdjwt/common"
)

const (
	testIssuer = "https://example.com/issuer"

	issuerKeyID = "did:example:issuer#key-1"
	holderKeyID = "did:example:holder#key-1"
)

func TestNew(t *testing.T) {
	r := require.New(t)

	claims := map[string]interface{}{
		"given_name": "John",
		"last_name":  "Doe",
	}

	t.Run("success", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer)
		r.NoError(err)
		r.Len(token.Disclosures, 2)

		var payloadMap map[string]interface{}
		r.NoError(token.DecodeClaims(&payloadMap))

		r.Equal(testIssuer, payloadMap["iss"])
		r.Equal("sha-256", payloadMap["_sd_alg"])
		r.Len(payloadMap["_sd"], 2)

		// selectively disclosable claims are carried in disclosures only
		r.NotContains(payloadMap, "given_name")
		r.NotContains(payloadMap, "last_name")

		r.NoError(common.VerifyDisclosuresInSDJWT(token.Disclosures, token.SignedJWT))
	})

	t.Run("success - struct claims", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		structClaims := struct {
			GivenName string `json:"given_name"`
			LastName  string `json:"last_name"`
		}{
			GivenName: "John",
			LastName:  "Doe",
		}

		token, err := New(testIssuer, structClaims, nil, signer)
		r.NoError(err)
		r.Len(token.Disclosures, 2)

		r.NoError(common.VerifyDisclosuresInSDJWT(token.Disclosures, token.SignedJWT))
	})

	t.Run("success - with payload options", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)
		holder := testsupport.NewProofSigner(t, kmsapi.ED25519Type, holderKeyID)

		issued := time.Date(2023, time.August, 22, 11, 0, 0, 0, time.UTC)
		expiry := issued.Add(time.Hour)

		token, err := New(testIssuer, claims, nil, signer,
			WithJTI("jti1"),
			WithSubject("sub1"),
			WithIssuedAt(josejwt.NewNumericDate(issued)),
			WithNotBefore(josejwt.NewNumericDate(issued)),
			WithExpiry(josejwt.NewNumericDate(expiry)),
			WithHolderPublicKey(holder.PublicJWK))
		r.NoError(err)

		var payloadMap map[string]interface{}
		r.NoError(token.DecodeClaims(&payloadMap))

		r.Equal("jti1", payloadMap["jti"])
		r.Equal("sub1", payloadMap["sub"])
		r.Equal(float64(issued.Unix()), payloadMap["iat"])
		r.Equal(float64(issued.Unix()), payloadMap["nbf"])
		r.Equal(float64(expiry.Unix()), payloadMap["exp"])

		cnf, ok := payloadMap["cnf"].(map[string]interface{})
		r.True(ok)
		r.NotEmpty(cnf["jwk"])
	})

	t.Run("success - non-selectively disclosable claims and decoys", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		testClaims := map[string]interface{}{
			"vct":        "https://credentials.example.com/test_credential",
			"given_name": "John",
			"last_name":  "Doe",
		}

		token, err := New(testIssuer, testClaims, nil, signer,
			WithNonSelectivelyDisclosableClaims([]string{"vct"}),
			WithDecoyDigests(4))
		r.NoError(err)
		r.Len(token.Disclosures, 2)

		var payloadMap map[string]interface{}
		r.NoError(token.DecodeClaims(&payloadMap))

		r.Equal("https://credentials.example.com/test_credential", payloadMap["vct"])
		r.NotContains(payloadMap, "given_name")

		// two disclosure digests plus exactly four decoys
		r.Len(payloadMap["_sd"], 6)

		r.NoError(common.VerifyDisclosuresInSDJWT(token.Disclosures, token.SignedJWT))
	})

	t.Run("success - all claims in clear text", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer,
			WithNonSelectivelyDisclosableClaims([]string{"given_name", "last_name"}))
		r.NoError(err)
		r.Empty(token.Disclosures)

		var payloadMap map[string]interface{}
		r.NoError(token.DecodeClaims(&payloadMap))

		r.Equal("John", payloadMap["given_name"])
		r.Equal("Doe", payloadMap["last_name"])
		r.NotContains(payloadMap, "_sd")
	})

	t.Run("success - explicit typ header", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, jose.Headers{jose.HeaderType: "vc+sd-jwt"}, signer)
		r.NoError(err)

		r.Equal("vc+sd-jwt", token.LookupStringHeader(jose.HeaderType))
	})

	t.Run("success - custom salt function", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, map[string]interface{}{"given_name": "John"}, nil, signer,
			WithSaltFnc(func() (string, error) {
				return "3jqcb67z9wks08zwiK7EyQ", nil
			}))
		r.NoError(err)
		r.Len(token.Disclosures, 1)

		decoded, err := base64.RawURLEncoding.DecodeString(token.Disclosures[0])
		r.NoError(err)
		r.JSONEq(`["3jqcb67z9wks08zwiK7EyQ","given_name","John"]`, string(decoded))
	})

	t.Run("error - claims contain _sd key", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, map[string]interface{}{"_sd": "whatever"}, nil, signer)
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "key '_sd' cannot be present in the claims")
	})

	t.Run("error - nested claims contain _sd key", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, map[string]interface{}{
			"degree": map[string]interface{}{
				"_sd": "whatever",
			},
		}, nil, signer)
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "key '_sd' cannot be present in the claims")
	})

	t.Run("error - salt function failure", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer,
			WithSaltFnc(func() (string, error) {
				return "", errors.New("salt error")
			}))
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "create disclosure: generate salt: salt error")
	})

	t.Run("error - decoy salt failure", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer,
			WithNonSelectivelyDisclosableClaims([]string{"given_name", "last_name"}),
			WithDecoyDigests(1),
			WithSaltFnc(func() (string, error) {
				return "", errors.New("salt error")
			}))
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "failed to create decoy digests: salt error")
	})

	t.Run("error - hash function not available", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer,
			WithHashAlgorithm(crypto.Hash(0)))
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "hash disclosure: hash function not available for: 0")
	})

	t.Run("error - marshal disclosure failure", func(t *testing.T) {
		_, signer := testSigner(t, issuerKeyID)

		token, err := New(testIssuer, claims, nil, signer,
			WithJSONMarshaller(func(v interface{}) ([]byte, error) {
				return nil, errors.New("marshal error")
			}))
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "create disclosure: marshal disclosure: marshal error")
	})

	t.Run("error - signing failure", func(t *testing.T) {
		token, err := New(testIssuer, claims, nil, &failingSigner{})
		r.Error(err)
		r.Nil(token)
		r.Contains(err.Error(), "failed to create SD-JWT from payload")
	})
}

func TestSerialize(t *testing.T) {
	r := require.New(t)

	claims := map[string]interface{}{
		"given_name": "John",
		"last_name":  "Doe",
	}

	t.Run("success - serialize and restore", func(t *testing.T) {
		ps, proofChecker := testsupport.NewSigVerPair(t, kmsapi.ED25519Type, issuerKeyID)

		joseSigner, err := afjwt.NewJOSESigner(afjwt.SignParameters{
			KeyID:  issuerKeyID,
			JWTAlg: ps.JWTAlgorithm,
		}, ps.ProofCreator)
		r.NoError(err)

		token, err := New(testIssuer, claims, nil, joseSigner)
		r.NoError(err)

		serialized, err := token.Serialize(false)
		r.NoError(err)
		r.True(strings.HasSuffix(serialized, common.CombinedFormatSeparator))

		cfi := common.ParseCombinedFormatForIssuance(serialized)
		r.Len(cfi.Disclosures, 2)

		signedJWT, _, err := afjwt.Parse(cfi.SDJWT, afjwt.WithProofChecker(proofChecker))
		r.NoError(err)

		r.NoError(common.VerifyDisclosuresInSDJWT(cfi.Disclosures, signedJWT))

		disclosureClaims, err := common.GetDisclosureClaims(cfi.Disclosures)
		r.NoError(err)

		disclosedClaims, err := common.GetDisclosedClaims(disclosureClaims, signedJWT.Payload)
		r.NoError(err)

		r.Equal("John", disclosedClaims["given_name"])
		r.Equal("Doe", disclosedClaims["last_name"])
		r.Equal(testIssuer, disclosedClaims["iss"])
	})

	t.Run("error - no signed JWT", func(t *testing.T) {
		token := &SelectiveDisclosureJWT{}

		serialized, err := token.Serialize(false)
		r.Error(err)
		r.Empty(serialized)
		r.Contains(err.Error(), "JWS serialization is supported only")
	})
}

func testSigner(t *testing.T, keyID string) (*testsupport.ProofSigner, jose.Signer) {
	t.Helper()

	ps := testsupport.NewProofSigner(t, kmsapi.ED25519Type, keyID)

	joseSigner, err := afjwt.NewJOSESigner(afjwt.SignParameters{
		KeyID:  keyID,
		JWTAlg: ps.JWTAlgorithm,
	}, ps.ProofCreator)
	require.NoError(t, err)

	return ps, joseSigner
}

type failingSigner struct{}

func (s *failingSigner) Sign(_ []byte) ([]byte, error) {
	return nil, errors.New("signing error")
}

func (s *failingSigner) Headers() jose.Headers {
	return jose.Headers{jose.HeaderAlgorithm: "EdDSA"}
}
