/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keyproof_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	kmsapi "github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vci-go/clock"
	"github.com/trustbloc/vci-go/keyproof"
	"github.com/trustbloc/vci-go/proof/jwtproofs/es256"
	"github.com/trustbloc/vci-go/proof/testsupport"
)

const (
	testAudience = "https://issuer.example.com"
	testNonce    = "c-nonce-1"
)

func TestValidateJWT(t *testing.T) {
	fixedTime := time.Date(2024, time.February, 16, 16, 0, 0, 0, time.UTC)
	expected := keyproof.Expected{Audience: testAudience, Nonce: testNonce}

	holder := testsupport.NewProofSigner(t, kmsapi.ECDSAP256TypeIEEEP1363, "holder-key")

	validator := keyproof.NewValidator(keyproof.WithClock(clock.NewStatic(fixedTime)))

	proofClaims := func(aud, nonce string, iat int64) map[string]interface{} {
		claims := map[string]interface{}{}

		if aud != "" {
			claims["aud"] = aud
		}

		if nonce != "" {
			claims["nonce"] = nonce
		}

		if iat != 0 {
			claims["iat"] = iat
		}

		return claims
	}

	t.Run("success", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		result, err := validator.ValidateJWT(rawProof, expected)
		require.NoError(t, err)
		require.Equal(t, "EC", result.Key.Kty)
		require.Equal(t, "P-256", result.Key.Crv)
		require.Equal(t, fixedTime.Unix(), result.IssuedAt.Unix())
		require.Equal(t, testNonce, result.Payload["nonce"])
		require.Equal(t, testAudience, result.Payload["aud"])
	})

	t.Run("success with EdDSA holder key", func(t *testing.T) {
		edHolder := testsupport.NewProofSigner(t, kmsapi.ED25519Type, "ed-holder-key")

		rawProof := testsupport.NewJWTProof(t, edHolder, keyproof.JWTProofType, edHolder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		result, err := validator.ValidateJWT(rawProof, expected)
		require.NoError(t, err)
		require.Equal(t, "OKP", result.Key.Kty)
	})

	t.Run("success with RS256 holder key", func(t *testing.T) {
		rsaHolder := testsupport.NewProofSigner(t, kmsapi.RSARS256Type, "rsa-holder-key")

		rawProof := testsupport.NewJWTProof(t, rsaHolder, keyproof.JWTProofType, rsaHolder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		result, err := validator.ValidateJWT(rawProof, expected)
		require.NoError(t, err)
		require.Equal(t, "RSA", result.Key.Kty)
	})

	t.Run("proof issued within the skew window", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Add(-20*time.Second).Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)
		require.NoError(t, err)
	})

	t.Run("proof signed by unrelated key", func(t *testing.T) {
		other := testsupport.NewProofSigner(t, kmsapi.ECDSAP256TypeIEEEP1363, "other-key")

		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, other.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var sigErr *keyproof.InvalidSignatureError
		require.ErrorAs(t, err, &sigErr)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, "abc", fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, keyproof.Expected{Audience: testAudience, Nonce: "xyz"})

		var nonceErr *keyproof.NonceMismatchError
		require.ErrorAs(t, err, &nonceErr)
		require.Equal(t, "xyz", nonceErr.Expected)
		require.Equal(t, "abc", nonceErr.Actual)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims("https://another-issuer.example.com", testNonce, fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var audErr *keyproof.AudienceMismatchError
		require.ErrorAs(t, err, &audErr)
		require.Equal(t, testAudience, audErr.Expected)
		require.Equal(t, "https://another-issuer.example.com", audErr.Actual)
	})

	t.Run("stale proof", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Add(-10*time.Minute).Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var expiredErr *keyproof.ExpiredProofError
		require.ErrorAs(t, err, &expiredErr)
		require.Equal(t, keyproof.DefaultClockSkew, expiredErr.Skew)
		require.Equal(t, fixedTime, expiredErr.Now)
	})

	t.Run("proof issued in the future", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Add(10*time.Minute).Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var expiredErr *keyproof.ExpiredProofError
		require.ErrorAs(t, err, &expiredErr)
	})

	t.Run("custom clock skew", func(t *testing.T) {
		relaxed := keyproof.NewValidator(
			keyproof.WithClock(clock.NewStatic(fixedTime)),
			keyproof.WithClockSkew(15*time.Minute))

		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Add(-10*time.Minute).Unix()))

		_, err := relaxed.ValidateJWT(rawProof, expected)
		require.NoError(t, err)
	})

	t.Run("invalid proof type", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, "openid4vci-proof+cwt", holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var typErr *keyproof.InvalidProofTypeError
		require.ErrorAs(t, err, &typErr)
		require.Equal(t, "openid4vci-proof+cwt", typErr.Typ)
	})

	t.Run("missing typ header", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, "", holder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var typErr *keyproof.InvalidProofTypeError
		require.ErrorAs(t, err, &typErr)
		require.Empty(t, typErr.Typ)
	})

	t.Run("alg not allowed", func(t *testing.T) {
		restricted := keyproof.NewValidator(
			keyproof.WithClock(clock.NewStatic(fixedTime)),
			keyproof.WithSupportedAlgorithms(es256.New()))

		edHolder := testsupport.NewProofSigner(t, kmsapi.ED25519Type, "ed-holder-key")

		rawProof := testsupport.NewJWTProof(t, edHolder, keyproof.JWTProofType, edHolder.PublicJWK,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		_, err := restricted.ValidateJWT(rawProof, expected)

		var malformedErr *keyproof.MalformedProofError
		require.ErrorAs(t, err, &malformedErr)
		require.ErrorContains(t, err, `alg "EdDSA" is not allowed`)
	})

	t.Run("missing jwk header", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, nil,
			proofClaims(testAudience, testNonce, fixedTime.Unix()))

		_, err := validator.ValidateJWT(rawProof, expected)

		var malformedErr *keyproof.MalformedProofError
		require.ErrorAs(t, err, &malformedErr)
		require.ErrorContains(t, err, "jwk header is required")
	})

	t.Run("missing iat claim", func(t *testing.T) {
		rawProof := testsupport.NewJWTProof(t, holder, keyproof.JWTProofType, holder.PublicJWK,
			proofClaims(testAudience, testNonce, 0))

		_, err := validator.ValidateJWT(rawProof, expected)

		var malformedErr *keyproof.MalformedProofError
		require.ErrorAs(t, err, &malformedErr)
		require.ErrorContains(t, err, "iat claim is required")
	})

	t.Run("malformed proof", func(t *testing.T) {
		_, err := validator.ValidateJWT("not-a-jwt", expected)

		var malformedErr *keyproof.MalformedProofError
		require.ErrorAs(t, err, &malformedErr)

		_, err = validator.ValidateJWT("aaaa.bbbb.cccc", expected)
		require.ErrorAs(t, err, &malformedErr)
	})
}
