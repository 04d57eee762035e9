/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keyproof

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/cwt"
	proofdesc "github.com/trustbloc/vci-go/proof"
)

// ValidateCWT checks a CWT key proof (COSE_Sign1) with the same ordered
// checks as ValidateJWT, over the CWT claim keys. The serialized proof may
// be base64url or hex encoded.
func (v *Validator) ValidateCWT(rawProof string, expected Expected) (*Result, error) {
	message, err := parseCWTProof(rawProof)
	if err != nil {
		return nil, &MalformedProofError{Reason: "parse proof", cause: err}
	}

	contentType, err := cwt.ContentType(message)
	if err != nil || contentType != proofdesc.CWTProofType {
		return nil, &InvalidProofTypeError{Typ: contentType}
	}

	algo, err := message.Headers.Protected.Algorithm()
	if err != nil {
		return nil, &MalformedProofError{Reason: "alg header is required", cause: err}
	}

	if !v.cwtAlgAllowed(algo) {
		return nil, &MalformedProofError{Reason: fmt.Sprintf("alg %s is not allowed", algo)}
	}

	key, err := cwt.ExtractKey(message)
	if err != nil {
		return nil, &MalformedProofError{Reason: "extract holder key", cause: err}
	}

	claims, err := cwt.DecodeClaims(message)
	if err != nil {
		return nil, &MalformedProofError{Reason: "decode proof claims", cause: err}
	}

	if err = cwt.CheckProof(message, v.proofChecker, key); err != nil {
		return nil, &InvalidSignatureError{cause: err}
	}

	if claims.Audience != expected.Audience {
		return nil, &AudienceMismatchError{Expected: expected.Audience, Actual: claims.Audience}
	}

	if nonce := string(claims.Nonce); nonce != expected.Nonce {
		return nil, &NonceMismatchError{Expected: expected.Nonce, Actual: nonce}
	}

	if claims.IssuedAt == 0 {
		return nil, &MalformedProofError{Reason: "iat claim is required"}
	}

	issuedAt := time.Unix(claims.IssuedAt, 0)

	if err = v.checkFreshness(issuedAt); err != nil {
		return nil, err
	}

	return &Result{Key: key, IssuedAt: issuedAt, Payload: cwtClaimsPayload(claims)}, nil
}

func parseCWTProof(rawProof string) (*cose.Sign1Message, error) {
	data, err := base64.RawURLEncoding.DecodeString(rawProof)
	if err == nil {
		message, parseErr := cwt.Parse(data)
		if parseErr == nil {
			return message, nil
		}

		err = parseErr
	}

	hexData, hexErr := hex.DecodeString(rawProof)
	if hexErr != nil {
		return nil, err
	}

	return cwt.Parse(hexData)
}

func cwtClaimsPayload(claims *cwt.Claims) map[string]interface{} {
	payload := map[string]interface{}{
		"aud": claims.Audience,
		"iat": claims.IssuedAt,
	}

	if claims.Issuer != "" {
		payload["iss"] = claims.Issuer
	}

	if len(claims.Nonce) > 0 {
		payload["nonce"] = string(claims.Nonce)
	}

	return payload
}
