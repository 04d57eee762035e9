/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cwt parses and checks CWT key proofs (COSE_Sign1).
package cwt

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/proof"
)

// SignParameters contains parameters of signing for cwt proofs.
type SignParameters struct {
	KeyID  string
	CWTAlg cose.Algorithm
}

// Claims holds the claims of a cwt key proof (RFC 8392 claim keys).
type Claims struct {
	Issuer   string `cbor:"1,keyasint,omitempty"`
	Audience string `cbor:"3,keyasint,omitempty"`
	IssuedAt int64  `cbor:"6,keyasint,omitempty"`
	Nonce    []byte `cbor:"10,keyasint,omitempty"`
}

// Parse parses input CWT in serialized form into a COSE_Sign1 message.
func Parse(cwtSerialized []byte) (*cose.Sign1Message, error) {
	var message cose.Sign1Message
	if err := message.UnmarshalCBOR(cwtSerialized); err != nil {
		return nil, err
	}

	return &message, nil
}

// ContentType returns the content type (label 3) of the protected header.
func ContentType(message *cose.Sign1Message) (string, error) {
	raw, ok := message.Headers.Protected[cose.HeaderLabelContentType]
	if !ok {
		return "", errors.New("content type header is required")
	}

	contentType, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("unexpected content type header %v", raw)
	}

	return contentType, nil
}

// ExtractKey returns the holder key carried in the COSE_Key protected header.
func ExtractKey(message *cose.Sign1Message) (*jwk.JWK, error) {
	// currently supported only COSE_Key, x5chain is not supported by go opensource implementation yet
	keyBytes, ok := message.Headers.Protected[proof.COSEKeyHeader].([]byte)
	if !ok {
		return nil, errors.New("COSE_Key header is required")
	}

	key, err := ParseCOSEKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse COSE_Key header: %w", err)
	}

	return key, nil
}

// CheckProof checks that the cwt is signed by the given key.
func CheckProof(message *cose.Sign1Message, proofChecker ProofChecker, key *jwk.JWK) error {
	alg, err := message.Headers.Protected.Algorithm()
	if err != nil {
		return err
	}

	return proofChecker.CheckCWTProof(alg, key, message)
}

// DecodeClaims decodes the claims of a parsed cwt.
func DecodeClaims(message *cose.Sign1Message) (*Claims, error) {
	var claims Claims
	if err := cbor.Unmarshal(message.Payload, &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

// ParseAndCheckProof parses a serialized cwt key proof and checks its
// signature against the holder key carried in the protected header.
func ParseAndCheckProof(cwtSerialized []byte, proofChecker ProofChecker) (*cose.Sign1Message, *jwk.JWK, error) {
	message, err := Parse(cwtSerialized)
	if err != nil {
		return nil, nil, err
	}

	key, err := ExtractKey(message)
	if err != nil {
		return nil, nil, err
	}

	if err = CheckProof(message, proofChecker, key); err != nil {
		return nil, nil, err
	}

	return message, key, nil
}
