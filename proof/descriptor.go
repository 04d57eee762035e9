/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof defines the descriptors binding JOSE/COSE signing algorithms
// to the key material they accept.
package proof

import (
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"
)

const (
	// CWTProofType is the content type of CWT key proofs.
	CWTProofType = "application/openid4vci-proof+cwt"

	// COSEKeyHeader is the protected header carrying the holder key in CWT proofs.
	COSEKeyHeader = "COSE_Key"
)

// SupportedKey describes one shape of public key a proof algorithm accepts.
// JWKCurve is empty for key types without a curve parameter (RSA).
type SupportedKey struct {
	KMSKeyType kms.KeyType
	JWKKeyType string
	JWKCurve   string
}

// JWTProofDescriptor describes a JWT proof algorithm and the COSE algorithm
// registered for it, when one exists.
type JWTProofDescriptor interface {
	JWTAlgorithm() string
	CWTAlgorithm() cose.Algorithm

	SupportedKeys() []SupportedKey
}
