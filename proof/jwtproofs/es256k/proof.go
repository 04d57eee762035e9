/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package es256k

import (
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/proof"
)

const (
	// JWKKeyType for es256k.
	JWKKeyType = "EC"
	// JWKCurve for es256k.
	JWKCurve = "secp256k1"
	// JWTAlg for es256k.
	JWTAlg = "ES256K"
)

// Proof describes the es256k proof algorithm.
type Proof struct {
	supportedKeys []proof.SupportedKey
}

// New creates an es256k proof descriptor.
func New() *Proof {
	p := &Proof{}
	p.supportedKeys = []proof.SupportedKey{
		{
			KMSKeyType: kms.ECDSASecp256k1TypeIEEEP1363,
			JWKKeyType: JWKKeyType,
			JWKCurve:   JWKCurve,
		},
		{
			KMSKeyType: kms.ECDSASecp256k1TypeDER,
			JWKKeyType: JWKKeyType,
			JWKCurve:   JWKCurve,
		},
	}

	return p
}

// SupportedKeys returns the key shapes accepted by this proof algorithm.
func (s *Proof) SupportedKeys() []proof.SupportedKey {
	return s.supportedKeys
}

// JWTAlgorithm returns the jwt alg name.
func (s *Proof) JWTAlgorithm() string {
	return JWTAlg
}

// CWTAlgorithm returns the registered cose algorithm. ES256K has no COSE
// registration in the underlying library.
func (s *Proof) CWTAlgorithm() cose.Algorithm {
	return 0
}
