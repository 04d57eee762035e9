/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package es256

import (
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/proof"
)

const (
	// JWKKeyType for es256.
	JWKKeyType = "EC"
	// JWKCurve for es256.
	JWKCurve = "P-256"
	// JWTAlg for es256.
	JWTAlg = "ES256"
)

// Proof describes the es256 proof algorithm.
type Proof struct {
	supportedKeys []proof.SupportedKey
}

// New creates an es256 proof descriptor.
func New() *Proof {
	p := &Proof{}
	p.supportedKeys = []proof.SupportedKey{
		{
			KMSKeyType: kms.ECDSAP256TypeIEEEP1363,
			JWKKeyType: JWKKeyType,
			JWKCurve:   JWKCurve,
		},
		{
			KMSKeyType: kms.ECDSAP256TypeDER,
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

// CWTAlgorithm returns the registered cose algorithm.
func (s *Proof) CWTAlgorithm() cose.Algorithm {
	return cose.AlgorithmES256
}
