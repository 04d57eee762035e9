/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package eddsa

import (
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/proof"
)

const (
	// JWKKeyType for eddsa.
	JWKKeyType = "OKP"
	// JWKCurve for eddsa.
	JWKCurve = "Ed25519"
	// JWTAlg for eddsa.
	JWTAlg = "EdDSA"
)

// Proof describes the eddsa proof algorithm.
type Proof struct {
	supportedKeys []proof.SupportedKey
}

// New creates an eddsa proof descriptor.
func New() *Proof {
	p := &Proof{}
	p.supportedKeys = []proof.SupportedKey{
		{
			KMSKeyType: kms.ED25519Type,
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
	return cose.AlgorithmEd25519
}
