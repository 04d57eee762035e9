/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ps256

import (
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/proof"
)

const (
	// JWKKeyType for ps256.
	JWKKeyType = "RSA"
	// JWTAlg for ps256.
	JWTAlg = "PS256"
)

// Proof describes the ps256 proof algorithm.
type Proof struct {
	supportedKeys []proof.SupportedKey
}

// New creates a ps256 proof descriptor.
func New() *Proof {
	p := &Proof{}
	p.supportedKeys = []proof.SupportedKey{
		{
			KMSKeyType: kms.RSAPS256Type,
			JWKKeyType: JWKKeyType,
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
	return cose.AlgorithmPS256
}
