/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package defaults wires the full set of supported proof algorithms.
package defaults

import (
	"github.com/trustbloc/vci-go/crypto-ext/verifiers/ecdsa"
	"github.com/trustbloc/vci-go/crypto-ext/verifiers/ed25519"
	"github.com/trustbloc/vci-go/crypto-ext/verifiers/rsa"
	proofdesc "github.com/trustbloc/vci-go/proof"
	"github.com/trustbloc/vci-go/proof/checker"
	"github.com/trustbloc/vci-go/proof/jwtproofs/eddsa"
	"github.com/trustbloc/vci-go/proof/jwtproofs/es256"
	"github.com/trustbloc/vci-go/proof/jwtproofs/es256k"
	"github.com/trustbloc/vci-go/proof/jwtproofs/es384"
	"github.com/trustbloc/vci-go/proof/jwtproofs/es512"
	"github.com/trustbloc/vci-go/proof/jwtproofs/ps256"
	"github.com/trustbloc/vci-go/proof/jwtproofs/rs256"
)

// NewDefaultProofChecker creates a proof checker configured with all supported algorithms.
func NewDefaultProofChecker() *checker.ProofChecker {
	return checker.New(
		checker.WithSignatureVerifiers(ed25519.New(),
			rsa.NewPS256(), rsa.NewRS256(),
			ecdsa.NewSecp256k1(), ecdsa.NewES256(), ecdsa.NewES384(), ecdsa.NewES512()),
		checker.WithJWTAlg(eddsa.New(), es256.New(), es256k.New(), es384.New(), es512.New(), rs256.New(), ps256.New()),
		checker.WithCWTAlg(eddsa.New(), es256.New(), es384.New(), es512.New(), rs256.New(), ps256.New()),
	)
}

// JWTDescriptors returns all supported jwt proof descriptors.
func JWTDescriptors() []proofdesc.JWTProofDescriptor {
	return []proofdesc.JWTProofDescriptor{
		eddsa.New(), es256.New(), es256k.New(), es384.New(), es512.New(), rs256.New(), ps256.New(),
	}
}

// DescriptorByJWTAlg returns the descriptor serving the given jws algorithm.
func DescriptorByJWTAlg(alg string) (proofdesc.JWTProofDescriptor, bool) {
	for _, desc := range JWTDescriptors() {
		if desc.JWTAlgorithm() == alg {
			return desc, true
		}
	}

	return nil, false
}
