/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package creator signs jwt and cwt proofs with locally held keys.
package creator

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/cwt"
	"github.com/trustbloc/vci-go/jwt"
	proofdesc "github.com/trustbloc/vci-go/proof"
)

// ProofCreator incapsulate logic of proof creation.
type ProofCreator struct {
	supportedJWTAlgs []jwtProofCreateDescriptor
}

type jwtProofCreateDescriptor struct {
	proofDescriptor     proofdesc.JWTProofDescriptor
	cryptographicSigner cryptographicSigner
}

type cryptographicSigner interface {
	// Sign will sign document and return signature.
	Sign(data []byte) ([]byte, error)
}

// Opt represent ProofCreator creation options.
type Opt func(c *ProofCreator)

// WithJWTAlg option to set supported jwt alg.
func WithJWTAlg(proofDesc proofdesc.JWTProofDescriptor, cryptographicSigner cryptographicSigner) Opt {
	return func(c *ProofCreator) {
		c.supportedJWTAlgs = append(c.supportedJWTAlgs, jwtProofCreateDescriptor{
			proofDescriptor:     proofDesc,
			cryptographicSigner: cryptographicSigner,
		})
	}
}

// New creates ProofCreator.
func New(opts ...Opt) *ProofCreator {
	c := &ProofCreator{}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SignJWT will sign document and return signature.
func (c *ProofCreator) SignJWT(params jwt.SignParameters, data []byte) ([]byte, error) {
	supportedProof, err := c.getSupportedProofByAlg(params.JWTAlg)
	if err != nil {
		return nil, err
	}

	return supportedProof.cryptographicSigner.Sign(data)
}

// SignCWT will sign document and return signature.
func (c *ProofCreator) SignCWT(params cwt.SignParameters, message *cose.Sign1Message) ([]byte, error) {
	supportedProof, err := c.getSupportedProofByCwtAlg(params.CWTAlg)
	if err != nil {
		return nil, err
	}

	var protected cbor.RawMessage
	protected, err = message.Headers.MarshalProtected()
	if err != nil {
		return nil, err
	}

	cborProtectedData, err := deterministicBinaryString(protected)
	if err != nil {
		return nil, err
	}

	sigStructure := []interface{}{
		"Signature1",      // context
		cborProtectedData, // body_protected
		[]byte{},          // external_aad
		message.Payload,   // payload
	}

	cborData, err := cbor.Marshal(sigStructure)
	if err != nil {
		return nil, err
	}

	return supportedProof.cryptographicSigner.Sign(cborData)
}

// CreateJWTHeaders creates correct jwt headers.
func (c *ProofCreator) CreateJWTHeaders(params jwt.SignParameters) (jose.Headers, error) {
	headers := map[string]interface{}{
		jose.HeaderAlgorithm: params.JWTAlg,
	}

	if params.KeyID != "" {
		headers[jose.HeaderKeyID] = params.KeyID
	}

	return headers, nil
}

func (c *ProofCreator) getSupportedProofByCwtAlg(cwtAlg cose.Algorithm) (jwtProofCreateDescriptor, error) {
	for _, supported := range c.supportedJWTAlgs {
		if supported.proofDescriptor.CWTAlgorithm() == cwtAlg {
			return supported, nil
		}
	}

	return jwtProofCreateDescriptor{}, fmt.Errorf("unsupported cwt alg: %s", cwtAlg.String())
}

func (c *ProofCreator) getSupportedProofByAlg(jwtAlg string) (jwtProofCreateDescriptor, error) {
	for _, supported := range c.supportedJWTAlgs {
		if supported.proofDescriptor.JWTAlgorithm() == jwtAlg {
			return supported, nil
		}
	}

	return jwtProofCreateDescriptor{}, fmt.Errorf("unsupported jwt alg: %s", jwtAlg)
}
