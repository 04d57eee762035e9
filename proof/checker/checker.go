/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package checker verifies jwt and cwt signatures against a presented key.
package checker

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/crypto-ext/pubkey"
	proofdesc "github.com/trustbloc/vci-go/proof"
)

type signatureVerifier interface {
	// SupportedKeyType checks if verifier supports given key.
	SupportedKeyType(keyType kms.KeyType) bool
	// Verify verifies the signature.
	Verify(sig, msg []byte, pub *pubkey.PublicKey) error
}

type jwtCheckDescriptor struct {
	proofDescriptor proofdesc.JWTProofDescriptor
}

type cwtCheckDescriptor struct {
	proofDescriptor proofdesc.JWTProofDescriptor
}

// nolint: gochecknoglobals
var possibleIssuerPath = []string{
	"vc.issuer.id",
	"vc.issuer",
	"issuer.id",
	"issuer",
	"iss",
}

// ProofChecker checks jwt and cwt proofs against the key they present.
// The key is supplied by the caller, not resolved from the document, so the
// same checker serves both holder key proofs and issuer credential proofs.
type ProofChecker struct {
	supportedJWTProofs []jwtCheckDescriptor
	supportedCWTProofs []cwtCheckDescriptor
	signatureVerifiers []signatureVerifier
}

// Opt represent checker creation options.
type Opt func(c *ProofChecker)

// WithJWTAlg option to set supported jwt algs.
func WithJWTAlg(proofDescs ...proofdesc.JWTProofDescriptor) Opt {
	return func(c *ProofChecker) {
		for _, proofDesc := range proofDescs {
			c.supportedJWTProofs = append(c.supportedJWTProofs, jwtCheckDescriptor{
				proofDescriptor: proofDesc,
			})
		}
	}
}

// WithCWTAlg option to set supported cwt algs.
func WithCWTAlg(proofDescs ...proofdesc.JWTProofDescriptor) Opt {
	return func(c *ProofChecker) {
		for _, proofDesc := range proofDescs {
			c.supportedCWTProofs = append(c.supportedCWTProofs, cwtCheckDescriptor{
				proofDescriptor: proofDesc,
			})
		}
	}
}

// WithSignatureVerifiers option to set signature verifiers.
func WithSignatureVerifiers(verifiers ...signatureVerifier) Opt {
	return func(c *ProofChecker) {
		c.signatureVerifiers = append(c.signatureVerifiers, verifiers...)
	}
}

// New creates new proof checker.
func New(opts ...Opt) *ProofChecker {
	c := &ProofChecker{}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CheckJWTProof checks that the jwt signature was made with the given key.
func (c *ProofChecker) CheckJWTProof(headers jose.Headers, key *jwk.JWK, msg, signature []byte) error {
	alg, ok := headers.Algorithm()
	if !ok {
		return errors.New("missed alg in jwt header")
	}

	supportedProof, err := c.getSupportedProofByAlg(alg)
	if err != nil {
		return err
	}

	pubKey, err := convertToPublicKey(supportedProof.proofDescriptor.SupportedKeys(), key)
	if err != nil {
		return fmt.Errorf("jwt with alg %s check: %w", alg, err)
	}

	verifier, err := c.getSignatureVerifier(pubKey.Type)
	if err != nil {
		return err
	}

	return verifier.Verify(signature, msg, pubKey)
}

// CheckCWTProof checks that the cwt signature was made with the given key.
func (c *ProofChecker) CheckCWTProof(algo cose.Algorithm, key *jwk.JWK, msg *cose.Sign1Message) error {
	if algo == 0 {
		return errors.New("missed alg in cwt header")
	}

	supportedProof, err := c.getSupportedCWTProofByAlg(algo)
	if err != nil {
		return err
	}

	pubKey, err := convertToPublicKey(supportedProof.proofDescriptor.SupportedKeys(), key)
	if err != nil {
		return fmt.Errorf("cwt with alg %s check: %w", algo, err)
	}

	verifier, err := cose.NewVerifier(algo, pubKey.JWK.Public().Key)
	if err != nil {
		return err
	}

	return msg.Verify(nil, verifier)
}

// FindIssuer finds issuer in payload.
func (c *ProofChecker) FindIssuer(payload []byte) string {
	parsed := gjson.ParseBytes(payload)

	for _, p := range possibleIssuerPath {
		if str := parsed.Get(p).Str; str != "" {
			return str
		}
	}

	return ""
}

func convertToPublicKey(supportedKeys []proofdesc.SupportedKey, key *jwk.JWK) (*pubkey.PublicKey, error) {
	if key == nil {
		return nil, errors.New("missing key")
	}

	for _, supported := range supportedKeys {
		if supported.JWKKeyType != key.Kty || supported.JWKCurve != key.Crv {
			continue
		}

		return &pubkey.PublicKey{Type: supported.KMSKeyType, JWK: key}, nil
	}

	return nil, fmt.Errorf("can't verify with jwk type %q and curve %q", key.Kty, key.Crv)
}

func (c *ProofChecker) getSupportedProofByAlg(jwtAlg string) (jwtCheckDescriptor, error) {
	for _, supported := range c.supportedJWTProofs {
		if supported.proofDescriptor.JWTAlgorithm() == jwtAlg {
			return supported, nil
		}
	}

	return jwtCheckDescriptor{}, fmt.Errorf("unsupported jwt alg: %s", jwtAlg)
}

func (c *ProofChecker) getSupportedCWTProofByAlg(cwtAlg cose.Algorithm) (cwtCheckDescriptor, error) {
	for _, supported := range c.supportedCWTProofs {
		if supported.proofDescriptor.CWTAlgorithm() == cwtAlg {
			return supported, nil
		}
	}

	return cwtCheckDescriptor{}, fmt.Errorf("unsupported cwt alg: %s", cwtAlg)
}

func (c *ProofChecker) getSignatureVerifier(keyType kms.KeyType) (signatureVerifier, error) {
	for _, verifier := range c.signatureVerifiers {
		if verifier.SupportedKeyType(keyType) {
			return verifier, nil
		}
	}

	return nil, fmt.Errorf("no verifiers with supported key type %s", keyType)
}
