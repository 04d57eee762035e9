/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package testsupport provides signer and checker fixtures for proof tests.
package testsupport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	kmsapi "github.com/trustbloc/kms-go/spi/kms"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/crypto-ext/testutil"
	proofdesc "github.com/trustbloc/vci-go/proof"
	"github.com/trustbloc/vci-go/proof/checker"
	"github.com/trustbloc/vci-go/proof/creator"
	"github.com/trustbloc/vci-go/proof/defaults"
)

// AnyPubKeyID matches any key id when used as a checker lookup id.
const AnyPubKeyID = "anyID"

// SigningKey describes a fixture key pair to generate.
type SigningKey struct {
	Type        kmsapi.KeyType
	PublicKeyID string
}

// ProofSigner couples a proof creator with the key material it signs under.
type ProofSigner struct {
	PublicKeyID  string
	KeyType      kmsapi.KeyType
	JWTAlgorithm string
	CWTAlgorithm cose.Algorithm
	PublicJWK    *jwk.JWK
	ProofCreator *creator.ProofCreator
}

// KeyProofChecker verifies jwt proofs against a fixed set of public keys
// registered by key id. It implements the jwt.ProofChecker interface used by
// credential parsing.
type KeyProofChecker struct {
	checker *checker.ProofChecker
	keys    []registeredKey
}

type registeredKey struct {
	lookupID string
	key      *jwk.JWK
}

// NewKeyProofChecker returns a checker with no registered keys. Keys are
// added with RegisterKey.
func NewKeyProofChecker() *KeyProofChecker {
	return &KeyProofChecker{checker: defaults.NewDefaultProofChecker()}
}

// RegisterKey makes the public key resolvable under the given lookup id.
func (c *KeyProofChecker) RegisterKey(lookupID string, key *jwk.JWK) {
	c.keys = append(c.keys, registeredKey{lookupID: lookupID, key: key})
}

// CheckJWTProof resolves the key by the kid header and checks the signature.
func (c *KeyProofChecker) CheckJWTProof(headers jose.Headers, _, msg, signature []byte) error {
	keyID, _ := headers.KeyID()

	key, err := c.resolveKey(keyID)
	if err != nil {
		return err
	}

	return c.checker.CheckJWTProof(headers, key, msg, signature)
}

func (c *KeyProofChecker) resolveKey(keyID string) (*jwk.JWK, error) {
	for _, registered := range c.keys {
		if registered.lookupID == AnyPubKeyID || registered.lookupID == keyID {
			return registered.key, nil
		}
	}

	return nil, fmt.Errorf("invalid key id %s", keyID)
}

// NewProofSigner generates a key of the given type and wires a proof creator
// for the algorithm that key serves.
func NewProofSigner(t *testing.T, keyType kmsapi.KeyType, publicKeyID string) *ProofSigner {
	t.Helper()

	signer, pub, err := testutil.CreateSigner(keyType)
	require.NoError(t, err)

	desc, err := descriptorForKeyType(keyType)
	require.NoError(t, err)

	return &ProofSigner{
		PublicKeyID:  publicKeyID,
		KeyType:      keyType,
		JWTAlgorithm: desc.JWTAlgorithm(),
		CWTAlgorithm: desc.CWTAlgorithm(),
		PublicJWK:    pub.JWK,
		ProofCreator: creator.New(creator.WithJWTAlg(desc, signer)),
	}
}

// NewSigVerPair returns a proof signer for a generated key and a checker that
// resolves that key by its public key id.
func NewSigVerPair(t *testing.T, keyType kmsapi.KeyType, publicKeyID string) (*ProofSigner, *KeyProofChecker) {
	t.Helper()

	signers, proofChecker := NewSignersAndVerifier(t, []SigningKey{{Type: keyType, PublicKeyID: publicKeyID}})

	return signers[0], proofChecker
}

// NewSignersAndVerifier returns proof signers for the given keys and a
// checker that resolves each of them by public key id.
func NewSignersAndVerifier(t *testing.T, signingKeys []SigningKey) ([]*ProofSigner, *KeyProofChecker) {
	t.Helper()

	var (
		signers []*ProofSigner
		keys    []registeredKey
	)

	for _, sigKey := range signingKeys {
		signer := NewProofSigner(t, sigKey.Type, sigKey.PublicKeyID)
		signers = append(signers, signer)

		keys = append(keys, registeredKey{lookupID: sigKey.PublicKeyID, key: signer.PublicJWK})
	}

	return signers, &KeyProofChecker{
		checker: defaults.NewDefaultProofChecker(),
		keys:    keys,
	}
}

func descriptorForKeyType(keyType kmsapi.KeyType) (proofdesc.JWTProofDescriptor, error) {
	for _, desc := range defaults.JWTDescriptors() {
		for _, supported := range desc.SupportedKeys() {
			if supported.KMSKeyType == keyType {
				return desc, nil
			}
		}
	}

	return nil, fmt.Errorf("no proof descriptor for key type %s", keyType)
}
