/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rsa

import (
	"crypto"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vci-go/crypto-ext/pubkey"
)

// PS256Verifier verifies RSASSA-PSS signatures over SHA-256.
type PS256Verifier struct{}

// NewPS256 creates a new PS256Verifier.
func NewPS256() *PS256Verifier {
	return &PS256Verifier{}
}

// SupportedKeyType checks if verifier supports given key type.
func (sv *PS256Verifier) SupportedKeyType(keyType kms.KeyType) bool {
	return keyType == kms.RSAPS256Type
}

// Verify verifies the signature.
func (sv *PS256Verifier) Verify(signature, msg []byte, key *pubkey.PublicKey) error {
	if !sv.SupportedKeyType(key.Type) {
		return fmt.Errorf("unsupported key type %s", key.Type)
	}

	pubKey, err := rsaPublicKey(key)
	if err != nil {
		return err
	}

	hash := crypto.SHA256
	hasher := hash.New()

	_, err = hasher.Write(msg)
	if err != nil {
		return errors.New("rsa: hash error")
	}

	hashed := hasher.Sum(nil)

	err = rsa.VerifyPSS(pubKey, hash, hashed, signature, nil)
	if err != nil {
		return errors.New("rsa: invalid signature")
	}

	return nil
}

// RS256Verifier verifies RSASSA-PKCS1-v1_5 signatures over SHA-256.
type RS256Verifier struct{}

// NewRS256 creates a new RS256Verifier.
func NewRS256() *RS256Verifier {
	return &RS256Verifier{}
}

// SupportedKeyType checks if verifier supports given key type.
func (sv *RS256Verifier) SupportedKeyType(keyType kms.KeyType) bool {
	return keyType == kms.RSARS256Type
}

// Verify verifies the signature.
func (sv *RS256Verifier) Verify(signature, msg []byte, key *pubkey.PublicKey) error {
	if !sv.SupportedKeyType(key.Type) {
		return fmt.Errorf("unsupported key type %s", key.Type)
	}

	pubKey, err := rsaPublicKey(key)
	if err != nil {
		return err
	}

	hash := crypto.SHA256.New()

	_, err = hash.Write(msg)
	if err != nil {
		return err
	}

	hashed := hash.Sum(nil)

	err = rsa.VerifyPKCS1v15(pubKey, crypto.SHA256, hashed, signature)
	if err != nil {
		return errors.New("rsa: invalid signature")
	}

	return nil
}

func rsaPublicKey(key *pubkey.PublicKey) (*rsa.PublicKey, error) {
	if key.JWK == nil {
		return nil, errors.New("rsa: missing JWK")
	}

	pubKey, ok := key.JWK.Public().Key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("rsa: invalid public key type")
	}

	return pubKey, nil
}
