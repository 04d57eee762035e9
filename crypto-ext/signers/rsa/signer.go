/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rsa

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
)

// RS256Signer signs with RSASSA-PKCS1-v1_5 over SHA-256.
type RS256Signer struct {
	privKey *rsa.PrivateKey
}

// NewRS256 creates a new RS256Signer.
func NewRS256(privKey *rsa.PrivateKey) *RS256Signer {
	return &RS256Signer{privKey: privKey}
}

// Sign signs data.
func (s *RS256Signer) Sign(data []byte) ([]byte, error) {
	hash := crypto.SHA256.New()

	_, err := hash.Write(data)
	if err != nil {
		return nil, err
	}

	hashed := hash.Sum(nil)

	return rsa.SignPKCS1v15(rand.Reader, s.privKey, crypto.SHA256, hashed)
}

// PS256Signer signs with RSASSA-PSS over SHA-256.
type PS256Signer struct {
	privKey *rsa.PrivateKey
}

// NewPS256 creates a new PS256Signer.
func NewPS256(privKey *rsa.PrivateKey) *PS256Signer {
	return &PS256Signer{privKey: privKey}
}

// Sign signs data.
func (s *PS256Signer) Sign(data []byte) ([]byte, error) {
	hash := crypto.SHA256.New()

	_, err := hash.Write(data)
	if err != nil {
		return nil, err
	}

	hashed := hash.Sum(nil)

	return rsa.SignPSS(rand.Reader, s.privKey, crypto.SHA256, hashed, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
}
