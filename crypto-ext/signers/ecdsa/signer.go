/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsa

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
)

// Signer makes ECDSA signatures in the fixed-size IEEE P1363 form used by
// JOSE and COSE.
type Signer struct {
	privKey *ecdsa.PrivateKey
	hash    crypto.Hash
}

func newSigner(privKey *ecdsa.PrivateKey, hash crypto.Hash) *Signer {
	return &Signer{privKey: privKey, hash: hash}
}

// NewES256 creates a signer for ECDSA P-256 over SHA-256.
func NewES256(privKey *ecdsa.PrivateKey) *Signer {
	return newSigner(privKey, crypto.SHA256)
}

// NewES384 creates a signer for ECDSA P-384 over SHA-384.
func NewES384(privKey *ecdsa.PrivateKey) *Signer {
	return newSigner(privKey, crypto.SHA384)
}

// NewES512 creates a signer for ECDSA P-521 over SHA-512.
func NewES512(privKey *ecdsa.PrivateKey) *Signer {
	return newSigner(privKey, crypto.SHA512)
}

// NewSecp256k1 creates a signer for ECDSA secp256k1 over SHA-256.
func NewSecp256k1(privKey *ecdsa.PrivateKey) *Signer {
	return newSigner(privKey, crypto.SHA256)
}

// Sign signs data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	hasher := s.hash.New()

	_, err := hasher.Write(data)
	if err != nil {
		return nil, err
	}

	hashed := hasher.Sum(nil)

	r, sv, err := ecdsa.Sign(rand.Reader, s.privKey, hashed)
	if err != nil {
		return nil, err
	}

	curveBits := s.privKey.Curve.Params().BitSize

	keyBytes := curveBits / 8
	if curveBits%8 > 0 {
		keyBytes++
	}

	copyPadded := func(source []byte, size int) []byte {
		dest := make([]byte, size)
		copy(dest[size-len(source):], source)

		return dest
	}

	return append(copyPadded(r.Bytes(), keyBytes), copyPadded(sv.Bytes(), keyBytes)...), nil
}
