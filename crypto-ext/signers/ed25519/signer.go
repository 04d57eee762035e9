/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ed25519

import (
	"crypto/ed25519"
	"errors"
)

// Signer makes Ed25519 signatures.
type Signer struct {
	privKey ed25519.PrivateKey
}

// New creates a new ed25519 Signer.
func New(privKey ed25519.PrivateKey) *Signer {
	return &Signer{privKey: privKey}
}

// Sign signs data.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	if len(s.privKey) != ed25519.PrivateKeySize {
		return nil, errors.New("ed25519: invalid key")
	}

	return ed25519.Sign(s.privKey, data), nil
}
