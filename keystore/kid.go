/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keystore

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/trustbloc/kms-go/doc/jose/jwk"
)

const secp256k1Curve = "secp256k1"

// thumbprintKeyID derives a key id as the base64url RFC 7638 SHA-256
// thumbprint of the public JWK.
func thumbprintKeyID(key *jwk.JWK) (string, error) {
	if key.Crv == secp256k1Curve {
		return secp256k1KeyID(key)
	}

	tp, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(tp), nil
}

// go-jose has no thumbprint template for the secp256k1 curve, build the
// canonical RFC 7638 input manually.
func secp256k1KeyID(key *jwk.JWK) (string, error) {
	const thumbprintTemplate = `{"crv":"secp256k1","kty":"EC","x":"%s","y":"%s"}`

	pub, ok := key.Key.(*ecdsa.PublicKey)
	if !ok {
		return "", errors.New("secp256k1 jwk does not hold an ecdsa public key")
	}

	size := (pub.Curve.Params().BitSize + 7) / 8

	canonical := fmt.Sprintf(thumbprintTemplate,
		base64.RawURLEncoding.EncodeToString(pub.X.FillBytes(make([]byte, size))),
		base64.RawURLEncoding.EncodeToString(pub.Y.FillBytes(make([]byte, size))))

	h := crypto.SHA256.New()
	_, _ = h.Write([]byte(canonical))

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}
