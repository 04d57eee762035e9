/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pubkey

import (
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/spi/kms"
)

// PublicKey is resolved public key material a signature is verified against.
// Keys enter this module as JWKs, either embedded in a key proof header or
// attached to an issuer signing key.
type PublicKey struct {
	Type kms.KeyType
	JWK  *jwk.JWK
}
