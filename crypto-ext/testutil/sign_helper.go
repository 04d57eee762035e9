/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package testutil provides key and signer fixtures for signature tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"
	"github.com/trustbloc/kms-go/spi/kms"

	"github.com/trustbloc/vci-go/crypto-ext/pubkey"
	ecdsasigner "github.com/trustbloc/vci-go/crypto-ext/signers/ecdsa"
	ed25519signer "github.com/trustbloc/vci-go/crypto-ext/signers/ed25519"
	rsasigner "github.com/trustbloc/vci-go/crypto-ext/signers/rsa"
)

// Signer signs data on behalf of a test fixture key.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// CreateRSARS256 creates an RS256 signer and the corresponding public key.
func CreateRSARS256() (*rsasigner.RS256Signer, *pubkey.PublicKey, error) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.RSARS256Type)
	if err != nil {
		return nil, nil, err
	}

	return rsasigner.NewRS256(privKey), pub, nil
}

// CreateRSAPS256 creates a PS256 signer and the corresponding public key.
func CreateRSAPS256() (*rsasigner.PS256Signer, *pubkey.PublicKey, error) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.RSAPS256Type)
	if err != nil {
		return nil, nil, err
	}

	return rsasigner.NewPS256(privKey), pub, nil
}

// CreateECDSAP256 creates an ES256 signer and the corresponding public key.
func CreateECDSAP256() (*ecdsasigner.Signer, *pubkey.PublicKey, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.ECDSAP256TypeIEEEP1363)
	if err != nil {
		return nil, nil, err
	}

	return ecdsasigner.NewES256(privKey), pub, nil
}

// CreateECDSAP384 creates an ES384 signer and the corresponding public key.
func CreateECDSAP384() (*ecdsasigner.Signer, *pubkey.PublicKey, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.ECDSAP384TypeIEEEP1363)
	if err != nil {
		return nil, nil, err
	}

	return ecdsasigner.NewES384(privKey), pub, nil
}

// CreateECDSAP521 creates an ES512 signer and the corresponding public key.
func CreateECDSAP521() (*ecdsasigner.Signer, *pubkey.PublicKey, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.ECDSAP521TypeIEEEP1363)
	if err != nil {
		return nil, nil, err
	}

	return ecdsasigner.NewES512(privKey), pub, nil
}

// CreateECDSASecp256k1 creates an ES256K signer and the corresponding public key.
func CreateECDSASecp256k1() (*ecdsasigner.Signer, *pubkey.PublicKey, error) {
	privKey, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(&privKey.PublicKey, kms.ECDSASecp256k1TypeIEEEP1363)
	if err != nil {
		return nil, nil, err
	}

	return ecdsasigner.NewSecp256k1(privKey), pub, nil
}

// CreateEd25519 creates an EdDSA signer and the corresponding public key.
func CreateEd25519() (*ed25519signer.Signer, *pubkey.PublicKey, error) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	pub, err := jwkPublicKey(pubKey, kms.ED25519Type)
	if err != nil {
		return nil, nil, err
	}

	return ed25519signer.New(privKey), pub, nil
}

// CreateSigner creates a signer and the corresponding public key for the
// given key type.
func CreateSigner(keyType kms.KeyType) (Signer, *pubkey.PublicKey, error) {
	switch keyType {
	case kms.RSARS256Type:
		s, pub, err := CreateRSARS256()
		return s, pub, err
	case kms.RSAPS256Type:
		s, pub, err := CreateRSAPS256()
		return s, pub, err
	case kms.ECDSAP256TypeIEEEP1363, kms.ECDSAP256TypeDER:
		s, pub, err := CreateECDSAP256()
		return s, pub, err
	case kms.ECDSAP384TypeIEEEP1363, kms.ECDSAP384TypeDER:
		s, pub, err := CreateECDSAP384()
		return s, pub, err
	case kms.ECDSAP521TypeIEEEP1363, kms.ECDSAP521TypeDER:
		s, pub, err := CreateECDSAP521()
		return s, pub, err
	case kms.ECDSASecp256k1TypeIEEEP1363, kms.ECDSASecp256k1TypeDER:
		s, pub, err := CreateECDSASecp256k1()
		return s, pub, err
	case kms.ED25519Type:
		s, pub, err := CreateEd25519()
		return s, pub, err
	default:
		return nil, nil, fmt.Errorf("unsupported key type %s", keyType)
	}
}

func jwkPublicKey(cryptoPub interface{}, keyType kms.KeyType) (*pubkey.PublicKey, error) {
	pubJWK, err := jwksupport.JWKFromKey(cryptoPub)
	if err != nil {
		return nil, err
	}

	return &pubkey.PublicKey{
		Type: keyType,
		JWK:  pubJWK,
	}, nil
}
