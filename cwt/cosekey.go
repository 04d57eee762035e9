/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cwt

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/trustbloc/kms-go/doc/jose/jwk/jwksupport"
)

// COSE_Key parameter labels and values (RFC 9053, RFC 8230).
const (
	coseKeyTypeOKP int64 = 1
	coseKeyTypeEC2 int64 = 2
	coseKeyTypeRSA int64 = 3

	coseCurveP256      int64 = 1
	coseCurveP384      int64 = 2
	coseCurveP521      int64 = 3
	coseCurveEd25519   int64 = 6
	coseCurveSecp256k1 int64 = 8

	coseKeyLabelKty    int64 = 1
	coseKeyLabelCrvOrN int64 = -1
	coseKeyLabelXOrE   int64 = -2
	coseKeyLabelY      int64 = -3
)

type coseKey struct {
	Kty    int64           `cbor:"1,keyasint"`
	CrvOrN cbor.RawMessage `cbor:"-1,keyasint,omitempty"`
	XOrE   []byte          `cbor:"-2,keyasint,omitempty"`
	Y      []byte          `cbor:"-3,keyasint,omitempty"`
}

// ParseCOSEKey converts a CBOR-encoded COSE_Key into a jwk.
func ParseCOSEKey(raw []byte) (*jwk.JWK, error) {
	var key coseKey
	if err := cbor.Unmarshal(raw, &key); err != nil {
		return nil, err
	}

	switch key.Kty {
	case coseKeyTypeOKP:
		return parseOKPKey(key)
	case coseKeyTypeEC2:
		return parseEC2Key(key)
	case coseKeyTypeRSA:
		return parseRSAKey(key)
	default:
		return nil, fmt.Errorf("unsupported COSE key type %d", key.Kty)
	}
}

func parseOKPKey(key coseKey) (*jwk.JWK, error) {
	crv, err := decodeCurve(key.CrvOrN)
	if err != nil {
		return nil, err
	}

	if crv != coseCurveEd25519 {
		return nil, fmt.Errorf("unsupported OKP curve %d", crv)
	}

	if len(key.XOrE) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Ed25519 key size %d", len(key.XOrE))
	}

	return jwksupport.JWKFromKey(ed25519.PublicKey(key.XOrE))
}

func parseEC2Key(key coseKey) (*jwk.JWK, error) {
	crv, err := decodeCurve(key.CrvOrN)
	if err != nil {
		return nil, err
	}

	var curve elliptic.Curve

	switch crv {
	case coseCurveP256:
		curve = elliptic.P256()
	case coseCurveP384:
		curve = elliptic.P384()
	case coseCurveP521:
		curve = elliptic.P521()
	case coseCurveSecp256k1:
		curve = btcec.S256()
	default:
		return nil, fmt.Errorf("unsupported EC2 curve %d", crv)
	}

	if len(key.XOrE) == 0 || len(key.Y) == 0 {
		return nil, fmt.Errorf("missing EC2 key coordinates")
	}

	return jwksupport.JWKFromKey(&ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(key.XOrE),
		Y:     new(big.Int).SetBytes(key.Y),
	})
}

func parseRSAKey(key coseKey) (*jwk.JWK, error) {
	var n []byte
	if err := cbor.Unmarshal(key.CrvOrN, &n); err != nil {
		return nil, fmt.Errorf("decode RSA modulus: %w", err)
	}

	if len(n) == 0 || len(key.XOrE) == 0 {
		return nil, fmt.Errorf("missing RSA key parameters")
	}

	return jwksupport.JWKFromKey(&rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(key.XOrE).Int64()),
	})
}

func decodeCurve(raw cbor.RawMessage) (int64, error) {
	var crv int64
	if err := cbor.Unmarshal(raw, &crv); err != nil {
		return 0, fmt.Errorf("decode curve: %w", err)
	}

	return crv, nil
}

// EncodeCOSEKey converts a public jwk into a CBOR-encoded COSE_Key.
func EncodeCOSEKey(key *jwk.JWK) ([]byte, error) {
	switch pub := key.Public().Key.(type) {
	case ed25519.PublicKey:
		return cbor.Marshal(map[int64]interface{}{
			coseKeyLabelKty:    coseKeyTypeOKP,
			coseKeyLabelCrvOrN: coseCurveEd25519,
			coseKeyLabelXOrE:   []byte(pub),
		})
	case *ecdsa.PublicKey:
		crv, err := encodeCurve(pub.Curve)
		if err != nil {
			return nil, err
		}

		keySize := (pub.Curve.Params().BitSize + 7) / 8

		return cbor.Marshal(map[int64]interface{}{
			coseKeyLabelKty:    coseKeyTypeEC2,
			coseKeyLabelCrvOrN: crv,
			coseKeyLabelXOrE:   copyPadded(pub.X.Bytes(), keySize),
			coseKeyLabelY:      copyPadded(pub.Y.Bytes(), keySize),
		})
	case *rsa.PublicKey:
		return cbor.Marshal(map[int64]interface{}{
			coseKeyLabelKty:    coseKeyTypeRSA,
			coseKeyLabelCrvOrN: pub.N.Bytes(),
			coseKeyLabelXOrE:   big.NewInt(int64(pub.E)).Bytes(),
		})
	default:
		return nil, fmt.Errorf("unsupported public key type %T", pub)
	}
}

func encodeCurve(curve elliptic.Curve) (int64, error) {
	switch curve {
	case elliptic.P256():
		return coseCurveP256, nil
	case elliptic.P384():
		return coseCurveP384, nil
	case elliptic.P521():
		return coseCurveP521, nil
	case btcec.S256():
		return coseCurveSecp256k1, nil
	default:
		return 0, fmt.Errorf("unsupported curve %s", curve.Params().Name)
	}
}

func copyPadded(source []byte, size int) []byte {
	dest := make([]byte, size)
	copy(dest[size-len(source):], source)

	return dest
}
