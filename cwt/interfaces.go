/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cwt

//go:generate mockgen -destination interfaces_mocks_test.go -package cwt_test -source=interfaces.go
import (
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/veraison/go-cose"
)

// ProofChecker used to check proof of cwt.
type ProofChecker interface {
	CheckCWTProof(algo cose.Algorithm, key *jwk.JWK, msg *cose.Sign1Message) error
}
