/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cwt

import "github.com/veraison/go-cose"

// ProofCreator defines signer interface which is used to sign cwt proofs.
type ProofCreator interface {
	SignCWT(params SignParameters, message *cose.Sign1Message) ([]byte, error)
}
