/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"github.com/trustbloc/kms-go/doc/jose"
)

// SignParameters contains parameters of signing for jwt vc.
type SignParameters struct {
	KeyID             string
	JWTAlg            string
	AdditionalHeaders jose.Headers
}

// ProofCreator defines signer interface which is used to sign VC JWT.
type ProofCreator interface {
	SignJWT(params SignParameters, data []byte) ([]byte, error)
	CreateJWTHeaders(params SignParameters) (jose.Headers, error)
}

// NewJOSESigner wraps a ProofCreator into a jose compliant signer.
func NewJOSESigner(params SignParameters, signer ProofCreator) (*JoseSigner, error) {
	headers, err := signer.CreateJWTHeaders(params)
	if err != nil {
		return nil, err
	}

	return &JoseSigner{
		signer:     signer,
		signParams: params,
		headers:    headers,
	}, nil
}

// JoseSigner implements the jose.Signer interface.
type JoseSigner struct {
	signer     ProofCreator
	signParams SignParameters
	headers    jose.Headers
}

// Sign returns signature.
func (s JoseSigner) Sign(data []byte) ([]byte, error) {
	return s.signer.SignJWT(s.signParams, data)
}

// Headers returns headers.
func (s JoseSigner) Headers() jose.Headers {
	return s.headers
}
