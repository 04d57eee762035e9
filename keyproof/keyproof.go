/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keyproof validates holder proof-of-possession tokens presented
// during credential issuance.
//
// A key proof is valid only when its signature verifies against the holder
// key embedded in the token itself and its audience, nonce and issuance time
// match what the issuer handed out for the session.
package keyproof

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	"github.com/veraison/go-cose"

	"github.com/trustbloc/vci-go/clock"
	"github.com/trustbloc/vci-go/jwt"
	proofdesc "github.com/trustbloc/vci-go/proof"
	"github.com/trustbloc/vci-go/proof/checker"
	"github.com/trustbloc/vci-go/proof/defaults"
)

const (
	// JWTProofType is the typ header required on JWT key proofs.
	JWTProofType = "openid4vci-proof+jwt"

	// DefaultClockSkew is the allowed distance between the proof issuance
	// time and the current time.
	DefaultClockSkew = 30 * time.Second
)

// Expected carries the audience and nonce the proof must be bound to.
type Expected struct {
	Audience string
	Nonce    string
}

// Result is the outcome of a successful proof validation.
type Result struct {
	// Key is the holder public key the proof was signed with.
	Key *jwk.JWK
	// IssuedAt is the proof issuance time.
	IssuedAt time.Time
	// Payload holds the full proof claim set.
	Payload map[string]interface{}
}

// Validator checks holder key proofs. Failed checks are terminal for the
// issuance request, none are retried.
type Validator struct {
	clock        clock.Provider
	skew         time.Duration
	supported    []proofdesc.JWTProofDescriptor
	proofChecker *checker.ProofChecker
}

// Opt configures a Validator.
type Opt func(v *Validator)

// WithClock overrides the time source used by freshness checks.
func WithClock(provider clock.Provider) Opt {
	return func(v *Validator) {
		v.clock = provider
	}
}

// WithClockSkew sets the allowed distance between the proof issuance time
// and the current time.
func WithClockSkew(skew time.Duration) Opt {
	return func(v *Validator) {
		v.skew = skew
	}
}

// WithSupportedAlgorithms restricts the accepted signing algorithms.
func WithSupportedAlgorithms(descs ...proofdesc.JWTProofDescriptor) Opt {
	return func(v *Validator) {
		v.supported = descs
	}
}

// NewValidator creates a Validator accepting the full default algorithm set.
func NewValidator(opts ...Opt) *Validator {
	v := &Validator{
		clock: clock.NewSystem(),
		skew:  DefaultClockSkew,
	}

	for _, opt := range opts {
		opt(v)
	}

	if len(v.supported) == 0 {
		v.supported = defaults.JWTDescriptors()
	}

	v.proofChecker = defaults.NewDefaultProofChecker()

	return v
}

type proofClaims struct {
	jwt.Claims
	Nonce string `json:"nonce,omitempty"`
}

// ValidateJWT checks a JWT key proof. The checks run in a fixed order and
// the first failure is terminal: structure, typ header, allowed algorithm,
// embedded holder key, signature against that key, audience, nonce and
// issuance time freshness.
func (v *Validator) ValidateJWT(rawProof string, expected Expected) (*Result, error) {
	if !jose.IsCompactJWS(rawProof) {
		return nil, &MalformedProofError{Reason: "proof of compact JWS form is supported only"}
	}

	parsed, err := jose.ParseJWS(rawProof, noVerify{})
	if err != nil {
		return nil, &MalformedProofError{Reason: "parse proof", cause: err}
	}

	headers := parsed.ProtectedHeaders

	if typ, _ := headers.Type(); typ != JWTProofType {
		return nil, &InvalidProofTypeError{Typ: typ}
	}

	if err = jwt.CheckHeaders(headers); err != nil {
		return nil, &MalformedProofError{Reason: "check proof headers", cause: err}
	}

	alg, ok := headers.Algorithm()
	if !ok {
		return nil, &MalformedProofError{Reason: "invalid alg header"}
	}

	if !v.jwtAlgAllowed(alg) {
		return nil, &MalformedProofError{Reason: fmt.Sprintf("alg %q is not allowed", alg)}
	}

	key, err := embeddedJWK(headers)
	if err != nil {
		return nil, err
	}

	payload, err := jwt.PayloadToMap(parsed.Payload)
	if err != nil {
		return nil, &MalformedProofError{Reason: "decode proof claims", cause: err}
	}

	claims := &proofClaims{}
	if err = json.Unmarshal(parsed.Payload, claims); err != nil {
		return nil, &MalformedProofError{Reason: "decode proof claims", cause: err}
	}

	if _, err = jose.ParseJWS(rawProof, &keyVerifier{proofChecker: v.proofChecker, key: key}); err != nil {
		return nil, &InvalidSignatureError{cause: err}
	}

	if !claims.Audience.Contains(expected.Audience) {
		return nil, &AudienceMismatchError{Expected: expected.Audience, Actual: strings.Join(claims.Audience, ",")}
	}

	if claims.Nonce != expected.Nonce {
		return nil, &NonceMismatchError{Expected: expected.Nonce, Actual: claims.Nonce}
	}

	if claims.IssuedAt == nil {
		return nil, &MalformedProofError{Reason: "iat claim is required"}
	}

	issuedAt := claims.IssuedAt.Time()

	if err = v.checkFreshness(issuedAt); err != nil {
		return nil, err
	}

	return &Result{Key: key, IssuedAt: issuedAt, Payload: payload}, nil
}

func (v *Validator) checkFreshness(issuedAt time.Time) error {
	now := v.clock.Now()

	if d := now.Sub(issuedAt); d > v.skew || d < -v.skew {
		return &ExpiredProofError{IssuedAt: issuedAt, Now: now, Skew: v.skew}
	}

	return nil
}

func (v *Validator) jwtAlgAllowed(alg string) bool {
	for _, desc := range v.supported {
		if desc.JWTAlgorithm() == alg {
			return true
		}
	}

	return false
}

func (v *Validator) cwtAlgAllowed(algo cose.Algorithm) bool {
	for _, desc := range v.supported {
		if desc.CWTAlgorithm() == algo {
			return true
		}
	}

	return false
}

func embeddedJWK(headers jose.Headers) (*jwk.JWK, error) {
	if _, ok := headers[jose.HeaderJSONWebKey]; !ok {
		return nil, &MalformedProofError{Reason: "jwk header is required"}
	}

	key, ok := headers.JWK()
	if !ok {
		return nil, &MalformedProofError{Reason: "invalid jwk header"}
	}

	return key, nil
}

type noVerify struct{}

func (noVerify) Verify(_ jose.Headers, _, _, _ []byte) error {
	return nil
}

// keyVerifier checks the jws signature against a fixed holder key.
type keyVerifier struct {
	proofChecker *checker.ProofChecker
	key          *jwk.JWK
}

func (v *keyVerifier) Verify(joseHeaders jose.Headers, _, signingInput, signature []byte) error {
	return v.proofChecker.CheckJWTProof(joseHeaders, v.key, signingInput, signature)
}
