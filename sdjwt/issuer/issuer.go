/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

/*
Package issuer enables the Issuer: An entity that creates SD-JWTs.

An SD-JWT is a digitally signed document containing digests over the
selectively disclosable claims (per claim: a random salt, the claim name and
the claim value). It MAY further contain clear-text claims that are always
disclosed to the Verifier. It MUST be digitally signed using the Issuer's
private key.

The Issuer creates a Disclosure for each selectively disclosable claim, sends
the Disclosures to the Holder together with the SD-JWT in the combined format
for issuance and puts only the disclosure digests into the signed payload.
*/
package issuer

import (
	"crypto"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	mathrand "math/rand"
	"strings"

	josejwt "github.com/go-jose/go-jose/v3/jwt"

	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/kms-go/doc/jose/jwk"

	"github.com/trustbloc/vci-go/jwt"
	"github.com/trustbloc/vci-go/sdjwt/common"
	jsonutil "github.com/trustbloc/vci-go/util/json"
)

const (
	defaultHash = crypto.SHA256

	saltSizeBytes = 128 / 8
)

// newOpts holds options for creating new SD-JWT.
type newOpts struct {
	Subject string
	JTI     string

	Expiry    *josejwt.NumericDate
	NotBefore *josejwt.NumericDate
	IssuedAt  *josejwt.NumericDate

	HolderPublicKey *jwk.JWK

	HashAlg crypto.Hash

	jsonMarshal func(v interface{}) ([]byte, error)
	getSalt     func() (string, error)

	decoyDigestsCount int

	nonSDClaimsMap map[string]bool
}

// NewOpt is the SD-JWT New option.
type NewOpt func(opts *newOpts)

// WithJSONMarshaller is option is for marshalling disclosure.
func WithJSONMarshaller(jsonMarshal func(v interface{}) ([]byte, error)) NewOpt {
	return func(opts *newOpts) {
		opts.jsonMarshal = jsonMarshal
	}
}

// WithSaltFnc is an option for generating salt. Mostly used for testing.
// A new salt MUST be chosen for each claim independently of other salts.
// The RECOMMENDED minimum length of the randomly-generated portion of the salt is 128 bits.
// It is RECOMMENDED to base64url-encode the salt value, producing a string.
func WithSaltFnc(fnc func() (string, error)) NewOpt {
	return func(opts *newOpts) {
		opts.getSalt = fnc
	}
}

// WithIssuedAt is an option for SD-JWT payload. This is a clear-text claim that is always disclosed.
func WithIssuedAt(issuedAt *josejwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.IssuedAt = issuedAt
	}
}

// WithExpiry is an option for SD-JWT payload. This is a clear-text claim that is always disclosed.
func WithExpiry(expiry *josejwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.Expiry = expiry
	}
}

// WithNotBefore is an option for SD-JWT payload. This is a clear-text claim that is always disclosed.
func WithNotBefore(notBefore *josejwt.NumericDate) NewOpt {
	return func(opts *newOpts) {
		opts.NotBefore = notBefore
	}
}

// WithSubject is an option for SD-JWT payload. This is a clear-text claim that is always disclosed.
func WithSubject(subject string) NewOpt {
	return func(opts *newOpts) {
		opts.Subject = subject
	}
}

// WithJTI is an option for SD-JWT payload. This is a clear-text claim that is always disclosed.
func WithJTI(jti string) NewOpt {
	return func(opts *newOpts) {
		opts.JTI = jti
	}
}

// WithHolderPublicKey is an option for SD-JWT payload.
// The Holder can prove legitimate possession of an SD-JWT by proving control over the same private key during
// the issuance and presentation. An SD-JWT with Holder Binding contains a public key or a reference to a public key
// that matches to the private key controlled by the Holder.
// The "cnf" claim value MUST represent only a single proof-of-possession key. This implementation is using CNF "jwk".
func WithHolderPublicKey(jwk *jwk.JWK) NewOpt {
	return func(opts *newOpts) {
		opts.HolderPublicKey = jwk
	}
}

// WithHashAlgorithm is an option for hashing disclosures.
func WithHashAlgorithm(alg crypto.Hash) NewOpt {
	return func(opts *newOpts) {
		opts.HashAlg = alg
	}
}

// WithDecoyDigests is an option for adding the given number of decoy digests
// to the digest array (default is 0).
func WithDecoyDigests(count int) NewOpt {
	return func(opts *newOpts) {
		opts.decoyDigestsCount = count
	}
}

// WithNonSelectivelyDisclosableClaims is an option to provide top-level claim names
// that are kept in clear text instead of being turned into disclosures.
func WithNonSelectivelyDisclosableClaims(nonSDClaims []string) NewOpt {
	return func(opts *newOpts) {
		opts.nonSDClaimsMap = common.SliceToMap(nonSDClaims)
	}
}

// New creates new signed Selective Disclosure JWT based on input claims.
// The Issuer MUST create a Disclosure for each selectively disclosable claim as follows:
// Create an array of three elements in this order:
//
//	A salt value. Generated by the system, the salt value MUST be unique for each claim that is to be selectively
//	disclosed.
//	The claim name, or key, as it would be used in a regular JWT body. This MUST be a string.
//	The claim's value, as it would be used in a regular JWT body. The value MAY be of any type that is allowed in JSON,
//	including numbers, strings, booleans, arrays, and objects.
//
// Then JSON-encode the array such that an UTF-8 string is produced.
// Then base64url-encode the byte representation of the UTF-8 string to create the Disclosure.
func New(issuer string, claims interface{}, headers jose.Headers,
	signer jose.Signer, opts ...NewOpt) (*SelectiveDisclosureJWT, error) {
	nOpts := &newOpts{
		jsonMarshal:    json.Marshal,
		getSalt:        generateSalt,
		HashAlg:        defaultHash,
		nonSDClaimsMap: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(nOpts)
	}

	claimsMap, err := jwt.PayloadToMap(claims)
	if err != nil {
		return nil, fmt.Errorf("convert payload to map: %w", err)
	}

	// check for the presence of the _sd claim in claims map
	found := common.KeyExistsInMap(common.SDKey, claimsMap)
	if found {
		return nil, fmt.Errorf("key '%s' cannot be present in the claims", common.SDKey)
	}

	disclosures, digests, err := createDisclosuresAndDigests(claimsMap, nOpts)
	if err != nil {
		return nil, err
	}

	payload, err := jsonutil.MergeCustomFields(createPayload(issuer, nOpts), digests)
	if err != nil {
		return nil, fmt.Errorf("failed to merge payload and digests: %w", err)
	}

	signedJWT, err := jwt.NewJoseSigned(payload, headers, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create SD-JWT from payload[%+v]: %w", payload, err)
	}

	return &SelectiveDisclosureJWT{Disclosures: disclosures, SignedJWT: signedJWT}, nil
}

func createPayload(issuer string, nOpts *newOpts) *payload {
	var cnf map[string]interface{}
	if nOpts.HolderPublicKey != nil {
		cnf = make(map[string]interface{})
		cnf["jwk"] = nOpts.HolderPublicKey
	}

	return &payload{
		Issuer:    issuer,
		JTI:       nOpts.JTI,
		Subject:   nOpts.Subject,
		IssuedAt:  nOpts.IssuedAt,
		Expiry:    nOpts.Expiry,
		NotBefore: nOpts.NotBefore,
		CNF:       cnf,
		SDAlg:     strings.ToLower(nOpts.HashAlg.String()),
	}
}

func createDisclosuresAndDigests(claims map[string]interface{}, opts *newOpts) ([]string, map[string]interface{}, error) { // nolint:lll
	var disclosures []string

	digestsMap := make(map[string]interface{})

	for key, value := range claims {
		if _, ok := opts.nonSDClaimsMap[key]; ok {
			digestsMap[key] = value

			continue
		}

		disclosure, err := createDisclosure(key, value, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("create disclosure: %w", err)
		}

		disclosures = append(disclosures, disclosure)
	}

	digests, err := createDigests(disclosures, opts)
	if err != nil {
		return nil, nil, err
	}

	decoys, err := createDecoyDigests(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create decoy digests: %w", err)
	}

	digests = append(digests, decoys...)

	mathrand.Shuffle(len(digests), func(i, j int) {
		digests[i], digests[j] = digests[j], digests[i]
	})

	if len(digests) > 0 {
		digestsMap[common.SDKey] = digests
	}

	return disclosures, digestsMap, nil
}

func createDisclosure(key string, value interface{}, opts *newOpts) (string, error) {
	salt, err := opts.getSalt()
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	disclosure := []interface{}{salt, key, value}

	disclosureBytes, err := opts.jsonMarshal(disclosure)
	if err != nil {
		return "", fmt.Errorf("marshal disclosure: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(disclosureBytes), nil
}

func createDigests(disclosures []string, opts *newOpts) ([]string, error) {
	var digests []string

	for _, disclosure := range disclosures {
		digest, err := common.GetHash(opts.HashAlg, disclosure)
		if err != nil {
			return nil, fmt.Errorf("hash disclosure: %w", err)
		}

		digests = append(digests, digest)
	}

	return digests, nil
}

// createDecoyDigests produces digests of fresh salts so the number of real
// disclosures is not derivable from the digest array.
func createDecoyDigests(opts *newOpts) ([]string, error) {
	var digests []string

	for i := 0; i < opts.decoyDigestsCount; i++ {
		salt, err := opts.getSalt()
		if err != nil {
			return nil, err
		}

		digest, err := common.GetHash(opts.HashAlg, salt)
		if err != nil {
			return nil, err
		}

		digests = append(digests, digest)
	}

	return digests, nil
}

// SelectiveDisclosureJWT defines Selective Disclosure JSON Web Token (https://tools.ietf.org/html/rfc7519)
type SelectiveDisclosureJWT struct {
	SignedJWT   *jwt.JSONWebToken
	Disclosures []string
}

// DecodeClaims fills input c with claims of a token.
func (j *SelectiveDisclosureJWT) DecodeClaims(c interface{}) error {
	return j.SignedJWT.DecodeClaims(c)
}

// LookupStringHeader makes look up of particular header with string value.
func (j *SelectiveDisclosureJWT) LookupStringHeader(name string) string {
	return j.SignedJWT.LookupStringHeader(name)
}

// Serialize makes combined format for issuance serialization of token.
func (j *SelectiveDisclosureJWT) Serialize(detached bool) (string, error) {
	if j.SignedJWT == nil {
		return "", errors.New("JWS serialization is supported only")
	}

	signedJWT, err := j.SignedJWT.Serialize(detached)
	if err != nil {
		return "", err
	}

	cf := common.CombinedFormatForIssuance{
		SDJWT:       signedJWT,
		Disclosures: j.Disclosures,
	}

	return cf.Serialize(), nil
}

func generateSalt() (string, error) {
	salt := make([]byte, saltSizeBytes)

	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	// it is RECOMMENDED to base64url-encode the salt value, producing a string.
	return base64.RawURLEncoding.EncodeToString(salt), nil
}

// payload represents SD-JWT payload.
type payload struct {
	// registered claim names
	Issuer    string               `json:"iss,omitempty"`
	Subject   string               `json:"sub,omitempty"`
	JTI       string               `json:"jti,omitempty"`
	Expiry    *josejwt.NumericDate `json:"exp,omitempty"`
	NotBefore *josejwt.NumericDate `json:"nbf,omitempty"`
	IssuedAt  *josejwt.NumericDate `json:"iat,omitempty"`

	// SD-JWT specific
	CNF   map[string]interface{} `json:"cnf,omitempty"`
	SDAlg string                 `json:"_sd_alg,omitempty"`
}
