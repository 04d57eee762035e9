/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuance orchestrates credential issuance: it validates the holder
// key proof, maps claims into the credential subject and signs the credential
// in the configured format.
package issuance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"
	"github.com/google/uuid"
	"github.com/trustbloc/kms-go/doc/jose"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	afgotime "github.com/trustbloc/did-go/doc/util/time"

	"github.com/trustbloc/vci-go/claims"
	"github.com/trustbloc/vci-go/clock"
	"github.com/trustbloc/vci-go/jwt"
	"github.com/trustbloc/vci-go/keyproof"
	"github.com/trustbloc/vci-go/keystore"
	"github.com/trustbloc/vci-go/proof/creator"
	sdissuer "github.com/trustbloc/vci-go/sdjwt/issuer"
	"github.com/trustbloc/vci-go/verifiable"
)

var logger = log.New("issuance")

// State tracks the progress of one issuance request.
type State int

// Issuance states in pipeline order.
const (
	StateProofPending State = iota
	StateProofValid
	StateClaimsMapped
	StateSigned
	StateReturned
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateProofPending:
		return "proof-pending"
	case StateProofValid:
		return "proof-valid"
	case StateClaimsMapped:
		return "claims-mapped"
	case StateSigned:
		return "signed"
	case StateReturned:
		return "returned"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the dependencies and credential configurations of a Service.
// KeyStore is required. Clock defaults to the system clock, ProofValidator to
// a validator sharing that clock.
type Config struct {
	KeyStore       *keystore.Store
	ProofValidator *keyproof.Validator
	Clock          clock.Provider
	Credentials    []CredentialConfig
}

// Service issues credentials. It keeps no per-request state and is safe for
// concurrent use.
type Service struct {
	keys      *keystore.Store
	validator *keyproof.Validator
	clock     clock.Provider
	supported map[string]*supportedCredential
}

type supportedCredential struct {
	config   CredentialConfig
	pipeline *claims.Pipeline
}

// NewService resolves every credential configuration into a ready mapper
// pipeline. Invalid configurations fail here, not at request time.
func NewService(config *Config) (*Service, error) {
	if config.KeyStore == nil {
		return nil, errors.New("key store is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	validator := config.ProofValidator
	if validator == nil {
		validator = keyproof.NewValidator(keyproof.WithClock(clk))
	}

	service := &Service{
		keys:      config.KeyStore,
		validator: validator,
		clock:     clk,
		supported: map[string]*supportedCredential{},
	}

	for _, cfg := range config.Credentials {
		cfg.normalize()

		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("credential configuration %q: %w", cfg.Scope, err)
		}

		pipeline, err := claims.NewPipeline(cfg.Mappers, claims.WithClock(clk))
		if err != nil {
			return nil, fmt.Errorf("credential configuration %q: %w", cfg.Scope, err)
		}

		if _, exists := service.supported[cfg.Scope]; exists {
			return nil, fmt.Errorf("credential configuration %q is registered twice", cfg.Scope)
		}

		service.supported[cfg.Scope] = &supportedCredential{config: cfg, pipeline: pipeline}
	}

	return service, nil
}

// SupportedCredentials returns the normalized credential configurations
// ordered by scope.
func (s *Service) SupportedCredentials() []CredentialConfig {
	list := make([]CredentialConfig, 0, len(s.supported))

	for _, supported := range s.supported {
		list = append(list, supported.config)
	}

	slices.SortFunc(list, func(a, b CredentialConfig) int {
		return strings.Compare(a.Scope, b.Scope)
	})

	return list
}

// Request is one credential issuance request.
type Request struct {
	// CredentialType selects the credential configuration by scope.
	CredentialType string
	// Proof is the holder key proof in compact JWS form.
	Proof string
	// ExpectedAudience is the issuer identifier the proof must be addressed
	// to.
	ExpectedAudience string
	// ExpectedNonce is the challenge the proof must answer. Empty skips the
	// nonce check.
	ExpectedNonce string
	// UserAttributes and Roles feed the claim mappers.
	UserAttributes map[string]interface{}
	Roles          map[string][]string
}

// Response is the issued credential.
type Response struct {
	Format     string
	Credential string
	State      State
}

// Issue runs one request through proof validation, claim mapping and signing.
// Returned errors keep their kind, so callers can match keyproof and keystore
// error types with errors.As.
func (s *Service) Issue(req Request) (*Response, error) {
	run := newRun(req.CredentialType)

	supported, ok := s.supported[req.CredentialType]
	if !ok {
		return nil, run.fail(fmt.Errorf("no credential configuration for type %q", req.CredentialType))
	}

	cfg := supported.config

	proof, err := s.validator.ValidateJWT(req.Proof, keyproof.Expected{
		Audience: req.ExpectedAudience,
		Nonce:    req.ExpectedNonce,
	})
	if err != nil {
		return nil, run.fail(fmt.Errorf("validate key proof: %w", err))
	}

	run.advance(StateProofValid)

	claimedAt := proof.IssuedAt

	mapped, err := supported.pipeline.Apply(claims.Context{
		CredentialType: req.CredentialType,
		UserAttributes: req.UserAttributes,
		Roles:          req.Roles,
		ClaimedTime:    &claimedAt,
	})
	if err != nil {
		return nil, run.fail(fmt.Errorf("map claims: %w", err))
	}

	run.advance(StateClaimsMapped)

	key, err := s.keys.Resolve(cfg.SigningAlgorithm, cfg.Format)
	if err != nil {
		return nil, run.fail(fmt.Errorf("resolve signing key: %w", err))
	}

	var credential string

	switch cfg.Format {
	case FormatJWTVC:
		credential, err = s.issueJWTVC(&cfg, key, mapped)
	case FormatSDJWTVC:
		credential, err = s.issueSDJWTVC(&cfg, key, proof, mapped)
	default:
		err = &UnsupportedFormatError{Format: cfg.Format}
	}

	if err != nil {
		return nil, run.fail(err)
	}

	run.advance(StateSigned)
	run.advance(StateReturned)

	return &Response{Format: cfg.Format, Credential: credential, State: run.state}, nil
}

func (s *Service) issueJWTVC(cfg *CredentialConfig, key *keystore.SigningKey, mapped *claims.Result) (string, error) {
	vc, err := s.buildCredential(cfg, mapped.Subject)
	if err != nil {
		return "", err
	}

	jwtClaims, err := vc.JWTClaims(false)
	if err != nil {
		return "", err
	}

	proofCreator, err := signerFor(key)
	if err != nil {
		return "", err
	}

	signed, err := jwt.NewSigned(jwtClaims, jwt.SignParameters{
		KeyID:             key.KeyID,
		JWTAlg:            cfg.SigningAlgorithm,
		AdditionalHeaders: jose.Headers{jose.HeaderType: cfg.TokenJWSType},
	}, proofCreator)
	if err != nil {
		return "", &SigningFailureError{Algorithm: cfg.SigningAlgorithm, KeyID: key.KeyID, cause: err}
	}

	return signed.Serialize(false)
}

func (s *Service) issueSDJWTVC(cfg *CredentialConfig, key *keystore.SigningKey, proof *keyproof.Result,
	mapped *claims.Result) (string, error) {
	proofCreator, err := signerFor(key)
	if err != nil {
		return "", err
	}

	joseSigner, err := jwt.NewJOSESigner(jwt.SignParameters{
		KeyID:  key.KeyID,
		JWTAlg: cfg.SigningAlgorithm,
	}, proofCreator)
	if err != nil {
		return "", &SigningFailureError{Algorithm: cfg.SigningAlgorithm, KeyID: key.KeyID, cause: err}
	}

	sdClaims := make(map[string]interface{}, len(mapped.Subject)+1)
	for name, value := range mapped.Subject {
		sdClaims[name] = value
	}

	sdClaims["vct"] = cfg.Scope

	disclosable := map[string]bool{}
	for _, property := range mapped.Disclosable {
		// nested subject properties disclose from their root claim
		root, _, _ := strings.Cut(property, ".")
		disclosable[root] = true
	}

	// the type claim is never selectively disclosable
	disclosable["vct"] = false

	var alwaysVisible []string

	for name := range sdClaims {
		if !disclosable[name] {
			alwaysVisible = append(alwaysVisible, name)
		}
	}

	issued := s.issuedAt()

	opts := []sdissuer.NewOpt{
		sdissuer.WithJTI(fmt.Sprintf("urn:uuid:%s", uuid.NewString())),
		sdissuer.WithIssuedAt(josejwt.NewNumericDate(issued)),
		sdissuer.WithNonSelectivelyDisclosableClaims(alwaysVisible),
		sdissuer.WithDecoyDigests(cfg.Decoys),
	}

	if cfg.ExpiresIn > 0 {
		opts = append(opts, sdissuer.WithExpiry(josejwt.NewNumericDate(issued.Add(cfg.ExpiresIn))))
	}

	if proof.Key != nil {
		opts = append(opts, sdissuer.WithHolderPublicKey(proof.Key))
	}

	token, err := sdissuer.New(cfg.Issuer, sdClaims, jose.Headers{jose.HeaderType: cfg.TokenJWSType},
		joseSigner, opts...)
	if err != nil {
		return "", &SigningFailureError{Algorithm: cfg.SigningAlgorithm, KeyID: key.KeyID, cause: err}
	}

	return token.Serialize(false)
}

func (s *Service) buildCredential(cfg *CredentialConfig, subjectClaims map[string]interface{}) (*verifiable.Credential, error) { // nolint:lll
	subject, err := verifiable.SubjectFromJSON(subjectClaims)
	if err != nil {
		return nil, fmt.Errorf("credential subject: %w", err)
	}

	issued := s.issuedAt()

	vcc := verifiable.CredentialContents{
		Context: cfg.Context,
		ID:      fmt.Sprintf("urn:uuid:%s", uuid.NewString()),
		Types:   cfg.Types,
		Subject: []verifiable.Subject{subject},
		Issuer:  &verifiable.Issuer{ID: cfg.Issuer},
		Issued:  afgotime.NewTime(issued),
	}

	if cfg.ExpiresIn > 0 {
		vcc.Expired = afgotime.NewTime(issued.Add(cfg.ExpiresIn))
	}

	return verifiable.CreateCredential(vcc, nil)
}

// issuedAt reads the clock at second precision, the granularity credential
// time claims are expressed in.
func (s *Service) issuedAt() time.Time {
	return time.Unix(s.clock.UnixSeconds(), 0).UTC()
}

func signerFor(key *keystore.SigningKey) (*creator.ProofCreator, error) {
	desc, ok := key.Descriptor()
	if !ok {
		return nil, fmt.Errorf("no proof descriptor for algorithm %q", key.Algorithm)
	}

	return creator.New(creator.WithJWTAlg(desc, key.Signer)), nil
}

type issuanceRun struct {
	credentialType string
	state          State
}

func newRun(credentialType string) *issuanceRun {
	return &issuanceRun{credentialType: credentialType, state: StateProofPending}
}

func (r *issuanceRun) advance(next State) {
	r.state = next

	logger.Debug("issuance state changed",
		zap.String("credential_type", r.credentialType),
		zap.Stringer("state", next))
}

func (r *issuanceRun) fail(err error) error {
	r.state = StateFailed

	logger.Warn("issuance failed",
		zap.String("credential_type", r.credentialType),
		zap.Error(err))

	return err
}
