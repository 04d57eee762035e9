/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/trustbloc/vci-go/claims"
	"github.com/trustbloc/vci-go/verifiable"
)

// Credential formats the issuer can produce.
const (
	FormatJWTVC   = "jwt_vc"
	FormatSDJWTVC = "vc+sd-jwt"
)

// CredentialConfig describes one issuable credential.
type CredentialConfig struct {
	// Scope is the credential type the wallet requests, doubling as the
	// OAuth scope of the configuration.
	Scope string
	// Types are the credential type entries. VCType is prepended when the
	// list does not start with it.
	Types []string
	// Context are the JSON-LD context URIs, BaseContext prepended the same
	// way.
	Context []string
	// Format selects the credential representation.
	Format string
	// Issuer is the issuer id written into the credential.
	Issuer string
	// ExpiresIn bounds the credential lifetime. Zero issues credentials
	// without an expiration date.
	ExpiresIn time.Duration
	// SigningAlgorithm is the JWS algorithm name the credential is signed
	// with.
	SigningAlgorithm string
	// TokenJWSType is the typ header of the credential JWS.
	TokenJWSType string
	// Decoys is the number of decoy digests added to SD-JWT credentials.
	Decoys int
	// Mappers are the claim mapper specs populating the credential subject.
	Mappers []claims.Spec
}

type rawBuildConfig struct {
	SigningAlgorithm string `json:"signing_algorithm"`
	TokenJWSType     string `json:"token_jws_type"`
	NumberOfDecoys   int    `json:"number_of_decoys"`
}

type rawCredentialConfig struct {
	Scope       string         `json:"scope"`
	Format      string         `json:"format"`
	ExpiryInS   int64          `json:"expiry_in_s"`
	BuildConfig rawBuildConfig `json:"credential_build_config"`
}

// ConfigFromAttributes builds a credential configuration from the flat
// "vc.<name>.*" attribute keys of the named configuration. Keys of other
// configurations and keys without a matching field are ignored. Mapper specs
// are not part of the attribute map and are attached as given.
func ConfigFromAttributes(name string, attributes map[string]string, mappers []claims.Spec) (*CredentialConfig, error) {
	prefix := fmt.Sprintf("vc.%s.", name)

	nested := map[string]interface{}{}

	for key, value := range attributes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		insertAttribute(nested, strings.Split(strings.TrimPrefix(key, prefix), "."), value)
	}

	var raw rawCredentialConfig
	if err := decodeAttributes(nested, &raw); err != nil {
		return nil, fmt.Errorf("credential configuration %q: %w", name, err)
	}

	scope := raw.Scope
	if scope == "" {
		scope = name
	}

	return &CredentialConfig{
		Scope:            scope,
		Format:           raw.Format,
		ExpiresIn:        time.Duration(raw.ExpiryInS) * time.Second,
		SigningAlgorithm: raw.BuildConfig.SigningAlgorithm,
		TokenJWSType:     raw.BuildConfig.TokenJWSType,
		Decoys:           raw.BuildConfig.NumberOfDecoys,
		Mappers:          mappers,
	}, nil
}

func insertAttribute(node map[string]interface{}, path []string, value string) {
	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			node[segment] = child
		}

		node = child
	}

	node[path[len(path)-1]] = value
}

func decodeAttributes(attributes map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(attributes)
}

// normalize fills the defaults of the optional fields.
func (c *CredentialConfig) normalize() {
	if c.Format == "" {
		c.Format = FormatJWTVC
	}

	if c.TokenJWSType == "" {
		switch c.Format {
		case FormatSDJWTVC:
			c.TokenJWSType = FormatSDJWTVC
		default:
			c.TokenJWSType = "JWT"
		}
	}

	if len(c.Context) == 0 || c.Context[0] != verifiable.BaseContext {
		c.Context = append([]string{verifiable.BaseContext}, c.Context...)
	}

	if len(c.Types) == 0 {
		c.Types = []string{verifiable.VCType}

		if c.Scope != "" && c.Scope != verifiable.VCType {
			c.Types = append(c.Types, c.Scope)
		}

		return
	}

	if c.Types[0] != verifiable.VCType {
		c.Types = append([]string{verifiable.VCType}, c.Types...)
	}
}

func (c *CredentialConfig) validate() error {
	if c.Scope == "" {
		return errors.New("credential scope is required")
	}

	if c.Issuer == "" {
		return errors.New("credential issuer is required")
	}

	switch c.Format {
	case FormatJWTVC, FormatSDJWTVC:
	default:
		return &UnsupportedFormatError{Format: c.Format}
	}

	if c.SigningAlgorithm == "" {
		return errors.New("signing algorithm is required")
	}

	if _, err := verifiable.ParseJWSAlgorithm(c.SigningAlgorithm); err != nil {
		return err
	}

	if c.Decoys < 0 {
		return errors.New("decoy digest count cannot be negative")
	}

	return nil
}
