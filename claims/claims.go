/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package claims maps issuance context (user attributes, roles, time) onto
// credential subject claims through configured mapper pipelines.
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/trustbloc/vci-go/clock"
)

// Claim mapper type discriminators.
const (
	TypeUserAttribute = "oid4vc-user-attribute-mapper"
	TypeStaticClaim   = "oid4vc-static-claim-mapper"
	TypeTargetRole    = "oid4vc-target-role-mapper"
	TypeSubjectID     = "oid4vc-subject-id-mapper"
	TypeIssuedAtTime  = "oid4vc-issued-at-time-claim-mapper"
)

// Spec configures one claim mapper. Type selects the mapper variant, Config
// carries the variant keys (userAttribute, staticValue, clientId,
// truncateToTimeUnit, valueSource). SubjectProperty uses sjson path syntax,
// so nested subject properties are allowed.
type Spec struct {
	ID                     string                 `json:"id,omitempty"`
	Type                   string                 `json:"type"`
	SubjectProperty        string                 `json:"subjectProperty,omitempty"`
	Config                 map[string]interface{} `json:"config,omitempty"`
	CredentialTypes        []string               `json:"supportedCredentialTypes,omitempty"`
	SelectivelyDisclosable bool                   `json:"selectivelyDisclosable,omitempty"`
}

// Context is the per-issuance input of a pipeline run. Roles are keyed by
// client id, realm-level roles under the empty key. ClaimedTime carries the
// validated proof issuance time for CLAIMED-sourced time mappers.
type Context struct {
	CredentialType string
	UserAttributes map[string]interface{}
	Roles          map[string][]string
	ClaimedTime    *time.Time
}

// Result is the outcome of one pipeline run. Disclosable lists the subject
// properties flagged for selective disclosure, in write order.
type Result struct {
	Subject     map[string]interface{}
	Disclosable []string
}

// Pipeline applies an ordered list of claim mappers. Pipelines are immutable
// after construction and safe for concurrent Apply calls.
type Pipeline struct {
	mappers []mapper
	clock   clock.Provider
}

// PipelineOpt configures a Pipeline.
type PipelineOpt func(pipeline *Pipeline)

// WithClock sets the time source used by time-valued mappers.
func WithClock(provider clock.Provider) PipelineOpt {
	return func(pipeline *Pipeline) {
		pipeline.clock = provider
	}
}

// NewPipeline resolves every spec to a concrete mapper. Unknown mapper types
// and invalid configs fail here, not at request time.
func NewPipeline(specs []Spec, opts ...PipelineOpt) (*Pipeline, error) {
	pipeline := &Pipeline{clock: clock.NewSystem()}

	for _, opt := range opts {
		opt(pipeline)
	}

	for _, spec := range specs {
		m, err := newMapper(spec)
		if err != nil {
			return nil, fmt.Errorf("claim mapper %q: %w", spec.ID, err)
		}

		pipeline.mappers = append(pipeline.mappers, m)
	}

	return pipeline, nil
}

// Apply runs the mappers in pipeline order over an empty subject document.
// Later writes win on the same property. A mapper whose credential-type set
// excludes the requested type is skipped, not an error.
func (p *Pipeline) Apply(pctx Context) (*Result, error) {
	doc := []byte(`{}`)

	var order []string

	disclosableByProperty := map[string]bool{}

	for _, m := range p.mappers {
		if !m.applies(pctx.CredentialType) {
			continue
		}

		updated, property, err := m.apply(doc, pctx, p.clock)
		if err != nil {
			return nil, err
		}

		doc = updated

		if property == "" {
			continue
		}

		if _, seen := disclosableByProperty[property]; !seen {
			order = append(order, property)
		}

		// the disclosure policy of the last writer wins, same as the value
		disclosableByProperty[property] = m.disclosable()
	}

	subject, err := decodeSubject(doc)
	if err != nil {
		return nil, err
	}

	var disclosable []string

	for _, property := range order {
		if disclosableByProperty[property] {
			disclosable = append(disclosable, property)
		}
	}

	return &Result{Subject: subject, Disclosable: disclosable}, nil
}

func newMapper(spec Spec) (mapper, error) {
	switch spec.Type {
	case TypeUserAttribute:
		return newUserAttributeMapper(spec)
	case TypeStaticClaim:
		return newStaticClaimMapper(spec)
	case TypeTargetRole:
		return newTargetRoleMapper(spec)
	case TypeSubjectID:
		return newSubjectIDMapper(spec)
	case TypeIssuedAtTime:
		return newIssuedAtTimeMapper(spec)
	default:
		return nil, fmt.Errorf("unknown claim mapper type %q", spec.Type)
	}
}

func decodeConfig(config map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(config)
}

func decodeSubject(doc []byte) (map[string]interface{}, error) {
	subject := map[string]interface{}{}

	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()

	if err := decoder.Decode(&subject); err != nil {
		return nil, err
	}

	return subject, nil
}
