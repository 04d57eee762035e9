/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tidwall/sjson"
	"golang.org/x/exp/slices"

	"github.com/trustbloc/vci-go/clock"
)

// Value sources of the issued-at time mapper.
const (
	ValueSourceCompute = "COMPUTE"
	ValueSourceClaimed = "CLAIMED"
)

// Truncation units of the issued-at time mapper.
const (
	TimeUnitSeconds = "SECONDS"
	TimeUnitMinutes = "MINUTES"
	TimeUnitHours   = "HOURS"
	TimeUnitDays    = "DAYS"
)

type mapper interface {
	applies(credentialType string) bool
	disclosable() bool

	// apply writes the mapper claim into the subject document and returns
	// the updated document plus the written property, empty on a no-op.
	apply(doc []byte, pctx Context, clk clock.Provider) ([]byte, string, error)
}

type mapperBase struct {
	property        string
	credentialTypes []string
	sd              bool
}

func newBase(spec Spec, defaultProperty string) (mapperBase, error) {
	property := spec.SubjectProperty
	if property == "" {
		property = defaultProperty
	}

	if property == "" {
		return mapperBase{}, errors.New("subjectProperty is required")
	}

	return mapperBase{
		property:        property,
		credentialTypes: spec.CredentialTypes,
		sd:              spec.SelectivelyDisclosable,
	}, nil
}

func (b *mapperBase) applies(credentialType string) bool {
	return len(b.credentialTypes) == 0 || lo.Contains(b.credentialTypes, credentialType)
}

func (b *mapperBase) disclosable() bool {
	return b.sd
}

type userAttributeMapper struct {
	mapperBase
	attribute string
}

type userAttributeConfig struct {
	UserAttribute string `json:"userAttribute"`
}

func newUserAttributeMapper(spec Spec) (*userAttributeMapper, error) {
	var config userAttributeConfig
	if err := decodeConfig(spec.Config, &config); err != nil {
		return nil, err
	}

	if config.UserAttribute == "" {
		return nil, errors.New("userAttribute config is required")
	}

	base, err := newBase(spec, "")
	if err != nil {
		return nil, err
	}

	return &userAttributeMapper{mapperBase: base, attribute: config.UserAttribute}, nil
}

func (m *userAttributeMapper) apply(doc []byte, pctx Context, _ clock.Provider) ([]byte, string, error) {
	value, ok := pctx.UserAttributes[m.attribute]
	if !ok {
		return doc, "", nil
	}

	updated, err := sjson.SetBytes(doc, m.property, value)
	if err != nil {
		return nil, "", err
	}

	return updated, m.property, nil
}

type staticClaimMapper struct {
	mapperBase
	value interface{}
}

type staticClaimConfig struct {
	StaticValue interface{} `json:"staticValue"`
}

func newStaticClaimMapper(spec Spec) (*staticClaimMapper, error) {
	var config staticClaimConfig
	if err := decodeConfig(spec.Config, &config); err != nil {
		return nil, err
	}

	if config.StaticValue == nil {
		return nil, errors.New("staticValue config is required")
	}

	base, err := newBase(spec, "")
	if err != nil {
		return nil, err
	}

	return &staticClaimMapper{mapperBase: base, value: config.StaticValue}, nil
}

func (m *staticClaimMapper) apply(doc []byte, _ Context, _ clock.Provider) ([]byte, string, error) {
	updated, err := sjson.SetBytes(doc, m.property, m.value)
	if err != nil {
		return nil, "", err
	}

	return updated, m.property, nil
}

type targetRoleMapper struct {
	mapperBase
	clientID string
}

type targetRoleConfig struct {
	ClientID string `json:"clientId"`
}

func newTargetRoleMapper(spec Spec) (*targetRoleMapper, error) {
	var config targetRoleConfig
	if err := decodeConfig(spec.Config, &config); err != nil {
		return nil, err
	}

	base, err := newBase(spec, "roles")
	if err != nil {
		return nil, err
	}

	return &targetRoleMapper{mapperBase: base, clientID: config.ClientID}, nil
}

func (m *targetRoleMapper) apply(doc []byte, pctx Context, _ clock.Provider) ([]byte, string, error) {
	roles := lo.Uniq(pctx.Roles[m.clientID])
	slices.Sort(roles)

	// an empty role set is written as an empty list, not left absent
	updated, err := sjson.SetBytes(doc, m.property, roles)
	if err != nil {
		return nil, "", err
	}

	return updated, m.property, nil
}

type subjectIDMapper struct {
	mapperBase
}

func newSubjectIDMapper(spec Spec) (*subjectIDMapper, error) {
	base, err := newBase(spec, "id")
	if err != nil {
		return nil, err
	}

	return &subjectIDMapper{mapperBase: base}, nil
}

func (m *subjectIDMapper) apply(doc []byte, _ Context, _ clock.Provider) ([]byte, string, error) {
	updated, err := sjson.SetBytes(doc, m.property, fmt.Sprintf("urn:uuid:%s", uuid.NewString()))
	if err != nil {
		return nil, "", err
	}

	return updated, m.property, nil
}

type issuedAtTimeMapper struct {
	mapperBase
	truncateTo  string
	valueSource string
}

type issuedAtTimeConfig struct {
	TruncateToTimeUnit string `json:"truncateToTimeUnit"`
	ValueSource        string `json:"valueSource"`
}

func newIssuedAtTimeMapper(spec Spec) (*issuedAtTimeMapper, error) {
	var config issuedAtTimeConfig
	if err := decodeConfig(spec.Config, &config); err != nil {
		return nil, err
	}

	switch config.TruncateToTimeUnit {
	case "", TimeUnitSeconds, TimeUnitMinutes, TimeUnitHours, TimeUnitDays:
	default:
		return nil, fmt.Errorf("unsupported time unit %q", config.TruncateToTimeUnit)
	}

	source := config.ValueSource
	if source == "" {
		source = ValueSourceCompute
	}

	if source != ValueSourceCompute && source != ValueSourceClaimed {
		return nil, fmt.Errorf("unsupported value source %q", config.ValueSource)
	}

	base, err := newBase(spec, "iat")
	if err != nil {
		return nil, err
	}

	return &issuedAtTimeMapper{mapperBase: base, truncateTo: config.TruncateToTimeUnit, valueSource: source}, nil
}

func (m *issuedAtTimeMapper) apply(doc []byte, pctx Context, clk clock.Provider) ([]byte, string, error) {
	at := clk.Now()

	if m.valueSource == ValueSourceClaimed && pctx.ClaimedTime != nil {
		at = *pctx.ClaimedTime
	}

	updated, err := sjson.SetBytes(doc, m.property, truncateTime(at, m.truncateTo).Unix())
	if err != nil {
		return nil, "", err
	}

	return updated, m.property, nil
}

func truncateTime(t time.Time, unit string) time.Time {
	switch unit {
	case TimeUnitSeconds:
		return t.Truncate(time.Second)
	case TimeUnitMinutes:
		return t.Truncate(time.Minute)
	case TimeUnitHours:
		return t.Truncate(time.Hour)
	case TimeUnitDays:
		return t.Truncate(24 * time.Hour)
	default:
		return t
	}
}
