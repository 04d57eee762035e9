/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claims_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vci-go/claims"
	"github.com/trustbloc/vci-go/clock"
)

const testCredentialType = "test-credential"

func testCredentialSpecs() []claims.Spec {
	return []claims.Spec{
		{
			ID:              "role-mapper",
			Type:            claims.TypeTargetRole,
			Config:          map[string]interface{}{"clientId": "did-client"},
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:              "email-mapper",
			Type:            claims.TypeUserAttribute,
			SubjectProperty: "email",
			Config:          map[string]interface{}{"userAttribute": "email"},
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:              "first-name-mapper",
			Type:            claims.TypeUserAttribute,
			SubjectProperty: "firstName",
			Config:          map[string]interface{}{"userAttribute": "firstName"},
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:              "last-name-mapper",
			Type:            claims.TypeUserAttribute,
			SubjectProperty: "lastName",
			Config:          map[string]interface{}{"userAttribute": "lastName"},
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:              "id-mapper",
			Type:            claims.TypeSubjectID,
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:              "static-mapper",
			Type:            claims.TypeStaticClaim,
			SubjectProperty: testCredentialType,
			Config:          map[string]interface{}{"staticValue": "true"},
			CredentialTypes: []string{testCredentialType},
		},
		{
			ID:   "iat-mapper",
			Type: claims.TypeIssuedAtTime,
			Config: map[string]interface{}{
				"truncateToTimeUnit": "HOURS",
				"valueSource":        "COMPUTE",
			},
			CredentialTypes: []string{testCredentialType},
		},
	}
}

func johnDoeContext() claims.Context {
	return claims.Context{
		CredentialType: testCredentialType,
		UserAttributes: map[string]interface{}{
			"email":     "john@email.cz",
			"firstName": "John",
			"lastName":  "Doe",
		},
		Roles: map[string][]string{
			"did-client": {"view-profile", "manage-account", "view-profile"},
		},
	}
}

func subjectNumber(t *testing.T, subject map[string]interface{}, property string) int64 {
	t.Helper()

	number, ok := subject[property].(json.Number)
	require.True(t, ok, "property %q is not a number", property)

	value, err := number.Int64()
	require.NoError(t, err)

	return value
}

func TestPipeline_Apply(t *testing.T) {
	fixedTime := time.Date(2024, time.February, 16, 16, 30, 45, 0, time.UTC)

	pipeline, err := claims.NewPipeline(testCredentialSpecs(),
		claims.WithClock(clock.NewStatic(fixedTime)))
	require.NoError(t, err)

	result, err := pipeline.Apply(johnDoeContext())
	require.NoError(t, err)

	subject := result.Subject

	require.Equal(t, "john@email.cz", subject["email"])
	require.Equal(t, "John", subject["firstName"])
	require.Equal(t, "Doe", subject["lastName"])
	require.Equal(t, "true", subject[testCredentialType])
	require.Equal(t, []interface{}{"manage-account", "view-profile"}, subject["roles"])
	require.Equal(t, fixedTime.Truncate(time.Hour).Unix(), subjectNumber(t, subject, "iat"))

	id, ok := subject["id"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(id, "urn:uuid:"))

	_, err = uuid.Parse(strings.TrimPrefix(id, "urn:uuid:"))
	require.NoError(t, err)
}

func TestPipeline_Determinism(t *testing.T) {
	fixedTime := time.Date(2024, time.February, 16, 16, 30, 45, 0, time.UTC)

	pipeline, err := claims.NewPipeline(testCredentialSpecs(),
		claims.WithClock(clock.NewStatic(fixedTime)))
	require.NoError(t, err)

	first, err := pipeline.Apply(johnDoeContext())
	require.NoError(t, err)

	second, err := pipeline.Apply(johnDoeContext())
	require.NoError(t, err)

	require.NotEqual(t, first.Subject["id"], second.Subject["id"])

	delete(first.Subject, "id")
	delete(second.Subject, "id")
	require.Equal(t, first.Subject, second.Subject)
}

func TestPipeline_Applicability(t *testing.T) {
	pipeline, err := claims.NewPipeline(testCredentialSpecs())
	require.NoError(t, err)

	pctx := johnDoeContext()
	pctx.CredentialType = "AnotherCredential"

	result, err := pipeline.Apply(pctx)
	require.NoError(t, err)
	require.Empty(t, result.Subject)
	require.Empty(t, result.Disclosable)
}

func TestPipeline_MissingUserAttribute(t *testing.T) {
	pipeline, err := claims.NewPipeline([]claims.Spec{{
		ID:              "email-mapper",
		Type:            claims.TypeUserAttribute,
		SubjectProperty: "email",
		Config:          map[string]interface{}{"userAttribute": "email"},
	}})
	require.NoError(t, err)

	result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
	require.NoError(t, err)
	require.NotContains(t, result.Subject, "email")
}

func TestPipeline_LastWriteWins(t *testing.T) {
	pipeline, err := claims.NewPipeline([]claims.Spec{
		{
			ID:                     "draft",
			Type:                   claims.TypeStaticClaim,
			SubjectProperty:        "status",
			Config:                 map[string]interface{}{"staticValue": "draft"},
			SelectivelyDisclosable: true,
		},
		{
			ID:              "final",
			Type:            claims.TypeStaticClaim,
			SubjectProperty: "status",
			Config:          map[string]interface{}{"staticValue": "final"},
		},
	})
	require.NoError(t, err)

	result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
	require.NoError(t, err)
	require.Equal(t, "final", result.Subject["status"])
	require.Empty(t, result.Disclosable)
}

func TestPipeline_NestedSubjectProperty(t *testing.T) {
	pipeline, err := claims.NewPipeline([]claims.Spec{{
		ID:              "street",
		Type:            claims.TypeStaticClaim,
		SubjectProperty: "address.street",
		Config:          map[string]interface{}{"staticValue": "Main Street 1"},
	}})
	require.NoError(t, err)

	result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
	require.NoError(t, err)

	address, ok := result.Subject["address"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Main Street 1", address["street"])
}

func TestPipeline_EmptyRoleSet(t *testing.T) {
	pipeline, err := claims.NewPipeline([]claims.Spec{{
		ID:     "role-mapper",
		Type:   claims.TypeTargetRole,
		Config: map[string]interface{}{"clientId": "did-client"},
	}})
	require.NoError(t, err)

	result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
	require.NoError(t, err)
	require.Equal(t, []interface{}{}, result.Subject["roles"])
}

func TestPipeline_IssuedAtTime(t *testing.T) {
	fixedTime := time.Date(2024, time.February, 16, 16, 30, 45, 0, time.UTC)

	t.Run("minute truncation", func(t *testing.T) {
		pipeline, err := claims.NewPipeline([]claims.Spec{{
			ID:     "iat",
			Type:   claims.TypeIssuedAtTime,
			Config: map[string]interface{}{"truncateToTimeUnit": "MINUTES"},
		}}, claims.WithClock(clock.NewStatic(fixedTime)))
		require.NoError(t, err)

		result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
		require.NoError(t, err)
		require.Equal(t, fixedTime.Truncate(time.Minute).Unix(), subjectNumber(t, result.Subject, "iat"))
	})

	t.Run("claimed time source", func(t *testing.T) {
		pipeline, err := claims.NewPipeline([]claims.Spec{{
			ID:              "nbf",
			Type:            claims.TypeIssuedAtTime,
			SubjectProperty: "nbf",
			Config:          map[string]interface{}{"valueSource": "CLAIMED"},
		}}, claims.WithClock(clock.NewStatic(fixedTime)))
		require.NoError(t, err)

		claimed := fixedTime.Add(-5 * time.Minute)

		result, err := pipeline.Apply(claims.Context{
			CredentialType: testCredentialType,
			ClaimedTime:    &claimed,
		})
		require.NoError(t, err)
		require.Equal(t, claimed.Unix(), subjectNumber(t, result.Subject, "nbf"))
	})

	t.Run("claimed source falls back to clock", func(t *testing.T) {
		pipeline, err := claims.NewPipeline([]claims.Spec{{
			ID:     "iat",
			Type:   claims.TypeIssuedAtTime,
			Config: map[string]interface{}{"valueSource": "CLAIMED"},
		}}, claims.WithClock(clock.NewStatic(fixedTime)))
		require.NoError(t, err)

		result, err := pipeline.Apply(claims.Context{CredentialType: testCredentialType})
		require.NoError(t, err)
		require.Equal(t, fixedTime.Unix(), subjectNumber(t, result.Subject, "iat"))
	})
}

func TestPipeline_Disclosable(t *testing.T) {
	specs := testCredentialSpecs()

	for i := range specs {
		if specs[i].ID == "email-mapper" || specs[i].ID == "last-name-mapper" {
			specs[i].SelectivelyDisclosable = true
		}
	}

	// a flagged mapper whose attribute is missing leaves no disclosure entry
	specs = append(specs, claims.Spec{
		ID:                     "missing-mapper",
		Type:                   claims.TypeUserAttribute,
		SubjectProperty:        "middleName",
		Config:                 map[string]interface{}{"userAttribute": "middleName"},
		CredentialTypes:        []string{testCredentialType},
		SelectivelyDisclosable: true,
	})

	pipeline, err := claims.NewPipeline(specs)
	require.NoError(t, err)

	result, err := pipeline.Apply(johnDoeContext())
	require.NoError(t, err)
	require.Equal(t, []string{"email", "lastName"}, result.Disclosable)
}

func TestNewPipeline_Errors(t *testing.T) {
	tests := []struct {
		name     string
		spec     claims.Spec
		expected string
	}{
		{
			name:     "unknown mapper type",
			spec:     claims.Spec{ID: "bad", Type: "oid4vc-unknown-mapper"},
			expected: `unknown claim mapper type "oid4vc-unknown-mapper"`,
		},
		{
			name:     "missing user attribute config",
			spec:     claims.Spec{ID: "bad", Type: claims.TypeUserAttribute, SubjectProperty: "email"},
			expected: "userAttribute config is required",
		},
		{
			name: "missing subject property",
			spec: claims.Spec{
				ID:     "bad",
				Type:   claims.TypeUserAttribute,
				Config: map[string]interface{}{"userAttribute": "email"},
			},
			expected: "subjectProperty is required",
		},
		{
			name:     "missing static value",
			spec:     claims.Spec{ID: "bad", Type: claims.TypeStaticClaim, SubjectProperty: "status"},
			expected: "staticValue config is required",
		},
		{
			name: "unsupported time unit",
			spec: claims.Spec{
				ID:     "bad",
				Type:   claims.TypeIssuedAtTime,
				Config: map[string]interface{}{"truncateToTimeUnit": "WEEKS"},
			},
			expected: `unsupported time unit "WEEKS"`,
		},
		{
			name: "unsupported value source",
			spec: claims.Spec{
				ID:     "bad",
				Type:   claims.TypeIssuedAtTime,
				Config: map[string]interface{}{"valueSource": "GUESS"},
			},
			expected: `unsupported value source "GUESS"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := claims.NewPipeline([]claims.Spec{tt.spec})
			require.ErrorContains(t, err, tt.expected)
			require.ErrorContains(t, err, `claim mapper "bad"`)
		})
	}
}
