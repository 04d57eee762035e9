/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"crypto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	afgotime "github.com/trustbloc/did-go/doc/util/time"
	kmsapi "github.com/trustbloc/kms-go/spi/kms"
)

//nolint:lll
const validCredential = `{
  "@context": [
    "https://www.w3.org/2018/credentials/v1",
    "https://www.w3.org/2018/credentials/examples/v1"
  ],
  "id": "http://example.edu/credentials/1872",
  "type": [
    "VerifiableCredential",
    "UniversityDegreeCredential"
  ],
  "credentialSubject": {
    "id": "did:example:ebfeb1f712ebc6f1c276e12ec21",
    "degree": {
      "type": "BachelorDegree",
      "university": "MIT"
    }
  },
  "issuer": {
    "id": "did:example:76e12ec712ebc6f1c221ebfeb1f",
    "name": "Example University"
  },
  "issuanceDate": "2010-01-01T19:23:24Z",
  "expirationDate": "2020-01-01T19:23:24Z",
  "referenceNumber": 83294847
}`

const customSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "@context",
    "referenceNumber"
  ],
  "properties": {
    "referenceNumber": {
      "type": "number"
    }
  }
}`

func TestParseCredential(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		vc, err := ParseCredential([]byte(validCredential))
		require.NoError(t, err)

		vcc := vc.Contents()

		require.Equal(t, []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://www.w3.org/2018/credentials/examples/v1",
		}, vcc.Context)
		require.Empty(t, vcc.CustomContext)

		require.Equal(t, "http://example.edu/credentials/1872", vcc.ID)
		require.Equal(t, []string{"VerifiableCredential", "UniversityDegreeCredential"}, vcc.Types)

		require.Len(t, vcc.Subject, 1)
		require.Equal(t, "did:example:ebfeb1f712ebc6f1c276e12ec21", vcc.Subject[0].ID)
		require.NotEmpty(t, vcc.Subject[0].CustomFields["degree"])

		require.NotNil(t, vcc.Issuer)
		require.Equal(t, "did:example:76e12ec712ebc6f1c221ebfeb1f", vcc.Issuer.ID)
		require.Equal(t, "Example University", vcc.Issuer.CustomFields["name"])

		require.NotNil(t, vcc.Issued)
		require.Equal(t, "2010-01-01T19:23:24Z", vcc.Issued.FormatToString())
		require.NotNil(t, vcc.Expired)
		require.Equal(t, "2020-01-01T19:23:24Z", vcc.Expired.FormatToString())

		require.Empty(t, vcc.Schemas)
		require.Nil(t, vcc.SDJWTHashAlg)

		require.False(t, vc.IsJWT())
		require.Equal(t, float64(83294847), vc.CustomField("referenceNumber"))
	})

	t.Run("success - marshal and parse again", func(t *testing.T) {
		vc, err := ParseCredential([]byte(validCredential))
		require.NoError(t, err)

		vcBytes, err := vc.MarshalJSON()
		require.NoError(t, err)

		vc2, err := ParseCredential(vcBytes)
		require.NoError(t, err)

		require.Equal(t, vc.ToRawJSON(), vc2.ToRawJSON())
	})

	t.Run("success - credential subject as string", func(t *testing.T) {
		vc, err := ParseCredential(credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldSubject] = "did:example:ebfeb1f712ebc6f1c276e12ec21"
		}))
		require.NoError(t, err)

		require.Len(t, vc.Contents().Subject, 1)
		require.Equal(t, "did:example:ebfeb1f712ebc6f1c276e12ec21", vc.Contents().Subject[0].ID)
	})

	t.Run("success - issuer as string", func(t *testing.T) {
		vc, err := ParseCredential(credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldIssuer] = "did:example:76e12ec712ebc6f1c221ebfeb1f"
		}))
		require.NoError(t, err)

		require.Equal(t, "did:example:76e12ec712ebc6f1c221ebfeb1f", vc.Contents().Issuer.ID)
		require.Empty(t, vc.Contents().Issuer.CustomFields)
	})

	t.Run("success - with _sd_alg", func(t *testing.T) {
		vc, err := ParseCredential(credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldSDJWTHashAlg] = "sha-256"
		}))
		require.NoError(t, err)

		require.NotNil(t, vc.Contents().SDJWTHashAlg)
		require.Equal(t, crypto.SHA256, *vc.Contents().SDJWTHashAlg)
	})

	t.Run("error - invalid JSON", func(t *testing.T) {
		vc, err := ParseCredential([]byte("not a credential"))
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "decode new credential")
	})

	t.Run("error - malformed fields", func(t *testing.T) {
		malformed := []struct {
			name     string
			mutate   func(obj JSONObject)
			errorMsg string
		}{
			{
				name:     "context",
				mutate:   func(obj JSONObject) { obj[jsonFldContext] = 777 },
				errorMsg: "fill credential context from raw",
			},
			{
				name:     "types",
				mutate:   func(obj JSONObject) { obj[jsonFldType] = 777 },
				errorMsg: "fill credential types from raw",
			},
			{
				name:     "issuer",
				mutate:   func(obj JSONObject) { obj[jsonFldIssuer] = 777 },
				errorMsg: "fill credential issuer from raw",
			},
			{
				name:     "subject",
				mutate:   func(obj JSONObject) { obj[jsonFldSubject] = 777 },
				errorMsg: "fill credential subject from raw",
			},
			{
				name:     "id",
				mutate:   func(obj JSONObject) { obj[jsonFldID] = 777 },
				errorMsg: "fill credential id from raw",
			},
			{
				name:     "issuanceDate",
				mutate:   func(obj JSONObject) { obj[jsonFldIssued] = "not-a-date" },
				errorMsg: "fill credential issued from raw",
			},
			{
				name:     "expirationDate",
				mutate:   func(obj JSONObject) { obj[jsonFldExpired] = "not-a-date" },
				errorMsg: "fill credential expired from raw",
			},
			{
				name:     "credentialSchema",
				mutate:   func(obj JSONObject) { obj[jsonFldSchema] = 777 },
				errorMsg: "fill credential schemas from raw",
			},
			{
				name:     "_sd_alg",
				mutate:   func(obj JSONObject) { obj[jsonFldSDJWTHashAlg] = "sha-1" },
				errorMsg: "fill credential sd jwt alg from raw",
			},
		}

		for _, tc := range malformed {
			t.Run(tc.name, func(t *testing.T) {
				vc, err := ParseCredential(credentialJSONWith(t, tc.mutate))
				require.Error(t, err)
				require.Nil(t, vc)
				require.Contains(t, err.Error(), tc.errorMsg)
			})
		}
	})

	t.Run("error - base JSON schema validation", func(t *testing.T) {
		vcData := credentialJSONWith(t, func(obj JSONObject) {
			delete(obj, jsonFldIssued)
		})

		vc, err := ParseCredential(vcData)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "verifiable credential is not valid")
		require.Contains(t, err.Error(), "issuanceDate is required")

		// the same document passes with validation disabled
		vc, err = ParseCredential(vcData, WithCredDisableValidation())
		require.NoError(t, err)
		require.NotNil(t, vc)

		// or with the issuanceDate requirement dropped from the default schema
		vc, err = ParseCredential(vcData,
			WithSchema(JSONSchemaLoader(WithDisableRequiredField(schemaPropertyIssuanceDate))))
		require.NoError(t, err)
		require.NotNil(t, vc)
	})
}

func TestCreateCredential(t *testing.T) {
	issued := time.Date(2010, time.January, 1, 19, 23, 24, 0, time.UTC)
	expired := time.Date(2020, time.January, 1, 19, 23, 24, 0, time.UTC)

	proto := func() CredentialContents {
		return CredentialContents{
			Context: []string{baseContext},
			Types:   []string{vcType},
			ID:      "http://example.edu/credentials/1872",
			Subject: []Subject{{
				ID: "did:example:ebfeb1f712ebc6f1c276e12ec21",
				CustomFields: CustomFields{
					"name": "Jayden Doe",
				},
			}},
			Issuer: &Issuer{ID: "did:example:76e12ec712ebc6f1c221ebfeb1f"},
			Issued: afgotime.NewTime(issued),
		}
	}

	t.Run("success", func(t *testing.T) {
		vcc := proto()
		vcc.Expired = afgotime.NewTime(expired)

		vc, err := CreateCredential(vcc, nil)
		require.NoError(t, err)

		vcJSON := vc.ToRawJSON()
		require.Equal(t, []interface{}{baseContext}, vcJSON[jsonFldContext])
		require.Equal(t, vcType, vcJSON[jsonFldType])
		require.Equal(t, "did:example:76e12ec712ebc6f1c221ebfeb1f", vcJSON[jsonFldIssuer])
		require.Equal(t, "2010-01-01T19:23:24Z", vcJSON[jsonFldIssued])
		require.Equal(t, "2020-01-01T19:23:24Z", vcJSON[jsonFldExpired])

		subject, ok := vcJSON[jsonFldSubject].(JSONObject)
		require.True(t, ok)
		require.Equal(t, "did:example:ebfeb1f712ebc6f1c276e12ec21", subject["id"])
		require.Equal(t, "Jayden Doe", subject["name"])
	})

	t.Run("success - marshal and parse again", func(t *testing.T) {
		vc, err := CreateCredential(proto(), nil)
		require.NoError(t, err)

		vcBytes, err := vc.MarshalJSON()
		require.NoError(t, err)

		parsed, err := ParseCredential(vcBytes)
		require.NoError(t, err)

		parsedContents := parsed.Contents()
		require.Equal(t, proto().Context, parsedContents.Context)
		require.Equal(t, proto().Types, parsedContents.Types)
		require.Equal(t, proto().ID, parsedContents.ID)
		require.Equal(t, proto().Issuer, parsedContents.Issuer)
		require.Equal(t, proto().Subject, parsedContents.Subject)
		require.True(t, parsedContents.Issued.Equal(issued))
	})

	t.Run("success - custom fields", func(t *testing.T) {
		vc, err := CreateCredential(proto(), CustomFields{"referenceNumber": 83294847})
		require.NoError(t, err)

		require.Equal(t, 83294847, vc.CustomField("referenceNumber"))
	})

	t.Run("success - multiple contexts and types", func(t *testing.T) {
		vcc := proto()
		vcc.Context = append(vcc.Context, "https://www.w3.org/2018/credentials/examples/v1")
		vcc.Types = append(vcc.Types, "UniversityDegreeCredential")

		vc, err := CreateCredential(vcc, nil)
		require.NoError(t, err)

		vcJSON := vc.ToRawJSON()
		require.Len(t, vcJSON[jsonFldContext], 2)
		require.Len(t, vcJSON[jsonFldType], 2)
	})

	t.Run("error - no context", func(t *testing.T) {
		vcc := proto()
		vcc.Context = nil

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential context must start with")
	})

	t.Run("error - base context is not first", func(t *testing.T) {
		vcc := proto()
		vcc.Context = []string{"https://www.w3.org/2018/credentials/examples/v1", baseContext}

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential context must start with")
	})

	t.Run("error - base type is not first", func(t *testing.T) {
		vcc := proto()
		vcc.Types = []string{"UniversityDegreeCredential", vcType}

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential types must start with")
	})

	t.Run("error - no issuer", func(t *testing.T) {
		vcc := proto()
		vcc.Issuer = nil

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential issuer is not defined")
	})

	t.Run("error - expiration date equals issuance date", func(t *testing.T) {
		vcc := proto()
		vcc.Expired = afgotime.NewTime(issued)

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential expiration date must be after issuance date")
	})

	t.Run("error - expiration date before issuance date", func(t *testing.T) {
		vcc := proto()
		vcc.Expired = afgotime.NewTime(issued.Add(-time.Hour))

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "credential expiration date must be after issuance date")
	})

	t.Run("error - schema validation failure", func(t *testing.T) {
		vcc := proto()
		vcc.Issued = nil

		vc, err := CreateCredential(vcc, nil)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "issuanceDate is required")

		vc, err = CreateCredential(vcc, nil, WithCredDisableValidation())
		require.NoError(t, err)
		require.NotNil(t, vc)
	})
}

func TestCustomCredentialJSONSchema(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		loadsCount := 0
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			loadsCount++
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte(customSchema))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		vc, err := ParseCredential(credentialWithSchema(t, testServer.URL))
		require.NoError(t, err)
		require.NotNil(t, vc)
		require.Equal(t, 1, loadsCount)
	})

	t.Run("error - credential does not match custom schema", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte(customSchema))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		vcData := credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldSchema] = JSONObject{"id": testServer.URL, "type": jsonSchema2018Type}
			delete(obj, "referenceNumber")
		})

		vc, err := ParseCredential(vcData)
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "verifiable credential is not valid")
		require.Contains(t, err.Error(), "referenceNumber is required")
	})

	t.Run("success - schema download caching", func(t *testing.T) {
		loadsCount := 0
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			loadsCount++
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte(customSchema))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		vcData := credentialWithSchema(t, testServer.URL)

		loader := NewCredentialSchemaLoaderBuilder().
			SetSchemaDownloadClient(&http.Client{}).
			SetCache(NewExpirableSchemaCache(32*1024*1024, time.Hour)).
			Build()

		for i := 0; i < 3; i++ {
			vc, err := ParseCredential(vcData, WithCredentialSchemaLoader(loader))
			require.NoError(t, err)
			require.NotNil(t, vc)
		}

		require.Equal(t, 1, loadsCount)
	})

	t.Run("success - expired cache entry is downloaded again", func(t *testing.T) {
		loadsCount := 0
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			loadsCount++
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte(customSchema))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		vcData := credentialWithSchema(t, testServer.URL)

		loader := NewCredentialSchemaLoaderBuilder().
			SetSchemaDownloadClient(&http.Client{}).
			SetCache(NewExpirableSchemaCache(32*1024*1024, time.Second)).
			Build()

		vc, err := ParseCredential(vcData, WithCredentialSchemaLoader(loader))
		require.NoError(t, err)
		require.NotNil(t, vc)

		time.Sleep(2 * time.Second)

		vc, err = ParseCredential(vcData, WithCredentialSchemaLoader(loader))
		require.NoError(t, err)
		require.NotNil(t, vc)
		require.Equal(t, 2, loadsCount)
	})

	t.Run("success - compiled schema is reused for unchanged document", func(t *testing.T) {
		loadsCount := 0
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			loadsCount++
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte(customSchema))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		loader := NewCredentialSchemaLoaderBuilder().Build()

		schema1, err := loader.compiledSchema(testServer.URL)
		require.NoError(t, err)

		schema2, err := loader.compiledSchema(testServer.URL)
		require.NoError(t, err)

		// without a byte cache the document is downloaded each time,
		// the compiled schema is shared as long as the document is unchanged
		require.Equal(t, 2, loadsCount)
		require.Same(t, schema1, schema2)
		require.Equal(t, 1, loader.compiled.Len())
	})

	t.Run("success - custom schema check disabled", func(t *testing.T) {
		loadsCount := 0
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			loadsCount++
		}))

		defer testServer.Close()

		vcData := credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldSchema] = JSONObject{"id": testServer.URL, "type": jsonSchema2018Type}
			delete(obj, "referenceNumber")
		})

		vc, err := ParseCredential(vcData, WithNoCustomSchemaCheck())
		require.NoError(t, err)
		require.NotNil(t, vc)
		require.Equal(t, 0, loadsCount)
	})

	t.Run("success - unsupported schema type falls back to default schema", func(t *testing.T) {
		vcData := credentialJSONWith(t, func(obj JSONObject) {
			obj[jsonFldSchema] = JSONObject{"id": "https://example.com/schema", "type": "ZkpExampleSchema2018"}
		})

		vc, err := ParseCredential(vcData)
		require.NoError(t, err)
		require.NotNil(t, vc)
		require.Len(t, vc.Contents().Schemas, 1)
	})

	t.Run("error - schema endpoint HTTP failure", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			res.WriteHeader(http.StatusInternalServerError)
		}))

		defer testServer.Close()

		vc, err := ParseCredential(credentialWithSchema(t, testServer.URL))
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "load of custom credential schema")
		require.Contains(t, err.Error(), "credential schema endpoint HTTP failure [500]")
	})

	t.Run("error - invalid schema document", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			res.WriteHeader(http.StatusOK)
			_, err := res.Write([]byte("invalid schema"))
			require.NoError(t, err)
		}))

		defer testServer.Close()

		vc, err := ParseCredential(credentialWithSchema(t, testServer.URL))
		require.Error(t, err)
		require.Nil(t, vc)
		require.Contains(t, err.Error(), "load of custom credential schema")
	})
}

func TestExpirableSchemaCache(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		cache := NewExpirableSchemaCache(32*1024*1024, time.Hour)

		cache.Put("https://example.com/schema", []byte(customSchema))

		cached, ok := cache.Get("https://example.com/schema")
		require.True(t, ok)
		require.Equal(t, []byte(customSchema), cached)
	})

	t.Run("get missing key", func(t *testing.T) {
		cache := NewExpirableSchemaCache(32*1024*1024, time.Hour)

		cached, ok := cache.Get("https://example.com/schema")
		require.False(t, ok)
		require.Nil(t, cached)
	})

	t.Run("get expired element", func(t *testing.T) {
		cache := NewExpirableSchemaCache(32*1024*1024, -2*time.Second)

		cache.Put("https://example.com/schema", []byte(customSchema))

		cached, ok := cache.Get("https://example.com/schema")
		require.False(t, ok)
		require.Nil(t, cached)
	})
}

func TestJSONSchemaLoader(t *testing.T) {
	t.Run("default required fields", func(t *testing.T) {
		var schema struct {
			Required []string `json:"required"`
		}

		require.NoError(t, json.Unmarshal([]byte(JSONSchemaLoader()), &schema))
		require.Equal(t, []string{"@context", "type", "credentialSubject", "issuer", "issuanceDate"},
			schema.Required)
	})

	t.Run("disabled required fields", func(t *testing.T) {
		var schema struct {
			Required []string `json:"required"`
		}

		loader := JSONSchemaLoader(
			WithDisableRequiredField(schemaPropertyIssuanceDate),
			WithDisableRequiredField(schemaPropertyIssuer))

		require.NoError(t, json.Unmarshal([]byte(loader), &schema))
		require.Equal(t, []string{"@context", "type", "credentialSubject"}, schema.Required)
	})
}

func TestSubjectID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id, err := SubjectID([]Subject{{ID: "did:example:ebfeb1f712ebc6f1c276e12ec21"}})
		require.NoError(t, err)
		require.Equal(t, "did:example:ebfeb1f712ebc6f1c276e12ec21", id)
	})

	t.Run("error - no subject", func(t *testing.T) {
		id, err := SubjectID(nil)
		require.Error(t, err)
		require.Empty(t, id)
		require.Contains(t, err.Error(), "no subject is defined")
	})

	t.Run("error - several subjects", func(t *testing.T) {
		id, err := SubjectID([]Subject{{ID: "did:example:1"}, {ID: "did:example:2"}})
		require.Error(t, err)
		require.Empty(t, id)
		require.Contains(t, err.Error(), "more than one subject is defined")
	})

	t.Run("error - subject without id", func(t *testing.T) {
		id, err := SubjectID([]Subject{{CustomFields: CustomFields{"name": "Jayden Doe"}}})
		require.Error(t, err)
		require.Empty(t, id)
		require.Contains(t, err.Error(), "subject id is not defined")
	})
}

func TestIssuerFromJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		issuer, err := IssuerFromJSON(JSONObject{
			"id":   "did:example:76e12ec712ebc6f1c221ebfeb1f",
			"name": "Example University",
		})
		require.NoError(t, err)
		require.Equal(t, "did:example:76e12ec712ebc6f1c221ebfeb1f", issuer.ID)
		require.Equal(t, "Example University", issuer.CustomFields["name"])
	})

	t.Run("error - no id", func(t *testing.T) {
		issuer, err := IssuerFromJSON(JSONObject{"name": "Example University"})
		require.Error(t, err)
		require.Nil(t, issuer)
		require.Contains(t, err.Error(), "issuer ID is not defined")
	})

	t.Run("error - id is not a string", func(t *testing.T) {
		issuer, err := IssuerFromJSON(JSONObject{"id": 777})
		require.Error(t, err)
		require.Nil(t, issuer)
		require.Contains(t, err.Error(), "fill issuer id from raw")
	})
}

func TestJWSAlgorithmName(t *testing.T) {
	tests := []struct {
		alg  JWSAlgorithm
		name string
	}{
		{RS256, "RS256"},
		{PS256, "PS256"},
		{EdDSA, "EdDSA"},
		{ECDSASecp256k1, "ES256K"},
		{ECDSASecp256r1, "ES256"},
		{ECDSASecp384r1, "ES384"},
		{ECDSASecp521r1, "ES512"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := tt.alg.Name()
			require.NoError(t, err)
			require.Equal(t, tt.name, name)

			parsed, err := ParseJWSAlgorithm(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.alg, parsed)
		})
	}

	t.Run("error - unsupported algorithm", func(t *testing.T) {
		_, err := JWSAlgorithm(-1).Name()
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported algorithm")

		_, err = ParseJWSAlgorithm("HS256")
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported algorithm")
	})
}

func TestKeyTypeToJWSAlgo(t *testing.T) {
	tests := []struct {
		keyType kmsapi.KeyType
		alg     JWSAlgorithm
	}{
		{kmsapi.ECDSAP256TypeIEEEP1363, ECDSASecp256r1},
		{kmsapi.ECDSAP384TypeIEEEP1363, ECDSASecp384r1},
		{kmsapi.ECDSAP521TypeIEEEP1363, ECDSASecp521r1},
		{kmsapi.ED25519Type, EdDSA},
		{kmsapi.ECDSASecp256k1TypeIEEEP1363, ECDSASecp256k1},
		{kmsapi.RSARS256Type, RS256},
		{kmsapi.RSAPS256Type, PS256},
	}

	for _, tt := range tests {
		t.Run(string(tt.keyType), func(t *testing.T) {
			alg, err := KeyTypeToJWSAlgo(tt.keyType)
			require.NoError(t, err)
			require.Equal(t, tt.alg, alg)
		})
	}

	t.Run("error - unsupported key type", func(t *testing.T) {
		_, err := KeyTypeToJWSAlgo(kmsapi.AES128GCMType)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported key type")
	})
}

func credentialJSONWith(t *testing.T, mutate func(obj JSONObject)) []byte {
	t.Helper()

	var obj JSONObject
	require.NoError(t, json.Unmarshal([]byte(validCredential), &obj))

	mutate(obj)

	vcData, err := json.Marshal(obj)
	require.NoError(t, err)

	return vcData
}

func credentialWithSchema(t *testing.T, schemaURL string) []byte {
	t.Helper()

	return credentialJSONWith(t, func(obj JSONObject) {
		obj[jsonFldSchema] = JSONObject{"id": schemaURL, "type": jsonSchema2018Type}
	})
}
