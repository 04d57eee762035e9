/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"crypto"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xeipuuv/gojsonschema"

	util "github.com/trustbloc/did-go/doc/util/time"
	"github.com/trustbloc/kms-go/doc/jose"

	"github.com/trustbloc/vci-go/jwt"
	"github.com/trustbloc/vci-go/sdjwt/common"
	jsonutil "github.com/trustbloc/vci-go/util/json"
)

var errLogger = log.New(os.Stderr, " [vci-go/verifiable] ", log.Ldate|log.Ltime|log.LUTC)

const (
	schemaPropertyType              = "type"
	schemaPropertyCredentialSubject = "credentialSubject"
	schemaPropertyIssuer            = "issuer"
	schemaPropertyIssuanceDate      = "issuanceDate"
)

// DefaultSchemaTemplate describes default schema.
const DefaultSchemaTemplate = `{
  "required": [
    "@context"
    %s
  ],
  "properties": {
    "@context": {
      "anyOf": [
        {
          "type": "string",
          "const": "https://www.w3.org/2018/credentials/v1"
        },
        {
          "type": "array",
          "items": [
            {
              "type": "string",
              "const": "https://www.w3.org/2018/credentials/v1"
            }
          ],
          "uniqueItems": true,
          "additionalItems": {
            "anyOf": [
              {
                "type": "object"
              },
              {
                "type": "string"
              }
            ]
          }
        }
      ]
    },
    "id": {
      "type": "string"
    },
    "type": {
      "oneOf": [
        {
          "type": "array",
          "minItems": 1,
          "contains": {
            "type": "string",
            "pattern": "^VerifiableCredential$"
          }
        },
        {
          "type": "string",
          "pattern": "^VerifiableCredential$"
        }
      ]
    },
    "credentialSubject": {
      "anyOf": [
        {
          "type": "array"
        },
        {
          "type": "object"
        },
        {
          "type": "string"
        }
      ]
    },
    "issuer": {
      "anyOf": [
        {
          "type": "string",
          "format": "uri"
        },
        {
          "type": "object",
          "required": [
            "id"
          ],
          "properties": {
            "id": {
              "type": "string",
              "format": "uri"
            }
          }
        }
      ]
    },
    "issuanceDate": {
      "type": "string",
      "format": "date-time"
    },
    "expirationDate": {
      "type": [
        "string",
        "null"
      ],
      "format": "date-time"
    },
    "credentialSchema": {
      "$ref": "#/definitions/typedIDs"
    }
  },
  "definitions": {
    "typedID": {
      "anyOf": [
        {
          "type": "null"
        },
        {
          "type": "object",
          "required": [
            "id",
            "type"
          ],
          "properties": {
            "id": {
              "type": "string",
              "format": "uri"
            },
            "type": {
              "anyOf": [
                {
                  "type": "string"
                },
                {
                  "type": "array",
                  "items": {
                    "type": "string"
                  }
                }
              ]
            }
          }
        }
      ]
    },
    "typedIDs": {
      "anyOf": [
        {
          "$ref": "#/definitions/typedID"
        },
        {
          "type": "array",
          "items": {
            "$ref": "#/definitions/typedID"
          }
        },
        {
          "type": "null"
        }
      ]
    }
  }
}
`

// https://www.w3.org/TR/vc-data-model/#data-schemas
const jsonSchema2018Type = "JsonSchemaValidator2018"

const (
	// https://www.w3.org/TR/vc-data-model/#base-context
	baseContext = "https://www.w3.org/2018/credentials/v1"

	// https://www.w3.org/TR/vc-data-model/#types
	vcType = "VerifiableCredential"
)

// BaseContext is the required first @context entry of every credential.
const BaseContext = baseContext

// VCType is the required first type entry of every credential.
const VCType = vcType

// SchemaCache defines a cache of credential schemas.
type SchemaCache interface {

	// Put element to the cache.
	Put(k string, v []byte)

	// Get element from the cache, returns false at second return value if element is not present.
	Get(k string) ([]byte, bool)
}

// cache defines a cache interface.
type cache interface {
	Set(k, v []byte)

	HasGet(dst, k []byte) ([]byte, bool)

	Del(k []byte)
}

// ExpirableSchemaCache is an implementation of SchemaCache based fastcache.Cache with expirable elements.
type ExpirableSchemaCache struct {
	cache      cache
	expiration time.Duration
}

// Put element to the cache. It also adds a mark of when the element will expire.
func (sc *ExpirableSchemaCache) Put(k string, v []byte) {
	expires := time.Now().Add(sc.expiration).Unix()

	const numBytesTime = 8

	b := make([]byte, numBytesTime)
	binary.LittleEndian.PutUint64(b, uint64(expires))

	ve := make([]byte, numBytesTime+len(v))
	copy(ve[:numBytesTime], b)
	copy(ve[numBytesTime:], v)

	sc.cache.Set([]byte(k), ve)
}

// Get element from the cache. If element is present, it checks if the element is expired.
// If yes, it clears the element from the cache and indicates that the key is not found.
func (sc *ExpirableSchemaCache) Get(k string) ([]byte, bool) {
	b, ok := sc.cache.HasGet(nil, []byte(k))
	if !ok {
		return nil, false
	}

	const numBytesTime = 8

	expires := int64(binary.LittleEndian.Uint64(b[:numBytesTime]))
	if expires < time.Now().Unix() {
		// cache expires
		sc.cache.Del([]byte(k))
		return nil, false
	}

	return b[numBytesTime:], true
}

const (
	compiledSchemaCacheSize = 32
	compiledSchemaCacheTTL  = time.Hour
)

// CredentialSchemaLoader loads custom credential schemas. Downloaded schema
// documents go through the byte cache, compiled schemas are kept in an
// expirable LRU keyed by the schema document so unchanged schemas are not
// recompiled on every validation.
type CredentialSchemaLoader struct {
	schemaDownloadClient *http.Client
	cache                SchemaCache
	jsonLoader           gojsonschema.JSONLoader
	compiled             *expirable.LRU[string, *gojsonschema.Schema]
}

// CredentialSchemaLoaderBuilder defines a builder of CredentialSchemaLoader.
type CredentialSchemaLoaderBuilder struct {
	loader *CredentialSchemaLoader
}

// NewCredentialSchemaLoaderBuilder creates a new instance of CredentialSchemaLoaderBuilder.
func NewCredentialSchemaLoaderBuilder() *CredentialSchemaLoaderBuilder {
	return &CredentialSchemaLoaderBuilder{
		loader: &CredentialSchemaLoader{},
	}
}

// SetSchemaDownloadClient sets HTTP client to be used to download the schema.
func (b *CredentialSchemaLoaderBuilder) SetSchemaDownloadClient(client *http.Client) *CredentialSchemaLoaderBuilder {
	b.loader.schemaDownloadClient = client
	return b
}

// SetCache defines SchemaCache.
func (b *CredentialSchemaLoaderBuilder) SetCache(cache SchemaCache) *CredentialSchemaLoaderBuilder {
	b.loader.cache = cache
	return b
}

// SetJSONLoader defines gojsonschema.JSONLoader.
func (b *CredentialSchemaLoaderBuilder) SetJSONLoader(loader gojsonschema.JSONLoader) *CredentialSchemaLoaderBuilder {
	b.loader.jsonLoader = loader
	return b
}

// Build constructed CredentialSchemaLoader.
// It creates default HTTP client and JSON schema loader if not defined.
func (b *CredentialSchemaLoaderBuilder) Build() *CredentialSchemaLoader {
	l := b.loader

	if l.schemaDownloadClient == nil {
		l.schemaDownloadClient = &http.Client{}
	}

	if l.jsonLoader == nil {
		l.jsonLoader = defaultSchemaLoader()
	}

	l.compiled = expirable.NewLRU[string, *gojsonschema.Schema](
		compiledSchemaCacheSize, nil, compiledSchemaCacheTTL)

	return l
}

const (
	jsonFldIssuerID = "id"
)

// Issuer of the Verifiable Credential.
type Issuer struct {
	ID string `json:"id,omitempty"`

	CustomFields CustomFields `json:"-"`
}

// IssuerToJSON converts issuer to raw json object.
func IssuerToJSON(issuer Issuer) JSONObject {
	jsonObj := jsonutil.ShallowCopyObj(issuer.CustomFields)

	if issuer.ID != "" {
		jsonObj[jsonFldIssuerID] = issuer.ID
	}

	return jsonObj
}

// IssuerFromJSON creates issuer from raw json object.
func IssuerFromJSON(issuerObj JSONObject) (*Issuer, error) {
	flds, rest := jsonutil.SplitJSONObj(issuerObj, jsonFldIssuerID)

	id, err := parseStringFld(flds, jsonFldIssuerID)
	if err != nil {
		return nil, fmt.Errorf("fill issuer id from raw: %w", err)
	}

	if id == "" {
		return nil, errors.New("issuer ID is not defined")
	}

	return &Issuer{
		ID:           id,
		CustomFields: rest,
	}, nil
}

const (
	jsonFldSubjectID = "id"
)

// Subject of the Verifiable Credential.
type Subject struct {
	ID string `json:"id,omitempty"`

	CustomFields CustomFields `json:"-"`
}

// SubjectToJSON converts credential subject to json object.
func SubjectToJSON(subject Subject) JSONObject {
	jsonObj := jsonutil.ShallowCopyObj(subject.CustomFields)

	if subject.ID != "" {
		jsonObj[jsonFldSubjectID] = subject.ID
	}

	return jsonObj
}

// SubjectFromJSON creates credential subject form json object.
func SubjectFromJSON(subjectObj JSONObject) (Subject, error) {
	flds, rest := jsonutil.SplitJSONObj(subjectObj, jsonFldSubjectID)

	id, err := parseStringFld(flds, jsonFldSubjectID)
	if err != nil {
		return Subject{}, fmt.Errorf("fill subject id from raw: %w", err)
	}

	return Subject{
		ID:           id,
		CustomFields: rest,
	}, nil
}

// CredentialContents store credential contents as typed structure.
type CredentialContents struct {
	Context       []string
	CustomContext []interface{}
	ID            string
	Types         []string
	Subject       []Subject
	Issuer        *Issuer
	Issued        *util.TimeWrapper
	Expired       *util.TimeWrapper
	Schemas       []TypedID
	SDJWTHashAlg  *crypto.Hash
}

// JSONObject used to store json object.
type JSONObject = map[string]interface{}

// Credential Verifiable Credential definition.
type Credential struct {
	// credentialJSON contains vc as json object. For the data-model form this
	// is the original json object, for jwt vc it is the jwt claims json object.
	credentialJSON     JSONObject
	credentialContents CredentialContents

	JWTEnvelope *JWTEnvelope
}

// JWTEnvelope contains information about JWT that envelops credential.
type JWTEnvelope struct {
	JWT        string
	JWTHeaders jose.Headers
}

// Contents returns credential contents as typed structure.
func (vc *Credential) Contents() CredentialContents {
	return vc.credentialContents
}

// ToRawJSON return vc as json object. For the data-model form this is the
// original json object, for jwt vc it is the jwt claims json object.
func (vc *Credential) ToRawJSON() JSONObject {
	return jsonutil.ShallowCopyObj(vc.credentialJSON)
}

// ToJWTString returns vc as a jwt string. Works only for jwt vc, in other case returns error.
func (vc *Credential) ToJWTString() (string, error) {
	if !vc.IsJWT() {
		return "", errors.New("to jwt string can be called only for jwt vc")
	}

	return vc.JWTEnvelope.JWT, nil
}

// IsJWT returns is vc envelop into jwt.
func (vc *Credential) IsJWT() bool {
	return vc.JWTEnvelope != nil
}

// JWTHeaders returns jwt headers for jwt-vc.
func (vc *Credential) JWTHeaders() jose.Headers {
	if vc.JWTEnvelope == nil {
		return nil
	}

	return vc.JWTEnvelope.JWTHeaders
}

// CustomField returns custom field by name.
func (vc *Credential) CustomField(name string) interface{} {
	return vc.credentialJSON[name]
}

// SetCustomField sets custom field on the raw credential object.
func (vc *Credential) SetCustomField(name string, value interface{}) {
	vc.credentialJSON[name] = value
}

const (
	jsonFldContext      = "@context"
	jsonFldID           = "id"
	jsonFldType         = "type"
	jsonFldSubject      = "credentialSubject"
	jsonFldIssued       = "issuanceDate"
	jsonFldExpired      = "expirationDate"
	jsonFldIssuer       = "issuer"
	jsonFldSchema       = "credentialSchema"
	jsonFldSDJWTHashAlg = "_sd_alg"
)

type credentialOpts struct {
	jwtProofChecker      jwt.ProofChecker
	disabledCustomSchema bool
	schemaLoader         *CredentialSchemaLoader
	disabledProofCheck   bool
	disableValidation    bool
	defaultSchema        string
}

// CredentialOpt is the Verifiable Credential decoding option.
type CredentialOpt func(opts *credentialOpts)

// WithDisabledProofCheck option for avoiding proof check.
func WithDisabledProofCheck() CredentialOpt {
	return func(opts *credentialOpts) {
		opts.disabledProofCheck = true
	}
}

// WithCredDisableValidation options for disabling checks in ParseCredential and CreateCredential.
func WithCredDisableValidation() CredentialOpt {
	return func(opts *credentialOpts) {
		opts.disableValidation = true
	}
}

// WithSchema option to set custom schema.
func WithSchema(schema string) CredentialOpt {
	return func(opts *credentialOpts) {
		opts.defaultSchema = schema
	}
}

// WithNoCustomSchemaCheck option is for disabling of Credential Schemas check.
//
// It is enabled by default.
func WithNoCustomSchemaCheck() CredentialOpt {
	return func(opts *credentialOpts) {
		opts.disabledCustomSchema = true
	}
}

// WithJWTProofChecker indicates that the verification of the JWT proof is needed.
func WithJWTProofChecker(verifier jwt.ProofChecker) CredentialOpt {
	return func(opts *credentialOpts) {
		opts.jwtProofChecker = verifier
	}
}

// WithCredentialSchemaLoader option is used to define custom credentials schema loader.
// If not defined, the default one is created with default HTTP client to download the schema
// and no caching of the schemas.
func WithCredentialSchemaLoader(loader *CredentialSchemaLoader) CredentialOpt {
	return func(opts *credentialOpts) {
		opts.schemaLoader = loader
	}
}

func parseIssuer(issuerRaw interface{}) (*Issuer, error) {
	if issuerRaw == nil {
		return nil, nil
	}

	switch issuer := issuerRaw.(type) {
	case string:
		if issuer == "" {
			return nil, errors.New("issuer ID is not defined")
		}

		return &Issuer{ID: issuer}, nil
	case map[string]interface{}:
		return IssuerFromJSON(issuer)
	}

	return nil, fmt.Errorf("should be json object or string but got %v", issuerRaw)
}

func serializeIssuer(issuer Issuer) interface{} {
	if len(issuer.CustomFields) == 0 {
		return issuer.ID
	}

	return IssuerToJSON(issuer)
}

// parseSubject parses raw credential subject.
//
// Subject can be defined as a string (subject ID) or single object or array of objects.
func parseSubject(subjectRaw interface{}) ([]Subject, error) {
	if subjectRaw == nil {
		return nil, nil
	}

	switch subject := subjectRaw.(type) {
	case string:
		return []Subject{{ID: subject}}, nil
	case map[string]interface{}:
		parsed, err := SubjectFromJSON(subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject: %w", err)
		}

		return []Subject{parsed}, nil
	case []interface{}:
		var subjects []Subject

		for _, raw := range subject {
			sub, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("verifiable credential subject of unsupported format")
			}

			parsed, err := SubjectFromJSON(sub)
			if err != nil {
				return nil, fmt.Errorf("parse subjects array: %w", err)
			}

			subjects = append(subjects, parsed)
		}

		return subjects, nil
	}

	return nil, fmt.Errorf("verifiable credential subject of unsupported format")
}

// decodeCredentialSchemas decodes credential schema(s).
//
// credential schema can be defined as a single object or array of objects.
func decodeCredentialSchemas(schema interface{}) ([]TypedID, error) {
	if schema == nil {
		return nil, nil
	}

	switch typeID := schema.(type) {
	case map[string]interface{}:
		parsed, err := parseTypedIDObj(typeID)
		if err != nil {
			return nil, fmt.Errorf("parse credential schema: %w", err)
		}

		return []TypedID{parsed}, nil
	case []interface{}:
		var typedIDs []TypedID

		for _, s := range typeID {
			json, ok := s.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("slice with credential schemas of unsupported format, %v", schema)
			}

			parsed, err := parseTypedIDObj(json)
			if err != nil {
				return nil, fmt.Errorf("parse credential schemas array: %w", err)
			}

			typedIDs = append(typedIDs, parsed)
		}

		return typedIDs, nil
	}

	return nil, fmt.Errorf("credential schema of unsupported format, %v", schema)
}

// CreateCredential creates vc from CredentialContents. The contents invariants
// are enforced here rather than at signing time: the base context and type
// must come first, the issuer must be set and an expiration date, when
// present, must be strictly after the issuance date. The assembled credential
// is then validated against the JSON schema unless validation is disabled.
func CreateCredential(vcc CredentialContents, customFields CustomFields, opts ...CredentialOpt) (*Credential, error) {
	vcOpts := getCredentialOpts(opts)

	if err := validateCredentialContents(&vcc); err != nil {
		return nil, err
	}

	vcJSON, err := serializeCredentialContents(&vcc)
	if err != nil {
		return nil, fmt.Errorf("converting credential contents: %w", err)
	}

	jsonutil.AddCustomFields(vcJSON, customFields)

	if !vcOpts.disableValidation {
		err = validateJSONSchema(vcJSON, &vcc, vcOpts)
		if err != nil {
			return nil, err
		}
	}

	return &Credential{
		credentialJSON:     vcJSON,
		credentialContents: vcc,
	}, nil
}

func validateCredentialContents(vcc *CredentialContents) error {
	if len(vcc.Context) == 0 || vcc.Context[0] != baseContext {
		return fmt.Errorf("credential context must start with %q", baseContext)
	}

	if len(vcc.Types) == 0 || vcc.Types[0] != vcType {
		return fmt.Errorf("credential types must start with %q", vcType)
	}

	if vcc.Issuer == nil || vcc.Issuer.ID == "" {
		return errors.New("credential issuer is not defined")
	}

	if vcc.Expired != nil && vcc.Issued != nil && !vcc.Expired.After(vcc.Issued.Time) {
		return errors.New("credential expiration date must be after issuance date")
	}

	return nil
}

// ParseCredentialJSON parses Verifiable Credential from json object.
func ParseCredentialJSON(vcJSON JSONObject, opts ...CredentialOpt) (*Credential, error) {
	vcOpts := getCredentialOpts(opts)

	contents, err := parseCredentialContents(vcJSON)
	if err != nil {
		return nil, err
	}

	if !vcOpts.disableValidation {
		err = validateJSONSchema(vcJSON, contents, vcOpts)
		if err != nil {
			return nil, err
		}
	}

	return &Credential{
		credentialJSON:     vcJSON,
		credentialContents: *contents,
	}, nil
}

// ParseCredential parses Verifiable Credential from bytes which could be
// marshalled JSON or a serialized JWT. It also applies miscellaneous options
// like settings of schema validation. It returns decoded Credential.
//
// The proof of a JWT credential is checked unless WithDisabledProofCheck is given.
func ParseCredential(vcData []byte, opts ...CredentialOpt) (*Credential, error) {
	vcOpts := getCredentialOpts(opts)

	vcStr := unwrapStringVC(vcData)

	if jwt.IsJWS(vcStr) {
		vc, err := ParseCredentialJWT(vcStr)
		if err != nil {
			return nil, fmt.Errorf("decode new JWT credential: %w", err)
		}

		if !vcOpts.disabledProofCheck {
			if err = vc.CheckProof(opts...); err != nil {
				return nil, err
			}
		}

		return vc, nil
	}

	vcJSON, err := parseCredentialJSON(vcData)
	if err != nil {
		return nil, fmt.Errorf("decode new credential: %w", err)
	}

	return ParseCredentialJSON(vcJSON, opts...)
}

// CheckProof checks the proof of the JWT enveloped credential.
func (vc *Credential) CheckProof(opts ...CredentialOpt) error {
	vcOpts := getCredentialOpts(opts)

	if vc.JWTEnvelope == nil {
		return errors.New("proof check is supported only for JWT credentials")
	}

	if vcOpts.jwtProofChecker == nil {
		return errors.New("jwt proofChecker is not defined")
	}

	err := jwt.CheckProof(vc.JWTEnvelope.JWT, vcOpts.jwtProofChecker, nil)
	if err != nil {
		return fmt.Errorf("JWS proof check: %w", err)
	}

	return nil
}

type externalJWTVC struct {
	JWT string `json:"jwt,omitempty"`
}

func unQuote(s []byte) []byte {
	if len(s) <= 1 {
		return s
	}

	if s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	return s
}

func unwrapStringVC(vcData []byte) string {
	vcStr := string(unQuote(vcData))

	jwtHolder := &externalJWTVC{}
	e := json.Unmarshal(vcData, jwtHolder)

	hasJWT := e == nil && jwtHolder.JWT != ""
	if hasJWT {
		vcStr = jwtHolder.JWT
	}

	return vcStr
}

func parseCredentialJSON(vcJSON []byte) (JSONObject, error) {
	// Unmarshal raw credential from JSON.
	var raw JSONObject

	err := json.Unmarshal(vcJSON, &raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal new credential: %w", err)
	}

	return raw, nil
}

func parseCredentialContents(raw JSONObject) (*CredentialContents, error) {
	schemas, err := decodeCredentialSchemas(raw[jsonFldSchema])
	if err != nil {
		return nil, fmt.Errorf("fill credential schemas from raw: %w", err)
	}

	if schemas == nil {
		schemas = make([]TypedID, 0)
	}

	types, err := decodeType(raw[jsonFldType])
	if err != nil {
		return nil, fmt.Errorf("fill credential types from raw: %w", err)
	}

	issuer, err := parseIssuer(raw[jsonFldIssuer])
	if err != nil {
		return nil, fmt.Errorf("fill credential issuer from raw: %w", err)
	}

	context, customContext, err := decodeContext(raw[jsonFldContext])
	if err != nil {
		return nil, fmt.Errorf("fill credential context from raw: %w", err)
	}

	subjects, err := parseSubject(raw[jsonFldSubject])
	if err != nil {
		return nil, fmt.Errorf("fill credential subject from raw: %w", err)
	}

	sdJWTHashAlgCode, err := parseSDAlg(raw)
	if err != nil {
		return nil, fmt.Errorf("fill credential sd jwt alg from raw: %w", err)
	}

	id, err := parseStringFld(raw, jsonFldID)
	if err != nil {
		return nil, fmt.Errorf("fill credential id from raw: %w", err)
	}

	issued, err := parseTimeFld(raw, jsonFldIssued)
	if err != nil {
		return nil, fmt.Errorf("fill credential issued from raw: %w", err)
	}

	expired, err := parseTimeFld(raw, jsonFldExpired)
	if err != nil {
		return nil, fmt.Errorf("fill credential expired from raw: %w", err)
	}

	return &CredentialContents{
		Context:       context,
		CustomContext: customContext,
		ID:            id,
		Types:         types,
		Subject:       subjects,
		Issuer:        issuer,
		Issued:        issued,
		Expired:       expired,
		Schemas:       schemas,
		SDJWTHashAlg:  sdJWTHashAlgCode,
	}, nil
}

func parseSDAlg(rawCred JSONObject) (*crypto.Hash, error) {
	if _, ok := rawCred[jsonFldSDJWTHashAlg]; !ok {
		return nil, nil
	}

	sdJWTHashAlgStr, err := parseStringFld(rawCred, jsonFldSDJWTHashAlg)
	if err != nil {
		return nil, fmt.Errorf("get %q fld: %w", jsonFldSDJWTHashAlg, err)
	}

	sdJWTHashAlgCode, err := common.ParseCryptoHashAlg(sdJWTHashAlgStr)
	if err != nil {
		return nil, fmt.Errorf("parse sd jwt alg string: %w", err)
	}

	return &sdJWTHashAlgCode, nil
}

func getCredentialOpts(opts []CredentialOpt) *credentialOpts {
	crOpts := &credentialOpts{}

	for _, opt := range opts {
		opt(crOpts)
	}

	if crOpts.schemaLoader == nil {
		crOpts.schemaLoader = newDefaultSchemaLoader()
	}

	return crOpts
}

func newDefaultSchemaLoader() *CredentialSchemaLoader {
	return NewCredentialSchemaLoaderBuilder().Build()
}

// SerializeSubject converts subject(s) JSON object or array
// If the subject is nil no error will be returned.
func SerializeSubject(subject []Subject) interface{} {
	if subject == nil {
		return nil
	}

	if len(subject) == 1 {
		return SubjectToJSON(subject[0])
	}

	return mapSlice(subject, SubjectToJSON)
}

func validateJSONSchema(vcJSON JSONObject, vcc *CredentialContents, opts *credentialOpts) error {
	return validateCredentialUsingJSONSchema(vcJSON, vcc.Schemas, opts)
}

func validateCredentialUsingJSONSchema(vcJSON JSONObject, schemas []TypedID, opts *credentialOpts) error {
	// Validate that the Verifiable Credential conforms to the serialization of the Verifiable Credential data model
	// (https://w3c.github.io/vc-data-model/#example-1-a-simple-example-of-a-verifiable-credential)
	schema, err := getJSONSchema(schemas, opts)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(vcJSON))
	if err != nil {
		return fmt.Errorf("validation of verifiable credential: %w", err)
	}

	if !result.Valid() {
		errMsg := describeSchemaValidationError(result, "verifiable credential")
		return errors.New(errMsg)
	}

	return nil
}

func getJSONSchema(schemas []TypedID, opts *credentialOpts) (*gojsonschema.Schema, error) {
	if opts.disabledCustomSchema {
		return defaultCompiledSchemaWithOpts(opts)
	}

	for _, schema := range schemas {
		switch schema.Type {
		case jsonSchema2018Type:
			customSchema, err := opts.schemaLoader.compiledSchema(schema.ID)
			if err != nil {
				return nil, fmt.Errorf("load of custom credential schema from %s: %w", schema.ID, err)
			}

			return customSchema, nil
		default:
			errLogger.Printf("unsupported credential schema: %s. Using default schema for validation", schema.Type)
		}
	}

	// If no custom schema is chosen, use default one
	return defaultCompiledSchemaWithOpts(opts)
}

// compiledSchema returns the compiled schema for the given URL. The schema
// document itself is served by the byte cache, compilation is skipped when
// the document has not changed.
func (l *CredentialSchemaLoader) compiledSchema(url string) (*gojsonschema.Schema, error) {
	schemaBytes, err := l.schemaBytes(url)
	if err != nil {
		return nil, err
	}

	cacheKey := string(schemaBytes)

	if compiled, ok := l.compiled.Get(cacheKey); ok {
		return compiled, nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("compile credential schema: %w", err)
	}

	l.compiled.Add(cacheKey, compiled)

	return compiled, nil
}

func (l *CredentialSchemaLoader) schemaBytes(url string) ([]byte, error) {
	if l.cache == nil {
		return loadJSONSchema(url, l.schemaDownloadClient)
	}

	// Check the cache first.
	if cachedBytes, ok := l.cache.Get(url); ok {
		return cachedBytes, nil
	}

	schemaBytes, err := loadJSONSchema(url, l.schemaDownloadClient)
	if err != nil {
		return nil, err
	}

	// Put the loaded schema into cache
	l.cache.Put(url, schemaBytes)

	return schemaBytes, nil
}

func loadJSONSchema(url string, client *http.Client) ([]byte, error) {
	resp, err := client.Get(url) //nolint:noctx
	if err != nil {
		return nil, fmt.Errorf("load credential schema: %w", err)
	}

	defer func() {
		e := resp.Body.Close()
		if e != nil {
			errLogger.Printf("closing response body failed [%v]", e)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("credential schema endpoint HTTP failure [%v]", resp.StatusCode)
	}

	var gotBody []byte

	gotBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("credential schema: read response body: %w", err)
	}

	return gotBody, nil
}

type schemaOpts struct {
	disabledChecks []string
}

// SchemaOpt is create default schema options.
type SchemaOpt func(*schemaOpts)

// WithDisableRequiredField disabled check of required field in default schema.
func WithDisableRequiredField(fieldName string) SchemaOpt {
	return func(opts *schemaOpts) {
		opts.disabledChecks = append(opts.disabledChecks, fieldName)
	}
}

// JSONSchemaLoader creates default schema with the option to disable the check of specific properties.
func JSONSchemaLoader(opts ...SchemaOpt) string {
	defaultRequired := []string{
		schemaPropertyType,
		schemaPropertyCredentialSubject,
		schemaPropertyIssuer,
		schemaPropertyIssuanceDate,
	}

	dsOpts := &schemaOpts{}
	for _, opt := range opts {
		opt(dsOpts)
	}

	required := ""

	for _, prop := range defaultRequired {
		filterOut := false

		for _, d := range dsOpts.disabledChecks {
			if prop == d {
				filterOut = true
				break
			}
		}

		if !filterOut {
			required += fmt.Sprintf(",%q", prop)
		}
	}

	return fmt.Sprintf(DefaultSchemaTemplate, required)
}

var (
	baseSchemaOnce     sync.Once
	baseSchemaCompiled *gojsonschema.Schema
	baseSchemaErr      error
)

func defaultCompiledSchemaWithOpts(opts *credentialOpts) (*gojsonschema.Schema, error) {
	if opts.defaultSchema != "" {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(opts.defaultSchema))
		if err != nil {
			return nil, fmt.Errorf("compile credential schema: %w", err)
		}

		return schema, nil
	}

	// The base template is constant, compile it once for all validations.
	baseSchemaOnce.Do(func() {
		baseSchemaCompiled, baseSchemaErr = gojsonschema.NewSchema(defaultSchemaLoader())
	})

	if baseSchemaErr != nil {
		return nil, fmt.Errorf("compile base credential schema: %w", baseSchemaErr)
	}

	return baseSchemaCompiled, nil
}

func defaultSchemaLoader() gojsonschema.JSONLoader {
	return gojsonschema.NewStringLoader(JSONSchemaLoader())
}

// JWTClaims converts Verifiable Credential into JWT Credential claims, which can be than serialized
// e.g. into JWS.
func (vc *Credential) JWTClaims(minimizeVC bool) (*JWTCredClaims, error) {
	return newJWTCredClaims(vc, minimizeVC)
}

// CreateSignedJWTVC envelops current vc into signed jwt.
func (vc *Credential) CreateSignedJWTVC(
	minimizeVC bool,
	signatureAlg JWSAlgorithm,
	proofCreator jwt.ProofCreator,
	keyID string,
) (*Credential, error) {
	jwtClaims, err := vc.JWTClaims(minimizeVC)
	if err != nil {
		return nil, err
	}

	jwsString, joseHeaders, err := jwtClaims.MarshalJWS(signatureAlg, proofCreator, keyID)
	if err != nil {
		return nil, err
	}

	return &Credential{
		credentialJSON:     vc.ToRawJSON(),
		credentialContents: vc.Contents(),
		JWTEnvelope: &JWTEnvelope{
			JWT:        jwsString,
			JWTHeaders: joseHeaders,
		},
	}, nil
}

// SubjectID gets ID of single subject if present or
// returns error if there are several subjects or one without ID defined.
func SubjectID(subject []Subject) (string, error) {
	if len(subject) == 0 {
		return "", errors.New("no subject is defined")
	}

	if len(subject) > 1 {
		return "", errors.New("more than one subject is defined")
	}

	if subject[0].ID == "" {
		return "", errors.New("subject id is not defined")
	}

	return subject[0].ID, nil
}

func serializeCredentialContents(vcc *CredentialContents) (JSONObject, error) {
	contexts := contextToRaw(vcc.Context, vcc.CustomContext)

	vcJSON := map[string]interface{}{}

	if len(contexts) > 0 {
		vcJSON[jsonFldContext] = contexts
	}

	if vcc.ID != "" {
		vcJSON[jsonFldID] = vcc.ID
	}

	if len(vcc.Types) > 0 {
		vcJSON[jsonFldType] = serializeTypes(vcc.Types)
	}

	if len(vcc.Subject) > 0 {
		vcJSON[jsonFldSubject] = SerializeSubject(vcc.Subject)
	}

	if vcc.Issuer != nil {
		vcJSON[jsonFldIssuer] = serializeIssuer(*vcc.Issuer)
	}

	if len(vcc.Schemas) > 0 {
		vcJSON[jsonFldSchema] = typedIDsToRaw(vcc.Schemas)
	}

	if vcc.Issued != nil {
		vcJSON[jsonFldIssued] = serializeTime(vcc.Issued)
	}

	if vcc.Expired != nil {
		vcJSON[jsonFldExpired] = serializeTime(vcc.Expired)
	}

	if vcc.SDJWTHashAlg != nil {
		sdHashAlg, err := common.FormatCryptoHashAlg(*vcc.SDJWTHashAlg)
		if err != nil {
			return nil, fmt.Errorf("try to serialize %s: %w", jsonFldSDJWTHashAlg, err)
		}

		vcJSON[jsonFldSDJWTHashAlg] = sdHashAlg
	}

	return vcJSON, nil
}

func serializeTime(t *util.TimeWrapper) interface{} {
	return t.FormatToString()
}

func serializeTypes(types []string) interface{} {
	if len(types) == 1 {
		// as string
		return types[0]
	}

	// as []interface{} if strings
	return mapSlice(types, func(t string) interface{} {
		return t
	})
}

func contextToRaw(context []string, cContext []interface{}) []interface{} {
	// return as array
	sContext := make([]interface{}, len(context), len(context)+len(cContext))
	for i := range context {
		sContext[i] = context[i]
	}

	sContext = append(sContext, cContext...)

	return sContext
}

func typedIDsToRaw(typedIDs []TypedID) interface{} {
	switch len(typedIDs) {
	case 1:
		return serializeTypedIDObj(typedIDs[0])
	default:
		return mapSlice(typedIDs, serializeTypedIDObj)
	}
}

// MarshalJSON converts Verifiable Credential to JSON bytes.
func (vc *Credential) MarshalJSON() ([]byte, error) {
	if vc.JWTEnvelope != nil && vc.JWTEnvelope.JWT != "" {
		// If vc.JWT exists, marshal only the JWT, since all other values should be unchanged
		// from when the JWT was parsed.
		return []byte("\"" + vc.JWTEnvelope.JWT + "\""), nil
	}

	byteCred, err := json.Marshal(vc.ToRawJSON())
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of verifiable credential: %w", err)
	}

	return byteCred, nil
}
