/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keystore holds issuer signing keys and picks the active key for a
// given signing algorithm and credential format.
package keystore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/trustbloc/kms-go/doc/jose/jwk"
	kmsapi "github.com/trustbloc/kms-go/spi/kms"
	"golang.org/x/exp/slices"

	"github.com/trustbloc/vci-go/clock"
	proofdesc "github.com/trustbloc/vci-go/proof"
	"github.com/trustbloc/vci-go/proof/defaults"
)

// SigUse marks keys provisioned for signing, the only use the store accepts.
const SigUse = "sig"

// Signer signs data with the private material backing a SigningKey.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// SigningKey is one issuer key record. Records are immutable once registered:
// activation changes swap in a fresh record, so a pointer obtained from
// Resolve keeps the state it was resolved with for the rest of the issuance.
type SigningKey struct {
	KeyID     string
	Algorithm string
	KeyType   kmsapi.KeyType
	Use       string
	Active    bool
	Priority  int
	CreatedAt time.Time
	Formats   []string

	Signer    Signer
	PublicJWK *jwk.JWK
}

// SupportsFormat reports whether the key may sign credentials of the given
// format. A key with no format list signs any format.
func (k *SigningKey) SupportsFormat(format string) bool {
	return len(k.Formats) == 0 || lo.Contains(k.Formats, format)
}

// Descriptor returns the proof descriptor serving the key algorithm.
func (k *SigningKey) Descriptor() (proofdesc.JWTProofDescriptor, bool) {
	return defaults.DescriptorByJWTAlg(k.Algorithm)
}

// Store keeps the registered signing keys. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	keys  map[string]*SigningKey
	clock clock.Provider
}

// Opt configures a Store.
type Opt func(store *Store)

// WithClock sets the time source used to stamp CreatedAt on registration.
func WithClock(provider clock.Provider) Opt {
	return func(store *Store) {
		store.clock = provider
	}
}

// New creates an empty key store.
func New(opts ...Opt) *Store {
	store := &Store{
		keys:  map[string]*SigningKey{},
		clock: clock.NewSystem(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Add registers a signing key. The algorithm must belong to the supported
// descriptor set and accept the declared key type. KeyID defaults to the
// public JWK thumbprint, CreatedAt to the store clock.
func (s *Store) Add(key SigningKey) error {
	if key.Signer == nil {
		return errors.New("signing key requires a signer")
	}

	if key.PublicJWK == nil {
		return errors.New("signing key requires a public jwk")
	}

	desc, ok := defaults.DescriptorByJWTAlg(key.Algorithm)
	if !ok {
		return fmt.Errorf("unsupported jws algorithm %q", key.Algorithm)
	}

	if !keyTypeAccepted(desc, key.KeyType) {
		return fmt.Errorf("algorithm %s does not accept key type %s", key.Algorithm, key.KeyType)
	}

	if key.Use == "" {
		key.Use = SigUse
	}

	if key.Use != SigUse {
		return fmt.Errorf("unsupported key use %q", key.Use)
	}

	if key.KeyID == "" {
		kid, err := thumbprintKeyID(key.PublicJWK)
		if err != nil {
			return fmt.Errorf("derive key id: %w", err)
		}

		key.KeyID = kid
	}

	if key.CreatedAt.IsZero() {
		key.CreatedAt = s.clock.Now()
	}

	key.Formats = append([]string(nil), key.Formats...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[key.KeyID]; exists {
		return fmt.Errorf("signing key %q is already registered", key.KeyID)
	}

	s.keys[key.KeyID] = &key

	return nil
}

// Resolve returns the active signing key for the algorithm and format.
// Among matching keys the highest Priority wins, ties broken by earliest
// CreatedAt and then by KeyID. There is no fallback to another algorithm.
func (s *Store) Resolve(algorithm, format string) (*SigningKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *SigningKey

	for _, key := range s.keys {
		if !key.Active || key.Use != SigUse || key.Algorithm != algorithm || !key.SupportsFormat(format) {
			continue
		}

		if better(key, best) {
			best = key
		}
	}

	if best == nil {
		return nil, &KeyNotFoundError{Algorithm: algorithm, Format: format}
	}

	return best, nil
}

// Get returns the key registered under the given id.
func (s *Store) Get(keyID string) (*SigningKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("signing key %q is not registered", keyID)
	}

	return key, nil
}

// Deactivate takes the key out of the selectable set. The registered record
// is replaced, not mutated.
func (s *Store) Deactivate(keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.keys[keyID]
	if !ok {
		return fmt.Errorf("signing key %q is not registered", keyID)
	}

	if !current.Active {
		return nil
	}

	replacement := *current
	replacement.Active = false

	s.keys[keyID] = &replacement

	return nil
}

// Keys returns a snapshot of the registered keys ordered by KeyID.
func (s *Store) Keys() []*SigningKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := lo.Values(s.keys)

	slices.SortFunc(list, func(a, b *SigningKey) int {
		return strings.Compare(a.KeyID, b.KeyID)
	})

	return list
}

func keyTypeAccepted(desc proofdesc.JWTProofDescriptor, keyType kmsapi.KeyType) bool {
	for _, supported := range desc.SupportedKeys() {
		if supported.KMSKeyType == keyType {
			return true
		}
	}

	return false
}

func better(candidate, current *SigningKey) bool {
	if current == nil {
		return true
	}

	if candidate.Priority != current.Priority {
		return candidate.Priority > current.Priority
	}

	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.Before(current.CreatedAt)
	}

	return candidate.KeyID < current.KeyID
}
