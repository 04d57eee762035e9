/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package clock provides the time source used by issuance components.
//
// Components that depend on the current time (proof freshness checks,
// issued-at claim mappers, credential validity windows) take a Provider
// instead of reading the wall clock, so their behavior stays deterministic
// under test.
package clock

import (
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Provider supplies the current time.
type Provider interface {
	Now() time.Time
	UnixSeconds() int64
	UnixMillis() int64
}

// System is a Provider backed by the wall clock.
type System struct {
	clk bclock.Clock
}

// NewSystem creates a wall clock Provider.
func NewSystem() *System {
	return &System{clk: bclock.New()}
}

// NewSystemWithClock creates a Provider backed by the given clock.
// Passing clock.NewMock() gives tests full control over time.
func NewSystemWithClock(clk bclock.Clock) *System {
	return &System{clk: clk}
}

// Now returns the current time.
func (s *System) Now() time.Time {
	return s.clk.Now()
}

// UnixSeconds returns the current Unix time in seconds.
func (s *System) UnixSeconds() int64 {
	return s.clk.Now().Unix()
}

// UnixMillis returns the current Unix time in milliseconds.
func (s *System) UnixMillis() int64 {
	return s.clk.Now().UnixMilli()
}

// Static is a Provider pinned to a fixed instant. It only moves when told to,
// which makes time-derived claims and freshness windows reproducible.
type Static struct {
	mu  sync.RWMutex
	now time.Time
}

// NewStatic creates a Provider pinned to now.
func NewStatic(now time.Time) *Static {
	return &Static{now: now}
}

// NewStaticUnixSeconds creates a Provider pinned to the given Unix time.
func NewStaticUnixSeconds(sec int64) *Static {
	return &Static{now: time.Unix(sec, 0).UTC()}
}

// Now returns the pinned time.
func (s *Static) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.now
}

// UnixSeconds returns the pinned Unix time in seconds.
func (s *Static) UnixSeconds() int64 {
	return s.Now().Unix()
}

// UnixMillis returns the pinned Unix time in milliseconds.
func (s *Static) UnixMillis() int64 {
	return s.Now().UnixMilli()
}

// Set pins the provider to a new instant.
func (s *Static) Set(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

// Advance moves the pinned instant forward by d.
func (s *Static) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = s.now.Add(d)
}
