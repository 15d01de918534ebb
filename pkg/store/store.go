// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package store implements the cache: a concurrency-safe map from
// (back-end, file, method fingerprint) to the method's last known
// dependency hash and verification errors, the latter stored as
// position-independent access paths rather than raw AST references so they
// survive a subsequent re-parse.
package store

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vericache/vericache/pkg/access"
	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/fingerprint"
	"github.com/vericache/vericache/pkg/util"
	"github.com/vericache/vericache/pkg/verrors"
)

// Key identifies one cache entry: a method, scoped to the back-end and file
// it was verified against and keyed on the method's own structural
// fingerprint (so moving the method without changing its content still hits
// the cache; the name is part of the fingerprint, so renaming it misses).
type Key struct {
	BackendID string
	File      string
	Method    fingerprint.Digest
}

// LocalizedReason mirrors verrors.Reason, but with the offending node
// replaced by its access path relative to the owning method's root.
type LocalizedReason struct {
	Message string
	Path    access.Path
}

// LocalizedError is the storable form of a verrors.VerificationError: its
// offending node (and reason node, if any) are recorded as access paths
// rather than as live *ast.Node values, which would otherwise pin an
// entire stale AST in memory and could never be relocated. Reason uses
// util.Option rather than a pointer so an absent reason is a first-class
// value rather than a nil to guard against at every read site.
type LocalizedError struct {
	Kind           verrors.Kind
	Message        string
	OffendingPath  access.Path
	Reason         util.Option[LocalizedReason]
	CounterExample map[string]string
}

// Entry is one cache record: the dependency hash the errors were computed
// against, and the errors themselves.
type Entry struct {
	DependencyHash fingerprint.Digest
	Errors         []LocalizedError
}

// Store is the incremental verification cache itself. The zero value is
// not usable; construct with New. A Store may be shared across concurrent
// verification jobs for different (backend, file) pairs; RWMutex favours
// the common case of many concurrent lookups against occasional updates.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

// New constructs an empty Store.
func New() *Store {
	return &Store{entries: make(map[Key]Entry)}
}

// Get looks up the cache entry for key. The second return is false if no
// entry exists yet -- a cold-cache miss, not an error.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]

	return e, ok
}

// Update installs (overwriting, if present) the cache entry for key.
func (s *Store) Update(key Key, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
}

// InvalidateFile drops every entry recorded against file, regardless of
// back-end or method. The orchestrator does not call it: a front-end
// failure leaves the store untouched.
func (s *Store) InvalidateFile(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if k.File == file {
			delete(s.entries, k)
		}
	}
}

// Len reports the number of entries currently cached, for statistics
// reporting.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Localize converts a fresh VerificationError, produced by a back-end
// against methodRoot, into its storable form. It returns false (and logs)
// if the offending node cannot be found beneath methodRoot at all, which
// indicates a back-end reported an error against a node from a different
// method entirely -- an invariant violation on the back-end's part.
func Localize(err verrors.VerificationError, methodRoot ast.Node) (LocalizedError, bool) {
	offendingPath, ok := access.PathTo(methodRoot, err.Offending)
	if !ok {
		log.Warnf("store: could not localize offending node for %s error, dropping from cache", err.Kind)
		return LocalizedError{}, false
	}

	le := LocalizedError{
		Kind:           err.Kind,
		Message:        err.Message,
		OffendingPath:  offendingPath,
		CounterExample: err.CounterExample,
	}

	if err.Reason != nil {
		reasonPath, ok := access.PathTo(methodRoot, err.Reason.Offending)
		if !ok {
			log.Warnf("store: could not localize reason node for %s error, storing without reason", err.Kind)
		} else {
			le.Reason = util.Some(LocalizedReason{Message: err.Reason.Message, Path: reasonPath})
		}
	}

	return le, true
}

// Delocalize resolves a LocalizedError's access paths against a (possibly
// newly re-parsed) methodRoot, producing a fresh VerificationError with
// Cached set. It returns false if the path no longer resolves -- a stale
// access path, per §4.2's I3 -- in which case the caller must treat this as
// a cache miss for the affected method rather than trust a wrong position.
func Delocalize(le LocalizedError, methodRoot ast.Node) (verrors.VerificationError, bool) {
	offending, ok := access.Locate(methodRoot, le.OffendingPath)
	if !ok {
		log.Debugf("store: stale access path for %s error, cache entry no longer valid", le.Kind)
		return verrors.VerificationError{}, false
	}

	ve := verrors.VerificationError{
		Kind:           le.Kind,
		Message:        le.Message,
		Offending:      offending,
		Cached:         true,
		CounterExample: le.CounterExample,
	}

	if le.Reason.HasValue() {
		reason := le.Reason.Unwrap()

		reasonNode, ok := access.Locate(methodRoot, reason.Path)
		if !ok {
			log.Debugf("store: stale reason access path for %s error, cache entry no longer valid", le.Kind)
			return verrors.VerificationError{}, false
		}

		ve.Reason = &verrors.Reason{Message: reason.Message, Offending: reasonNode}
	}

	return ve, true
}
