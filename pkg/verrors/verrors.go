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

// Package verrors defines the verification-error taxonomy a back-end
// reports and the cache stores, together with the sentinel error kinds the
// rest of vericache wraps with %w and matches with errors.Is.
package verrors

import (
	"errors"

	"github.com/vericache/vericache/pkg/ast"
)

// Kind identifies which verification-error variant an error is. The set is
// closed: every entry a real verification back-end can report has a home
// here, so reporting and caching never need a fallback "unknown" case.
type Kind uint8

// The verification-error variants.
const (
	AssignmentFailed Kind = iota
	CallFailed
	PreconditionViolated
	PostconditionViolated
	InvariantNotEstablished
	InvariantNotPreserved
	FoldFailed
	UnfoldFailed
	PackageFailed
	ApplyFailed
	AssertFailed
	InhaleFailed
	ExhaleFailed
	TerminationFailed
	FunctionWellformednessFailed
	PredicateWellformednessFailed
	MagicWandWellformednessFailed
	HeuristicsFailed
	InternalError
)

var kindNames = map[Kind]string{
	AssignmentFailed:             "assignment.failed",
	CallFailed:                   "call.failed",
	PreconditionViolated:         "precondition.violated",
	PostconditionViolated:        "postcondition.violated",
	InvariantNotEstablished:      "invariant.not.established",
	InvariantNotPreserved:        "invariant.not.preserved",
	FoldFailed:                   "fold.failed",
	UnfoldFailed:                 "unfold.failed",
	PackageFailed:                "package.failed",
	ApplyFailed:                  "apply.failed",
	AssertFailed:                 "assert.failed",
	InhaleFailed:                 "inhale.failed",
	ExhaleFailed:                 "exhale.failed",
	TerminationFailed:            "termination.failed",
	FunctionWellformednessFailed: "function.wellformedness.failed",
	PredicateWellformednessFailed: "predicate.wellformedness.failed",
	MagicWandWellformednessFailed: "wand.wellformedness.failed",
	HeuristicsFailed:             "heuristics.failed",
	InternalError:                "internal.error",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown.error"
}

// Reason attaches a secondary explanation to a verification error: e.g. a
// postcondition violation's reason is the specific conjunct within the
// postcondition that failed to hold.
type Reason struct {
	Message   string
	Offending ast.Node
}

// VerificationError is one failure reported by a back-end (or reconstructed
// from a cache entry) against a single offending AST node.
//
// CounterExample is only populated for back-ends able to produce one; it is
// opaque to the cache, which stores and replays it without interpreting it.
type VerificationError struct {
	Kind           Kind
	Message        string
	Offending      ast.Node
	Reason         *Reason
	Cached         bool
	CounterExample map[string]string
}

// SetCached returns a copy of e with Cached set to true. It is pure and
// idempotent (T5): calling it twice, or on an error that is already
// Cached, produces an equal result.
func (e VerificationError) SetCached() VerificationError {
	e.Cached = true
	return e
}

// Sentinel errors identifying the broad failure category of an error
// returned from the orchestrator, matched with errors.Is by callers (in
// particular pkg/cmd, deciding process exit codes).
var (
	// ErrConfiguration is returned for a malformed CLI invocation or
	// config file, e.g. an unknown back-end name.
	ErrConfiguration = errors.New("configuration error")
	// ErrTranslator is returned when the front-end's parse, typecheck or
	// translate step fails; no verification was attempted.
	ErrTranslator = errors.New("translation error")
	// ErrVerification wraps a back-end's own failure to run at all (as
	// opposed to reporting a VerificationError about the program under
	// verification).
	ErrVerification = errors.New("verification error")
	// ErrCacheLookup names the category of a cache entry that cannot be
	// trusted: a stale access path, a corrupted entry, or similar. No
	// function in vericache returns it: store.Delocalize reports a stale
	// entry with a false result, and the orchestrator recovers by
	// re-verifying the affected method instead of aborting the run.
	ErrCacheLookup = errors.New("cache lookup error")
	// ErrInvariantViolation marks an internal contract violation --
	// e.g. a back-end reporting an error with no position -- that
	// indicates a bug in vericache or in the back-end it is driving,
	// not a problem with the program under verification.
	ErrInvariantViolation = errors.New("invariant violation")
)
