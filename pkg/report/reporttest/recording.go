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

// Package reporttest provides a synchronous report.Reporter recorder for
// asserting on message ordering in tests, in place of report.Console's
// asynchronous, drop-on-backpressure delivery.
package reporttest

import (
	"sync"
	"time"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

// Event is a discriminated record of one Reporter call.
type Event struct {
	Kind    string
	Members []ast.Member
	Counts  ast.MemberCounts
	Defs    []ast.Definition
	Backend string
	Elapsed time.Duration
	Errors  []verrors.VerificationError
	Err     error
}

// Recording is a Reporter that appends every call, in order, to Events.
type Recording struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recording) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Events = append(r.Events, e)
}

// ProgramOutlineReport implements report.Reporter.
func (r *Recording) ProgramOutlineReport(members []ast.Member) {
	r.record(Event{Kind: "outline", Members: members})
}

// StatisticsReport implements report.Reporter.
func (r *Recording) StatisticsReport(counts ast.MemberCounts) {
	r.record(Event{Kind: "statistics", Counts: counts})
}

// ProgramDefinitionsReport implements report.Reporter.
func (r *Recording) ProgramDefinitionsReport(defs []ast.Definition) {
	r.record(Event{Kind: "definitions", Defs: defs})
}

// OverallSuccessMessage implements report.Reporter.
func (r *Recording) OverallSuccessMessage(backendName string, elapsed time.Duration) {
	r.record(Event{Kind: "success", Backend: backendName, Elapsed: elapsed})
}

// OverallFailureMessage implements report.Reporter.
func (r *Recording) OverallFailureMessage(backendName string, elapsed time.Duration, errs []verrors.VerificationError) {
	r.record(Event{Kind: "failure", Backend: backendName, Elapsed: elapsed, Errors: errs})
}

// ExceptionReport implements report.Reporter.
func (r *Recording) ExceptionReport(err error) {
	r.record(Event{Kind: "exception", Err: err})
}

// Kinds returns the Kind field of every recorded event, in order.
func (r *Recording) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]string, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}

	return kinds
}
