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

// Package report defines the reporter sink the orchestrator emits typed
// progress messages to. Emission is fire-and-forget from the
// orchestrator's perspective (§4.4): a slow or stalled reporter must never
// hold up verification.
package report

import (
	"time"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

// Reporter receives the fixed set of messages a verification job can emit.
// Every method must return immediately; a Reporter implementation is
// responsible for its own buffering, batching or dropping.
type Reporter interface {
	// ProgramOutlineReport announces the members found in the program,
	// before any back-end interaction.
	ProgramOutlineReport(members []ast.Member)
	// StatisticsReport announces per-kind member counts.
	StatisticsReport(counts ast.MemberCounts)
	// ProgramDefinitionsReport announces the flat definition list, for
	// navigation/outline consumers.
	ProgramDefinitionsReport(defs []ast.Definition)
	// OverallSuccessMessage marks a job that produced no verification
	// errors.
	OverallSuccessMessage(backendName string, elapsed time.Duration)
	// OverallFailureMessage marks a job that produced one or more
	// verification errors.
	OverallFailureMessage(backendName string, elapsed time.Duration, errs []verrors.VerificationError)
	// ExceptionReport marks a job that aborted before producing a
	// verdict at all: a configuration, translation or invariant error.
	ExceptionReport(err error)
}
