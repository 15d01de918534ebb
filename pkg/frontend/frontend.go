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

// Package frontend defines the contract the orchestrator drives to obtain a
// typed ast.Program: parse, typecheck, translate, in that order, with a
// Program accessor valid only once all three have succeeded. Everything
// upstream of the typed AST -- lexing, name resolution, actual type rules
// -- belongs to a real front-end and is out of scope here; this package
// exists to give the orchestrator something concrete to drive in tests and
// from the command line.
package frontend

import "github.com/vericache/vericache/pkg/ast"

// Config carries the front-end's per-run configuration.
type Config struct {
	// SourceFile is the path the front-end reads from.
	SourceFile string
}

// Frontend produces a typed ast.Program from source, in three explicit
// phases so the orchestrator can attribute a failure to the right one
// (§4.5: a translator failure aborts the job before any cache lookup is
// attempted).
type Frontend interface {
	// Parse reads and syntactically validates the source.
	Parse() error
	// Typecheck validates the parsed source is well-typed. Must be
	// called after a successful Parse.
	Typecheck() error
	// Translate produces the typed ast.Program. Must be called after a
	// successful Typecheck.
	Translate() error
	// Program returns the translated program. Valid only after a
	// successful Translate; panics otherwise, since calling it earlier
	// is a caller bug, not a recoverable condition.
	Program() *ast.Program
}
