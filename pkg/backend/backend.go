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

// Package backend defines the verification back-end contract and a
// registry of named back-end factories, in the way pkg/cmd resolves a
// named sub-command: a flat string-keyed table, populated by each
// back-end's own init, rather than a big switch statement growing at the
// registry's call site.
package backend

import (
	"context"
	"fmt"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

// Result is everything a back-end reports about one verification run: the
// errors it found, scoped to whatever subset of the program it was asked
// to verify.
type Result struct {
	Errors []verrors.VerificationError
}

// Backend drives an external or in-process verifier against a (possibly
// reduced) program. Implementations must be safe to Stop concurrently with
// a running Verify call, since the orchestrator cancels in-flight jobs via
// ctx but Stop gives a back-end a chance to release process-level
// resources (e.g. a subprocess) beyond what ctx cancellation reaches.
type Backend interface {
	// ID returns this back-end's registry name, echoed into every cache
	// key so entries from different back-ends never collide.
	ID() string
	// Verify runs the back-end against program and returns every
	// verification error found. A non-nil error return means the
	// back-end itself failed to run (crashed, timed out, malformed
	// output); it is distinct from the back-end running successfully
	// and reporting VerificationErrors about the program.
	Verify(ctx context.Context, program *ast.Program) (Result, error)
	// Stop releases any resources this back-end is holding. Safe to
	// call multiple times.
	Stop()
}

// Config carries a back-end's user-supplied configuration, sourced from
// CLI flags and/or a YAML defaults file. It is intentionally untyped
// (string-keyed) because each back-end defines its own configuration
// shape; a back-end unpacks the subset of keys it recognises and ignores the
// rest.
type Config map[string]string

// Factory constructs a Backend from its configuration.
type Factory func(cfg Config) (Backend, error)

var registry = make(map[string]Factory)

// Register installs a back-end factory under name, to be called at
// package-init time by each back-end implementation's own file, mirroring
// how pkg/cmd's sub-commands each register themselves in an init.
func Register(name string, f Factory) {
	registry[name] = f
}

// Resolve constructs the named back-end, or returns an error wrapping
// verrors.ErrConfiguration if name is not registered.
func Resolve(name string, cfg Config) (Backend, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown verification back-end %q", verrors.ErrConfiguration, name)
	}

	return f(cfg)
}

// Names returns the registered back-end names, for CLI help text and
// configuration-error messages.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	return names
}
