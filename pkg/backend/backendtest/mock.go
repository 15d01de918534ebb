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

// Package backendtest provides a scriptable backend.Backend double for
// exercising pkg/orchestrator without depending on an external solver.
package backendtest

import (
	"context"
	"sync"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/backend"
	"github.com/vericache/vericache/pkg/verrors"
)

// Mock is a backend.Backend whose Verify calls are recorded and whose
// errors are supplied per-method by the test.
type Mock struct {
	IDValue string
	// Errors maps a method name to the errors that method should
	// "fail" verification with. Each error carries its own offending
	// node, so tests can assert on the exact node an error points at.
	Errors map[string][]verrors.VerificationError

	mu      sync.Mutex
	calls   [][]string
	stopped bool
}

// ID implements backend.Backend.
func (m *Mock) ID() string { return m.IDValue }

// Verify implements backend.Backend. It records the names of the methods it
// was asked to verify and returns the scripted errors for each. Like the
// reference back-end, it skips methods without a body, such as the body-less
// cache hits the orchestrator passes along.
func (m *Mock) Verify(_ context.Context, program *ast.Program) (backend.Result, error) {
	names := make([]string, 0, len(program.Methods))

	var result backend.Result

	for _, meth := range program.Methods {
		if meth.Body == nil {
			continue
		}

		names = append(names, meth.Name)
		result.Errors = append(result.Errors, m.Errors[meth.Name]...)
	}

	m.mu.Lock()
	m.calls = append(m.calls, names)
	m.mu.Unlock()

	return result, nil
}

// Stop implements backend.Backend.
func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
}

// Calls returns the sets of method names this mock verified, one entry per
// Verify call, in call order.
func (m *Mock) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]string{}, m.calls...)
}

// Stopped reports whether Stop has been called.
func (m *Mock) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stopped
}
