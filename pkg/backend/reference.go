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
package backend

import (
	"context"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

func init() {
	Register("reference", newReferenceBackend)
}

// referenceBackend is a trivial in-process back-end that only checks for
// literal-false assertions. It exists so vericache is runnable end to end
// without a real solver installed; it is not a substitute for one.
type referenceBackend struct{}

func newReferenceBackend(Config) (Backend, error) {
	return referenceBackend{}, nil
}

// ID implements Backend.
func (referenceBackend) ID() string { return "reference" }

// Verify implements Backend.
func (referenceBackend) Verify(ctx context.Context, program *ast.Program) (Result, error) {
	var result Result

	for _, m := range program.Methods {
		if m.Body == nil {
			continue
		}

		walkAssertions(m.Body, func(a *ast.Assert) {
			if lit, ok := a.Cond.(*ast.BoolLit); ok && !lit.Value {
				result.Errors = append(result.Errors, verrors.VerificationError{
					Kind:      verrors.AssertFailed,
					Message:   "assertion might not hold",
					Offending: a.Cond,
				})
			}
		})

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
	}

	return result, nil
}

// Stop implements Backend. The reference back-end holds no resources.
func (referenceBackend) Stop() {}

func walkAssertions(n ast.Node, visit func(*ast.Assert)) {
	if n == nil {
		return
	}

	if a, ok := n.(*ast.Assert); ok {
		visit(a)
	}

	for _, c := range n.Children() {
		walkAssertions(c, visit)
	}
}
