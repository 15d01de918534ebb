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
package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/backend"
	"github.com/vericache/vericache/pkg/verrors"
)

func TestResolve_UnknownBackend_IsConfigurationError(t *testing.T) {
	_, err := backend.Resolve("no-such-backend", nil)

	require.Error(t, err)
	require.True(t, errors.Is(err, verrors.ErrConfiguration))
}

func TestResolve_Reference_Succeeds(t *testing.T) {
	b, err := backend.Resolve("reference", nil)

	require.NoError(t, err)
	require.Equal(t, "reference", b.ID())
}

func TestReferenceBackend_FlagsLiteralFalseAssertions(t *testing.T) {
	b, err := backend.Resolve("reference", nil)
	require.NoError(t, err)

	cond := &ast.BoolLit{Value: false}
	m := &ast.Method{Name: "m", Body: &ast.Seqn{Stmts: []ast.Node{&ast.Assert{Cond: cond}}}}
	program := &ast.Program{Methods: []*ast.Method{m}}

	result, err := b.Verify(context.Background(), program)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Same(t, cond, result.Errors[0].Offending)
	require.Equal(t, verrors.AssertFailed, result.Errors[0].Kind)
}

func TestReferenceBackend_NoFailingAssertions_NoErrors(t *testing.T) {
	b, err := backend.Resolve("reference", nil)
	require.NoError(t, err)

	m := &ast.Method{Name: "m", Body: &ast.Seqn{Stmts: []ast.Node{&ast.Assert{Cond: &ast.BoolLit{Value: true}}}}}
	program := &ast.Program{Methods: []*ast.Method{m}}

	result, err := b.Verify(context.Background(), program)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
}
