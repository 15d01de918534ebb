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
package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/access"
	"github.com/vericache/vericache/pkg/ast"
)

func exampleMethod() *ast.Method {
	assertion := &ast.Assert{Position: ast.NewPosition("a.vpr", 3, 5), Cond: &ast.BoolLit{Position: ast.NewPosition("a.vpr", 3, 12), Value: false}}

	return &ast.Method{
		Name: "m",
		Position: ast.NewPosition("a.vpr", 1, 1),
		Body: &ast.Seqn{
			Position: ast.NewPosition("a.vpr", 2, 1),
			Stmts:    []ast.Node{assertion},
		},
	}
}

func TestPathTo_And_Locate_RoundTrip(t *testing.T) {
	m := exampleMethod()
	target := m.Body.Stmts[0].(*ast.Assert).Cond

	path, ok := access.PathTo(m, target)
	require.True(t, ok)

	found, ok := access.Locate(m, path)
	require.True(t, ok)
	require.Same(t, target, found)
}

func TestLocate_SurvivesPositionShift(t *testing.T) {
	m := exampleMethod()
	target := m.Body.Stmts[0]

	path, ok := access.PathTo(m, target)
	require.True(t, ok)

	// Reparse with a shifted position: the tree shape is identical but the
	// concrete node values, and their positions, differ.
	reparsed := exampleMethod()
	reparsed.Body.Stmts[0].(*ast.Assert).Position = ast.NewPosition("a.vpr", 30, 5)

	found, ok := access.Locate(reparsed, path)
	require.True(t, ok)
	require.Equal(t, ast.NewPosition("a.vpr", 30, 5), found.Pos())
}

func TestLocate_FailsOnShapeChange(t *testing.T) {
	m := exampleMethod()
	target := m.Body.Stmts[0]

	path, ok := access.PathTo(m, target)
	require.True(t, ok)

	reparsed := exampleMethod()
	reparsed.Body.Stmts = nil // the statement disappeared entirely

	_, ok = access.Locate(reparsed, path)
	require.False(t, ok)
}

func TestPathTo_RootIsEmptyPath(t *testing.T) {
	m := exampleMethod()

	path, ok := access.PathTo(m, m)
	require.True(t, ok)
	require.Empty(t, path)
}

func TestPathTo_UnreachableTargetFails(t *testing.T) {
	m := exampleMethod()
	other := &ast.BoolLit{Value: true}

	_, ok := access.PathTo(m, other)
	require.False(t, ok)
}
