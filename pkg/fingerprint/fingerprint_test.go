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
package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/fingerprint"
	"github.com/vericache/vericache/pkg/util/assert"
)

func addExpr(pos ast.Position) *ast.BinaryExpr {
	return &ast.BinaryExpr{
		Position: pos,
		Op:       ast.OpAdd,
		Left:     &ast.LocalVar{Position: pos, Name: "x"},
		Right:    &ast.IntLit{Position: pos, Value: 1},
	}
}

func Test_Fingerprint_PositionIndependent(t *testing.T) {
	f := fingerprint.New()
	a := addExpr(ast.NewPosition("a.vpr", 1, 1))
	b := addExpr(ast.NewPosition("a.vpr", 99, 5))

	require.True(t, f.Fingerprint(a).Equals(f.Fingerprint(b)))
}

func Test_Fingerprint_SensitiveToStructure(t *testing.T) {
	f := fingerprint.New()
	a := addExpr(ast.NoPosition)
	b := &ast.BinaryExpr{Op: ast.OpSub, Left: a.Left, Right: a.Right}

	require.False(t, f.Fingerprint(a).Equals(f.Fingerprint(b)))
}

func Test_Fingerprint_SensitiveToLiteralValue(t *testing.T) {
	f := fingerprint.New()
	a := &ast.IntLit{Value: 1}
	b := &ast.IntLit{Value: 2}

	require.False(t, f.Fingerprint(a).Equals(f.Fingerprint(b)))
}

func Test_Fingerprint_SensitiveToArgumentOrder(t *testing.T) {
	f := fingerprint.New()
	x := &ast.LocalVar{Name: "x"}
	y := &ast.LocalVar{Name: "y"}
	a := &ast.BinaryExpr{Op: ast.OpSub, Left: x, Right: y}
	b := &ast.BinaryExpr{Op: ast.OpSub, Left: y, Right: x}

	require.False(t, f.Fingerprint(a).Equals(f.Fingerprint(b)))
}

func Test_Fingerprint_IgnoresMeta(t *testing.T) {
	f := fingerprint.New()
	a := &ast.IntLit{Value: 42, Meta: ast.Meta{Info: "hello"}}
	b := &ast.IntLit{Value: 42, Meta: ast.Meta{Info: "goodbye", ErrorTransformer: struct{}{}}}

	require.True(t, f.Fingerprint(a).Equals(f.Fingerprint(b)))
}

func Test_Fingerprint_MemoizesByIdentity(t *testing.T) {
	f := fingerprint.New()
	shared := &ast.IntLit{Value: 7}
	call := &ast.FuncApp{Function: "double", Args: []ast.Node{shared, shared}}

	d1 := f.Fingerprint(call)
	d2 := f.Fingerprint(call)

	require.True(t, d1.Equals(d2))
}

func Test_Fingerprint_NilIsZero(t *testing.T) {
	f := fingerprint.New()
	require.True(t, f.Fingerprint(nil).Equals(fingerprint.Zero))
}

func Test_Fingerprint_DigestFieldsAreDeterministic(t *testing.T) {
	f := fingerprint.New()
	d := f.Fingerprint(&ast.IntLit{Value: 42})

	assert.Equal(t, d.Hi, f.Fingerprint(&ast.IntLit{Value: 42}).Hi)
	assert.Equal(t, d.Lo, f.Fingerprint(&ast.IntLit{Value: 42}).Lo)
}
