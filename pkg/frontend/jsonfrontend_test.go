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
package frontend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/frontend"
)

const sampleProgram = `{
  "predicates": [{"name": "pf", "args": [], "body": {"kind": "boolLit", "boolValue": true}}],
  "methods": [
    {
      "name": "foo",
      "line": 3, "col": 1, "endLine": 6,
      "body": {"kind": "seqn", "line": 4, "stmts": [
        {"kind": "unfold", "line": 4, "predicate": {"kind": "predicateAccess", "predicate": "pf", "args": []}},
        {"kind": "assert", "line": 5, "cond": {"kind": "boolLit", "line": 5, "col": 12, "boolValue": true}}
      ]}
    }
  ]
}`

func writeTempFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "program.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestJSONFrontend_ParseTypecheckTranslate(t *testing.T) {
	path := writeTempFile(t, sampleProgram)
	fe := frontend.New(frontend.Config{SourceFile: path})

	require.NoError(t, fe.Parse())
	require.NoError(t, fe.Typecheck())
	require.NoError(t, fe.Translate())

	program := fe.Program()
	require.Len(t, program.Methods, 1)
	require.Len(t, program.Predicates, 1)

	foo := program.FindMethod("foo")
	require.NotNil(t, foo)
	require.Equal(t, 3, foo.Range.StartLine)
	require.Equal(t, 6, foo.Range.EndLine)

	assertStmt, ok := foo.Body.Stmts[1].(*ast.Assert)
	require.True(t, ok)
	require.Equal(t, 5, assertStmt.Pos().Line())
}

func TestJSONFrontend_Typecheck_CatchesUndeclaredReference(t *testing.T) {
	broken := `{"methods": [{"name": "foo", "body": {"kind": "seqn", "stmts": [
		{"kind": "assert", "cond": {"kind": "funcApp", "function": "nonexistent", "args": []}}
	]}}]}`

	path := writeTempFile(t, broken)
	fe := frontend.New(frontend.Config{SourceFile: path})

	require.NoError(t, fe.Parse())
	require.Error(t, fe.Typecheck())
}

func TestJSONFrontend_Program_PanicsBeforeTranslate(t *testing.T) {
	fe := frontend.New(frontend.Config{SourceFile: "unused"})

	require.Panics(t, func() { fe.Program() })
}
