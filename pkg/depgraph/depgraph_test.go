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
package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/depgraph"
	"github.com/vericache/vericache/pkg/fingerprint"
)

// buildProgram constructs: predicate pf(); method foo() calls pf via
// unfold; method bar() does not reference pf at all.
func buildProgram(pfBody ast.Node) *ast.Program {
	pf := &ast.Predicate{Name: "pf", Body: pfBody}
	foo := &ast.Method{
		Name: "foo",
		Body: &ast.Seqn{Stmts: []ast.Node{
			&ast.Unfold{Predicate: &ast.PredicateAccess{Predicate: "pf"}},
		}},
	}
	bar := &ast.Method{
		Name: "bar",
		Body: &ast.Seqn{Stmts: []ast.Node{
			&ast.Assert{Cond: &ast.BoolLit{Value: true}},
		}},
	}

	return &ast.Program{
		Methods:    []*ast.Method{foo, bar},
		Predicates: []*ast.Predicate{pf},
	}
}

func Test_DependencyHash_OnlyFooDependsOnPredicate(t *testing.T) {
	p1 := buildProgram(&ast.BoolLit{Value: true})
	fp1 := fingerprint.New()
	r1 := depgraph.New(p1, fp1)

	p2 := buildProgram(&ast.BoolLit{Value: false}) // pf's body changes
	fp2 := fingerprint.New()
	r2 := depgraph.New(p2, fp2)

	fooHash1 := r1.DependencyHash(p1.FindMethod("foo"))
	fooHash2 := r2.DependencyHash(p2.FindMethod("foo"))
	barHash1 := r1.DependencyHash(p1.FindMethod("bar"))
	barHash2 := r2.DependencyHash(p2.FindMethod("bar"))

	require.False(t, fooHash1.Equals(fooHash2), "foo depends on pf, so its hash must change")
	require.True(t, barHash1.Equals(barHash2), "bar does not depend on pf, so its hash must not change")
}

func Test_DependencySet_ExcludesMethods(t *testing.T) {
	callee := &ast.Method{Name: "callee"}
	caller := &ast.Method{
		Name: "caller",
		Body: &ast.Seqn{Stmts: []ast.Node{
			&ast.MethodCall{Method: "callee"},
		}},
	}
	p := &ast.Program{Methods: []*ast.Method{caller, callee}}
	r := depgraph.New(p, fingerprint.New())

	deps := r.DependencySet(caller)
	require.Empty(t, deps, "method-to-method references must not be followed")
}

func Test_DependencyHash_HandlesCycles(t *testing.T) {
	// f1 calls f2, f2 calls f1: a genuine cycle among functions.
	f1 := &ast.Function{Name: "f1", Body: &ast.FuncApp{Function: "f2"}}
	f2 := &ast.Function{Name: "f2", Body: &ast.FuncApp{Function: "f1"}}
	m := &ast.Method{
		Name: "m",
		Body: &ast.Seqn{Stmts: []ast.Node{
			&ast.Assert{Cond: &ast.FuncApp{Function: "f1"}},
		}},
	}
	p := &ast.Program{Methods: []*ast.Method{m}, Functions: []*ast.Function{f1, f2}}
	r := depgraph.New(p, fingerprint.New())

	// Must terminate and must include both f1 and f2.
	deps := r.DependencySet(m)
	require.Len(t, deps, 2)
}
