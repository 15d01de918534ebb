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

// Package depgraph builds the directed reference graph over a program's
// top-level members (§4.2) and computes each method's dependency hash from
// it.  Method-to-method references are deliberately never followed: editing
// one method's body must never invalidate another method's cache entry.
package depgraph

import (
	"sort"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/fingerprint"
)

// Resolver computes dependency hashes for every method in a program.  It is
// built once per program and is safe to query concurrently: it never
// mutates state after construction.
type Resolver struct {
	program *ast.Program
	fp      *fingerprint.Fingerprinter
	// named indexes every function, predicate, domain and field by name.
	// Methods are intentionally excluded: they are never a dependency
	// edge target.
	named map[string]ast.Member
	// refs caches the direct outgoing references of each named member,
	// computed once and reused by every reachability walk.
	refs map[string][]string
}

// New constructs a Resolver for a program, using fp for member
// fingerprints (so that fingerprints computed during dependency resolution
// are shared with, and memoized alongside, any other fingerprinting done
// over the same program).
func New(program *ast.Program, fp *fingerprint.Fingerprinter) *Resolver {
	r := &Resolver{
		program: program,
		fp:      fp,
		named:   make(map[string]ast.Member),
		refs:    make(map[string][]string),
	}

	for _, f := range program.Functions {
		r.named[f.Name] = f
	}

	for _, p := range program.Predicates {
		r.named[p.Name] = p
	}

	for _, d := range program.Domains {
		r.named[d.Name] = d
	}

	for _, f := range program.Fields {
		r.named[f.Name] = f
	}

	for name, member := range r.named {
		r.refs[name] = directReferences(member, r.named)
	}

	return r
}

// DependencyHash computes M's dependency hash: M's own fingerprint combined
// with the fingerprints of every member in its transitive dependency set,
// in canonical (kind, name) order (§4.2, I4).
func (r *Resolver) DependencyHash(m *ast.Method) fingerprint.Digest {
	deps := r.DependencySet(m)

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].MemberKind() != deps[j].MemberKind() {
			return deps[i].MemberKind() < deps[j].MemberKind()
		}

		return deps[i].MemberName() < deps[j].MemberName()
	})

	digests := make([]fingerprint.Digest, 0, len(deps)+1)
	digests = append(digests, r.fp.Fingerprint(m))

	for _, d := range deps {
		digests = append(digests, r.fp.Fingerprint(d))
	}

	return fingerprint.CombineDigests(digests)
}

// DependencySet returns the set of functions, predicates, domains and
// fields M transitively references, restricted to those four kinds per
// §4.2.  M itself is not included; callers that need {M} ∪ deps(M) (as the
// spec's deps() function does) add it themselves, which DependencyHash
// does.
func (r *Resolver) DependencySet(m *ast.Method) []ast.Member {
	visited := make(map[string]ast.Member)
	queue := directReferences(m, r.named)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, seen := visited[name]; seen {
			continue
		}

		member, ok := r.named[name]
		if !ok {
			continue
		}

		visited[name] = member
		// Cycles among functions/predicates terminate here: refs[name]
		// was computed once at construction time and revisiting an
		// already-visited name is a no-op.
		queue = append(queue, r.refs[name]...)
	}

	deps := make([]ast.Member, 0, len(visited))
	for _, member := range visited {
		deps = append(deps, member)
	}

	return deps
}

// directReferences scans a node's own subtree (not following into other
// methods) for names that refer to entries in named, i.e. the direct
// out-edges of node in the reference graph.
func directReferences(root ast.Node, named map[string]ast.Member) []string {
	var out []string

	var walk func(ast.Node)

	walk = func(n ast.Node) {
		if n == nil {
			return
		}

		switch v := n.(type) {
		case *ast.FuncApp:
			out = append(out, v.Function)
		case *ast.DomainFuncApp:
			out = append(out, v.Domain)
		case *ast.PredicateAccess:
			out = append(out, v.Predicate)
		case *ast.FieldAccess:
			out = append(out, v.Field)
		case *ast.Fold:
			out = append(out, v.Predicate.Predicate)
		case *ast.Unfold:
			out = append(out, v.Predicate.Predicate)
		case *ast.Unfolding:
			out = append(out, v.Predicate.Predicate)
		case *ast.LocalVarDecl:
			if _, ok := named[v.Type]; ok {
				out = append(out, v.Type)
			}
		}

		for _, c := range n.Children() {
			walk(c)
		}
	}

	switch m := root.(type) {
	case *ast.Method:
		for _, formal := range append(append([]ast.Formal{}, m.Args...), m.Returns...) {
			if _, ok := named[formal.Type]; ok {
				out = append(out, formal.Type)
			}
		}

		for _, n := range m.Children() {
			walk(n)
		}
	case *ast.Function:
		for _, formal := range m.Args {
			if _, ok := named[formal.Type]; ok {
				out = append(out, formal.Type)
			}
		}

		if _, ok := named[m.ReturnType]; ok {
			out = append(out, m.ReturnType)
		}

		for _, n := range m.Children() {
			walk(n)
		}
	case *ast.Predicate:
		for _, formal := range m.Args {
			if _, ok := named[formal.Type]; ok {
				out = append(out, formal.Type)
			}
		}

		for _, n := range m.Children() {
			walk(n)
		}
	case *ast.Domain:
		for _, df := range m.Funcs {
			for _, formal := range df.Args {
				if _, ok := named[formal.Type]; ok {
					out = append(out, formal.Type)
				}
			}

			if _, ok := named[df.ReturnType]; ok {
				out = append(out, df.ReturnType)
			}
		}

		for _, n := range m.Children() {
			walk(n)
		}
	default:
		walk(root)
	}

	return out
}
