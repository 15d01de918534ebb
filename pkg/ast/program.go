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
package ast

// Program is the translated, typed AST produced by the front-end: the
// output of parse/typecheck/translate and the sole input to the cache and
// to a back-end's verify call.
type Program struct {
	Methods    []*Method
	Functions  []*Function
	Predicates []*Predicate
	Domains    []*Domain
	Fields     []*Field
}

// AllMembers returns every top-level member across all five kinds, in a
// stable order (methods, functions, predicates, domains, fields).
func (p *Program) AllMembers() []Member {
	members := make([]Member, 0, len(p.Methods)+len(p.Functions)+len(p.Predicates)+len(p.Domains)+len(p.Fields))
	for _, m := range p.Methods {
		members = append(members, m)
	}

	for _, f := range p.Functions {
		members = append(members, f)
	}

	for _, pr := range p.Predicates {
		members = append(members, pr)
	}

	for _, d := range p.Domains {
		members = append(members, d)
	}

	for _, f := range p.Fields {
		members = append(members, f)
	}

	return members
}

// MemberCounts reports the number of members of each kind, as surfaced by
// the orchestrator's StatisticsReport.
type MemberCounts struct {
	Methods    int
	Functions  int
	Predicates int
	Domains    int
	Fields     int
}

// Counts computes the MemberCounts for this program.
func (p *Program) Counts() MemberCounts {
	return MemberCounts{
		Methods:    len(p.Methods),
		Functions:  len(p.Functions),
		Predicates: len(p.Predicates),
		Domains:    len(p.Domains),
		Fields:     len(p.Fields),
	}
}

// FindMethod looks up a method by name, or returns nil.
func (p *Program) FindMethod(name string) *Method {
	for _, m := range p.Methods {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// WithMethods returns a shallow copy of this program with its method list
// replaced.  Functions, predicates, domains and fields are preserved
// unchanged, per §4.5 step 5 ("preserving domains, fields, functions,
// predicates").
func (p *Program) WithMethods(methods []*Method) *Program {
	return &Program{
		Methods:    methods,
		Functions:  p.Functions,
		Predicates: p.Predicates,
		Domains:    p.Domains,
		Fields:     p.Fields,
	}
}

// WithoutBody returns a copy of a method with its body removed.  Used by
// the orchestrator to implement the "body omission" optimisation of §4.5
// step 4: a cache-hit method that is still transitively referenced does not
// need its body re-sent to the back-end.
func (m *Method) WithoutBody() *Method {
	c := *m
	c.Body = nil

	return &c
}
