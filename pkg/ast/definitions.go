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

// DefinitionKind identifies the kind of a Definition record, a superset of
// MemberKind that also covers local, scoped declarations.
type DefinitionKind uint8

// Definition kinds.
const (
	DefMethod DefinitionKind = iota
	DefFunction
	DefPredicate
	DefDomain
	DefArgument
	DefReturn
	DefLocal
	DefAxiom
	DefField
)

// Definition is an informational record describing one named declaration,
// used to populate a ProgramDefinitionsReport.  It carries no reference to
// the program cache; it exists purely for outline/navigation purposes.
type Definition struct {
	Name      string
	Kind      DefinitionKind
	Position  Position
	Enclosing *Position
}

// CollectDefinitions walks a program and produces the flat list of
// definitions it contains: members, their formal arguments/returns, their
// local declarations, and domain axioms.
func CollectDefinitions(p *Program) []Definition {
	var defs []Definition

	for _, m := range p.Methods {
		enclosing := m.Position
		defs = append(defs, Definition{m.Name, DefMethod, m.Position, nil})
		defs = append(defs, formalDefs(m.Args, DefArgument, enclosing)...)
		defs = append(defs, formalDefs(m.Returns, DefReturn, enclosing)...)

		if m.Body != nil {
			defs = append(defs, localDefs(m.Body, enclosing)...)
		}
	}

	for _, f := range p.Functions {
		enclosing := f.Position
		defs = append(defs, Definition{f.Name, DefFunction, f.Position, nil})
		defs = append(defs, formalDefs(f.Args, DefArgument, enclosing)...)
	}

	for _, pr := range p.Predicates {
		enclosing := pr.Position
		defs = append(defs, Definition{pr.Name, DefPredicate, pr.Position, nil})
		defs = append(defs, formalDefs(pr.Args, DefArgument, enclosing)...)
	}

	for _, d := range p.Domains {
		enclosing := d.Position
		defs = append(defs, Definition{d.Name, DefDomain, d.Position, nil})

		for _, ax := range d.Axioms {
			defs = append(defs, Definition{ax.Name, DefAxiom, ax.Position, &enclosing})
		}
	}

	for _, f := range p.Fields {
		defs = append(defs, Definition{f.Name, DefField, f.Position, nil})
	}

	return defs
}

func formalDefs(formals []Formal, kind DefinitionKind, enclosing Position) []Definition {
	defs := make([]Definition, 0, len(formals))
	for _, f := range formals {
		defs = append(defs, Definition{f.Name, kind, enclosing, &enclosing})
	}

	return defs
}

// localDefs recursively collects local variable declarations within a
// method body, recording their enclosing scope's position.
func localDefs(body *Seqn, enclosing Position) []Definition {
	var defs []Definition

	for _, l := range body.Locals {
		defs = append(defs, Definition{l.Name, DefLocal, l.Position, &enclosing})
	}

	for _, stmt := range body.Stmts {
		switch s := stmt.(type) {
		case *If:
			defs = append(defs, localDefs(s.Then, enclosing)...)
			if s.Else != nil {
				defs = append(defs, localDefs(s.Else, enclosing)...)
			}
		case *While:
			defs = append(defs, localDefs(s.Body, enclosing)...)
		case *Label:
			defs = append(defs, Definition{s.Name, DefLocal, s.Position, &enclosing})
		}
	}

	return defs
}
