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
package frontend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

// JSONFrontend implements Frontend by reading a program described in a
// small JSON document: a stand-in for the real parser/typechecker this
// cache is designed to sit downstream of, sufficient to drive the
// orchestrator end to end without an external toolchain.
type JSONFrontend struct {
	cfg Config

	doc     *jsonDoc
	program *ast.Program
}

// New constructs a JSONFrontend for cfg. Parse has not yet been called.
func New(cfg Config) *JSONFrontend {
	return &JSONFrontend{cfg: cfg}
}

type jsonDoc struct {
	Fields     []jsonFormal    `json:"fields"`
	Domains    []jsonDomain    `json:"domains"`
	Predicates []jsonPredicate `json:"predicates"`
	Functions  []jsonFunction  `json:"functions"`
	Methods    []jsonMethod    `json:"methods"`
}

type jsonFormal struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonDomainFunc struct {
	Name   string       `json:"name"`
	Args   []jsonFormal `json:"args"`
	Return string       `json:"return"`
}

type jsonAxiom struct {
	Name string   `json:"name"`
	Body jsonExpr `json:"body"`
	Line int      `json:"line"`
	Col  int      `json:"col"`
}

type jsonDomain struct {
	Name   string           `json:"name"`
	Funcs  []jsonDomainFunc `json:"funcs"`
	Axioms []jsonAxiom      `json:"axioms"`
	Line   int              `json:"line"`
	Col    int              `json:"col"`
}

type jsonPredicate struct {
	Name string      `json:"name"`
	Args []jsonFormal `json:"args"`
	Body *jsonExpr   `json:"body"`
	Line int         `json:"line"`
	Col  int         `json:"col"`
}

type jsonFunction struct {
	Name    string       `json:"name"`
	Args    []jsonFormal `json:"args"`
	Return  string       `json:"return"`
	Pres    []jsonExpr   `json:"pres"`
	Posts   []jsonExpr   `json:"posts"`
	Body    *jsonExpr    `json:"body"`
	Line    int          `json:"line"`
	Col     int          `json:"col"`
	EndLine int          `json:"endLine"`
}

type jsonMethod struct {
	Name    string       `json:"name"`
	Args    []jsonFormal `json:"args"`
	Returns []jsonFormal `json:"returns"`
	Pres    []jsonExpr   `json:"pres"`
	Posts   []jsonExpr   `json:"posts"`
	Body    *jsonStmt    `json:"body"`
	Line    int          `json:"line"`
	Col     int          `json:"col"`
	EndLine int          `json:"endLine"`
}

// jsonExpr is a flat, tagged union of every expression shape ast defines.
// Only the fields relevant to Kind are populated by the source document.
type jsonExpr struct {
	Kind      string       `json:"kind"`
	Line      int          `json:"line"`
	Col       int          `json:"col"`
	IntValue  *int64       `json:"intValue,omitempty"`
	BoolValue *bool        `json:"boolValue,omitempty"`
	Name      string       `json:"name,omitempty"`
	Receiver  *jsonExpr    `json:"receiver,omitempty"`
	Field     string       `json:"field,omitempty"`
	Predicate string       `json:"predicate,omitempty"`
	Op        string       `json:"op,omitempty"`
	Operand   *jsonExpr    `json:"operand,omitempty"`
	Left      *jsonExpr    `json:"left,omitempty"`
	Right     *jsonExpr    `json:"right,omitempty"`
	Cond      *jsonExpr    `json:"cond,omitempty"`
	Then      *jsonExpr    `json:"then,omitempty"`
	Else      *jsonExpr    `json:"else,omitempty"`
	Label     string       `json:"label,omitempty"`
	Function  string       `json:"function,omitempty"`
	Domain    string       `json:"domain,omitempty"`
	Vars      []jsonFormal `json:"vars,omitempty"`
	Body      *jsonExpr    `json:"body,omitempty"`
	Args      []jsonExpr   `json:"args,omitempty"`
	Elements  []jsonExpr   `json:"elements,omitempty"`
	Low       *jsonExpr    `json:"low,omitempty"`
	High      *jsonExpr    `json:"high,omitempty"`
	Wand      *jsonExpr    `json:"wand,omitempty"`
}

type jsonStmt struct {
	Kind       string       `json:"kind"`
	Line       int          `json:"line"`
	Col        int          `json:"col"`
	Locals     []jsonFormal `json:"locals,omitempty"`
	Stmts      []jsonStmt   `json:"stmts,omitempty"`
	Cond       *jsonExpr    `json:"cond,omitempty"`
	Predicate  *jsonExpr    `json:"predicate,omitempty"`
	LHS        *jsonExpr    `json:"lhs,omitempty"`
	RHS        *jsonExpr    `json:"rhs,omitempty"`
	Method     string       `json:"method,omitempty"`
	Args       []jsonExpr   `json:"args,omitempty"`
	Targets    []jsonExpr   `json:"targets,omitempty"`
	Then       *jsonStmt    `json:"thenStmt,omitempty"`
	Else       *jsonStmt    `json:"elseStmt,omitempty"`
	Invariants []jsonExpr   `json:"invariants,omitempty"`
	Body       *jsonStmt    `json:"bodyStmt,omitempty"`
	Name       string       `json:"name,omitempty"`
	Label      string       `json:"label,omitempty"`
	Wand       *jsonExpr    `json:"wand,omitempty"`
	Proof      *jsonStmt    `json:"proof,omitempty"`
	Type       string       `json:"type,omitempty"`
}

// Parse implements Frontend.
func (f *JSONFrontend) Parse() error {
	raw, err := os.ReadFile(f.cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", verrors.ErrTranslator, f.cfg.SourceFile, err)
	}

	var doc jsonDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", verrors.ErrTranslator, f.cfg.SourceFile, err)
	}

	f.doc = &doc

	return nil
}

// Typecheck implements Frontend. It validates that every name referenced
// by a method, function, predicate or domain resolves to a declaration --
// the one property the cache's dependency resolver structurally relies on.
func (f *JSONFrontend) Typecheck() error {
	if f.doc == nil {
		return fmt.Errorf("%w: Typecheck called before Parse", verrors.ErrInvariantViolation)
	}

	names := make(map[string]bool)
	for _, fn := range f.doc.Functions {
		names[fn.Name] = true
	}

	for _, p := range f.doc.Predicates {
		names[p.Name] = true
	}

	for _, d := range f.doc.Domains {
		names[d.Name] = true
	}

	for _, fd := range f.doc.Fields {
		names[fd.Name] = true
	}

	methodNames := make(map[string]bool)
	for _, m := range f.doc.Methods {
		methodNames[m.Name] = true
	}

	var missing []string

	checkExpr := func(e jsonExpr) {
		switch e.Kind {
		case "funcApp":
			if !names[e.Function] {
				missing = append(missing, e.Function)
			}
		case "domainFuncApp":
			if !names[e.Domain] {
				missing = append(missing, e.Domain)
			}
		case "predicateAccess":
			if !names[e.Predicate] {
				missing = append(missing, e.Predicate)
			}
		case "fieldAccess":
			if !names[e.Field] {
				missing = append(missing, e.Field)
			}
		}
	}

	var walkExpr func(*jsonExpr)
	walkExpr = func(e *jsonExpr) {
		if e == nil {
			return
		}

		checkExpr(*e)

		for _, c := range []*jsonExpr{e.Receiver, e.Operand, e.Left, e.Right, e.Cond, e.Then, e.Else, e.Body, e.Low, e.High, e.Wand} {
			walkExpr(c)
		}

		for i := range e.Args {
			walkExpr(&e.Args[i])
		}

		for i := range e.Elements {
			walkExpr(&e.Elements[i])
		}
	}

	var walkStmt func(*jsonStmt)
	walkStmt = func(s *jsonStmt) {
		if s == nil {
			return
		}

		if s.Kind == "methodCall" && !methodNames[s.Method] {
			missing = append(missing, s.Method)
		}

		walkExpr(s.Cond)
		walkExpr(s.Predicate)
		walkExpr(s.LHS)
		walkExpr(s.RHS)
		walkExpr(s.Wand)

		for i := range s.Args {
			walkExpr(&s.Args[i])
		}

		for i := range s.Targets {
			walkExpr(&s.Targets[i])
		}

		for i := range s.Invariants {
			walkExpr(&s.Invariants[i])
		}

		for i := range s.Stmts {
			walkStmt(&s.Stmts[i])
		}

		walkStmt(s.Then)
		walkStmt(s.Else)
		walkStmt(s.Body)
		walkStmt(s.Proof)
	}

	for _, m := range f.doc.Methods {
		for _, e := range m.Pres {
			walkExpr(&e)
		}

		for _, e := range m.Posts {
			walkExpr(&e)
		}

		walkStmt(m.Body)
	}

	for _, fn := range f.doc.Functions {
		for _, e := range fn.Pres {
			walkExpr(&e)
		}

		for _, e := range fn.Posts {
			walkExpr(&e)
		}

		walkExpr(fn.Body)
	}

	for _, p := range f.doc.Predicates {
		walkExpr(p.Body)
	}

	for _, d := range f.doc.Domains {
		for _, ax := range d.Axioms {
			walkExpr(&ax.Body)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s references undeclared name(s) %v", verrors.ErrTranslator, f.cfg.SourceFile, missing)
	}

	return nil
}

// Translate implements Frontend.
func (f *JSONFrontend) Translate() error {
	if f.doc == nil {
		return fmt.Errorf("%w: Translate called before Parse", verrors.ErrInvariantViolation)
	}

	t := &translator{file: f.cfg.SourceFile}

	program := &ast.Program{}

	for _, fd := range f.doc.Fields {
		program.Fields = append(program.Fields, &ast.Field{Name: fd.Name, Type: fd.Type})
	}

	for _, d := range f.doc.Domains {
		program.Domains = append(program.Domains, t.translateDomain(d))
	}

	for _, p := range f.doc.Predicates {
		program.Predicates = append(program.Predicates, t.translatePredicate(p))
	}

	for _, fn := range f.doc.Functions {
		program.Functions = append(program.Functions, t.translateFunction(fn))
	}

	for _, m := range f.doc.Methods {
		program.Methods = append(program.Methods, t.translateMethod(m))
	}

	f.program = program

	return nil
}

// Program implements Frontend.
func (f *JSONFrontend) Program() *ast.Program {
	if f.program == nil {
		panic("frontend: Program called before a successful Translate")
	}

	return f.program
}

type translator struct {
	file string
}

func (t *translator) pos(line, col int) ast.Position {
	if line == 0 && col == 0 {
		return ast.NoPosition
	}

	return ast.NewPosition(t.file, line, col)
}

func (t *translator) translateFormals(fs []jsonFormal) []ast.Formal {
	out := make([]ast.Formal, len(fs))
	for i, f := range fs {
		out[i] = ast.Formal{Name: f.Name, Type: f.Type}
	}

	return out
}

func (t *translator) translateBoundVars(fs []jsonFormal) []ast.BoundVar {
	out := make([]ast.BoundVar, len(fs))
	for i, f := range fs {
		out[i] = ast.BoundVar{Name: f.Name, Type: f.Type}
	}

	return out
}

func (t *translator) translateExprs(es []jsonExpr) []ast.Node {
	out := make([]ast.Node, len(es))
	for i, e := range es {
		out[i] = t.translateExpr(e)
	}

	return out
}

func (t *translator) translateMethod(m jsonMethod) *ast.Method {
	var body *ast.Seqn
	if m.Body != nil {
		body, _ = t.translateStmt(*m.Body).(*ast.Seqn)
	}

	return &ast.Method{
		Position: t.pos(m.Line, m.Col),
		Range:    ast.Range{StartLine: m.Line, EndLine: m.EndLine},
		Name:     m.Name,
		Args:     t.translateFormals(m.Args),
		Returns:  t.translateFormals(m.Returns),
		Spec:     ast.Specification{Pres: t.translateExprs(m.Pres), Posts: t.translateExprs(m.Posts)},
		Body:     body,
	}
}

func (t *translator) translateFunction(fn jsonFunction) *ast.Function {
	var body ast.Node
	if fn.Body != nil {
		body = t.translateExpr(*fn.Body)
	}

	return &ast.Function{
		Position:   t.pos(fn.Line, fn.Col),
		Range:      ast.Range{StartLine: fn.Line, EndLine: fn.EndLine},
		Name:       fn.Name,
		Args:       t.translateFormals(fn.Args),
		ReturnType: fn.Return,
		Spec:       ast.Specification{Pres: t.translateExprs(fn.Pres), Posts: t.translateExprs(fn.Posts)},
		Body:       body,
	}
}

func (t *translator) translatePredicate(p jsonPredicate) *ast.Predicate {
	var body ast.Node
	if p.Body != nil {
		body = t.translateExpr(*p.Body)
	}

	return &ast.Predicate{
		Position: t.pos(p.Line, p.Col),
		Name:     p.Name,
		Args:     t.translateFormals(p.Args),
		Body:     body,
	}
}

func (t *translator) translateDomain(d jsonDomain) *ast.Domain {
	funcs := make([]ast.DomainFunc, len(d.Funcs))
	for i, df := range d.Funcs {
		funcs[i] = ast.DomainFunc{Name: df.Name, Args: t.translateFormals(df.Args), ReturnType: df.Return}
	}

	axioms := make([]*ast.Axiom, len(d.Axioms))
	for i, ax := range d.Axioms {
		axioms[i] = &ast.Axiom{Position: t.pos(ax.Line, ax.Col), Name: ax.Name, Body: t.translateExpr(ax.Body)}
	}

	return &ast.Domain{
		Position: t.pos(d.Line, d.Col),
		Name:     d.Name,
		Funcs:    funcs,
		Axioms:   axioms,
	}
}

func (t *translator) translateStmt(s jsonStmt) ast.Node {
	pos := t.pos(s.Line, s.Col)

	switch s.Kind {
	case "seqn":
		locals := make([]*ast.LocalVarDecl, len(s.Locals))
		for i, l := range s.Locals {
			locals[i] = &ast.LocalVarDecl{Name: l.Name, Type: l.Type}
		}

		stmts := make([]ast.Node, len(s.Stmts))
		for i, sub := range s.Stmts {
			stmts[i] = t.translateStmt(sub)
		}

		return &ast.Seqn{Position: pos, Locals: locals, Stmts: stmts}
	case "assert":
		return &ast.Assert{Position: pos, Cond: t.translateExpr(*s.Cond)}
	case "inhale":
		return &ast.Inhale{Position: pos, Cond: t.translateExpr(*s.Cond)}
	case "exhale":
		return &ast.Exhale{Position: pos, Cond: t.translateExpr(*s.Cond)}
	case "fold":
		pa, _ := t.translateExpr(*s.Predicate).(*ast.PredicateAccess)
		return &ast.Fold{Position: pos, Predicate: pa}
	case "unfold":
		pa, _ := t.translateExpr(*s.Predicate).(*ast.PredicateAccess)
		return &ast.Unfold{Position: pos, Predicate: pa}
	case "package":
		proof, _ := t.translateStmt(*s.Proof).(*ast.Seqn)
		return &ast.Package{Position: pos, Wand: t.translateExpr(*s.Wand), Proof: proof}
	case "apply":
		return &ast.Apply{Position: pos, Wand: t.translateExpr(*s.Wand)}
	case "assignment":
		return &ast.Assignment{Position: pos, LHS: t.translateExpr(*s.LHS), RHS: t.translateExpr(*s.RHS)}
	case "methodCall":
		return &ast.MethodCall{Position: pos, Method: s.Method, Args: t.translateExprs(s.Args), Targets: t.translateExprs(s.Targets)}
	case "if":
		then, _ := t.translateStmt(*s.Then).(*ast.Seqn)

		var els *ast.Seqn
		if s.Else != nil {
			els, _ = t.translateStmt(*s.Else).(*ast.Seqn)
		}

		return &ast.If{Position: pos, Cond: t.translateExpr(*s.Cond), Then: then, Else: els}
	case "while":
		body, _ := t.translateStmt(*s.Body).(*ast.Seqn)
		return &ast.While{Position: pos, Cond: t.translateExpr(*s.Cond), Invariants: t.translateExprs(s.Invariants), Body: body}
	case "label":
		return &ast.Label{Position: pos, Name: s.Name}
	case "goto":
		return &ast.Goto{Position: pos, Label: s.Label}
	case "localVarDecl":
		return &ast.LocalVarDecl{Position: pos, Name: s.Name, Type: s.Type}
	default:
		panic(fmt.Sprintf("frontend: unrecognised statement kind %q", s.Kind))
	}
}

func (t *translator) translateExpr(e jsonExpr) ast.Node {
	pos := t.pos(e.Line, e.Col)

	switch e.Kind {
	case "intLit":
		var v int64
		if e.IntValue != nil {
			v = *e.IntValue
		}

		return &ast.IntLit{Position: pos, Value: v}
	case "boolLit":
		var v bool
		if e.BoolValue != nil {
			v = *e.BoolValue
		}

		return &ast.BoolLit{Position: pos, Value: v}
	case "nullLit":
		return &ast.NullLit{Position: pos}
	case "fullPerm":
		return &ast.FullPerm{Position: pos}
	case "noPerm":
		return &ast.NoPerm{Position: pos}
	case "wildcardPerm":
		return &ast.WildcardPerm{Position: pos}
	case "result":
		return &ast.Result{Position: pos}
	case "localVar":
		return &ast.LocalVar{Position: pos, Name: e.Name}
	case "fieldAccess":
		return &ast.FieldAccess{Position: pos, Receiver: t.translateExpr(*e.Receiver), Field: e.Field}
	case "predicateAccess":
		return &ast.PredicateAccess{Position: pos, Predicate: e.Predicate, Args: t.translateExprs(e.Args)}
	case "unary":
		return &ast.UnaryExpr{Position: pos, Op: unOpFromString(e.Op), Operand: t.translateExpr(*e.Operand)}
	case "binary":
		return &ast.BinaryExpr{Position: pos, Op: binOpFromString(e.Op), Left: t.translateExpr(*e.Left), Right: t.translateExpr(*e.Right)}
	case "cond":
		return &ast.CondExpr{Position: pos, Cond: t.translateExpr(*e.Cond), Then: t.translateExpr(*e.Then), Else: t.translateExpr(*e.Else)}
	case "old":
		return &ast.Old{Position: pos, Operand: t.translateExpr(*e.Operand)}
	case "labelledOld":
		return &ast.LabelledOld{Position: pos, Label: e.Label, Operand: t.translateExpr(*e.Operand)}
	case "unfolding":
		pa, _ := t.translateExpr(*e.Receiver).(*ast.PredicateAccess)
		return &ast.Unfolding{Position: pos, Predicate: pa, Body: t.translateExpr(*e.Body)}
	case "applying":
		return &ast.Applying{Position: pos, Wand: t.translateExpr(*e.Wand), Body: t.translateExpr(*e.Body)}
	case "funcApp":
		return &ast.FuncApp{Position: pos, Function: e.Function, Args: t.translateExprs(e.Args)}
	case "domainFuncApp":
		return &ast.DomainFuncApp{Position: pos, Domain: e.Domain, Function: e.Function, Args: t.translateExprs(e.Args)}
	case "forall":
		return &ast.Forall{Position: pos, Vars: t.translateBoundVars(e.Vars), Body: t.translateExpr(*e.Body)}
	case "exists":
		return &ast.Exists{Position: pos, Vars: t.translateBoundVars(e.Vars), Body: t.translateExpr(*e.Body)}
	case "seq":
		return &ast.SeqExpr{Position: pos, Op: e.Op, Elements: t.translateExprs(e.Elements)}
	case "set":
		return &ast.SetExpr{Position: pos, Op: e.Op, Elements: t.translateExprs(e.Elements)}
	case "multiset":
		return &ast.MultisetExpr{Position: pos, Op: e.Op, Elements: t.translateExprs(e.Elements)}
	case "range":
		return &ast.RangeSeqExpr{Position: pos, Low: t.translateExpr(*e.Low), High: t.translateExpr(*e.High)}
	default:
		panic(fmt.Sprintf("frontend: unrecognised expression kind %q", e.Kind))
	}
}

func unOpFromString(s string) ast.UnOp {
	if s == "neg" {
		return ast.OpNeg
	}

	return ast.OpNot
}

var binOps = map[string]ast.BinOp{
	"add": ast.OpAdd, "sub": ast.OpSub, "mul": ast.OpMul, "div": ast.OpDiv, "mod": ast.OpMod,
	"lt": ast.OpLt, "le": ast.OpLe, "gt": ast.OpGt, "ge": ast.OpGe, "eq": ast.OpEq, "neq": ast.OpNeq,
	"and": ast.OpAnd, "or": ast.OpOr, "implies": ast.OpImplies,
	"permAdd": ast.OpPermAdd, "permMul": ast.OpPermMul, "permDiv": ast.OpPermDiv,
}

func binOpFromString(s string) ast.BinOp {
	if op, ok := binOps[s]; ok {
		return op
	}

	return ast.OpAdd
}
