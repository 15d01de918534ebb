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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/vericache/vericache/pkg/ast"
	"github.com/vericache/vericache/pkg/verrors"
)

func init() {
	Register("subprocess", newSubprocessBackend)
}

// subprocessBackend drives an out-of-process verifier reachable as an
// ordinary executable: the reduced program is marshalled to JSON on its
// stdin, and a JSON report of verification errors is read back from its
// stdout. This is the shape every real solver-driven back-end the cache
// consumes takes -- the cache itself never links against a solver.
type subprocessBackend struct {
	id   string
	path string
	args []string

	mu      sync.Mutex
	current *exec.Cmd
}

func newSubprocessBackend(cfg Config) (Backend, error) {
	path, ok := cfg["cmd"]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: subprocess backend requires a \"cmd\" configuration entry", verrors.ErrConfiguration)
	}

	id := cfg["id"]
	if id == "" {
		id = "subprocess:" + path
	}

	return &subprocessBackend{id: id, path: path}, nil
}

// ID implements Backend.
func (b *subprocessBackend) ID() string { return b.id }

// wireProgram is the JSON payload sent to the subprocess: a minimal
// projection of ast.Program listing each method's name and whether it has a
// body. Method bodies and the other members are not serialised.
type wireProgram struct {
	Methods []wireMethod `json:"methods"`
}

type wireMethod struct {
	Name     string `json:"name"`
	HasBody  bool   `json:"hasBody"`
}

type wireError struct {
	Kind    string            `json:"kind"`
	Method  string            `json:"method"`
	Message string            `json:"message"`
	Line    int               `json:"line"`
	Column  int               `json:"column"`
	Reason  *wireReason       `json:"reason,omitempty"`
	Model   map[string]string `json:"counterExample,omitempty"`
}

type wireReason struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type wireReport struct {
	Errors []wireError `json:"errors"`
}

// Verify implements Backend.
func (b *subprocessBackend) Verify(ctx context.Context, program *ast.Program) (Result, error) {
	payload := wireProgram{Methods: make([]wireMethod, len(program.Methods))}
	for i, m := range program.Methods {
		payload.Methods[i] = wireMethod{Name: m.Name, HasBody: m.Body != nil}
	}

	in, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: encoding program for %s: %v", verrors.ErrVerification, b.id, err)
	}

	cmd := exec.CommandContext(ctx, b.path, b.args...)
	cmd.Stdin = bytes.NewReader(in)

	var out bytes.Buffer
	cmd.Stdout = &out

	b.mu.Lock()
	b.current = cmd
	b.mu.Unlock()

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", verrors.ErrVerification, b.id, err)
	}

	var report wireReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		return Result{}, fmt.Errorf("%w: decoding %s output: %v", verrors.ErrVerification, b.id, err)
	}

	return decodeReport(program, report)
}

// Stop implements Backend.
func (b *subprocessBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current != nil && b.current.Process != nil {
		_ = b.current.Process.Kill()
	}
}

// decodeReport resolves each wire error's method name and line/column back
// into an offending ast.Node within program, since the wire format never
// carries node references directly.
func decodeReport(program *ast.Program, report wireReport) (Result, error) {
	result := Result{Errors: make([]verrors.VerificationError, 0, len(report.Errors))}

	for _, we := range report.Errors {
		m := program.FindMethod(we.Method)
		if m == nil {
			return Result{}, fmt.Errorf("%w: back-end reported an error against unknown method %q", verrors.ErrInvariantViolation, we.Method)
		}

		offending := findByPosition(m, we.Line, we.Column)
		if offending == nil {
			return Result{}, fmt.Errorf("%w: back-end error for %q carries no resolvable position", verrors.ErrInvariantViolation, we.Method)
		}

		ve := verrors.VerificationError{
			Kind:           decodeKind(we.Kind),
			Message:        we.Message,
			Offending:      offending,
			CounterExample: we.Model,
		}

		if we.Reason != nil {
			if reasonNode := findByPosition(m, we.Reason.Line, we.Reason.Column); reasonNode != nil {
				ve.Reason = &verrors.Reason{Message: we.Reason.Message, Offending: reasonNode}
			}
		}

		result.Errors = append(result.Errors, ve)
	}

	return result, nil
}

// findByPosition performs a depth-first search of root for the (first)
// node whose position matches (line, column) exactly.
func findByPosition(root ast.Node, line, column int) ast.Node {
	if root == nil {
		return nil
	}

	if p := root.Pos(); p.HasPosition() && p.Line() == line && p.Column() == column {
		return root
	}

	for _, c := range root.Children() {
		if found := findByPosition(c, line, column); found != nil {
			return found
		}
	}

	return nil
}

var wireKinds = map[string]verrors.Kind{
	"assignment.failed":               verrors.AssignmentFailed,
	"call.failed":                     verrors.CallFailed,
	"precondition.violated":           verrors.PreconditionViolated,
	"postcondition.violated":          verrors.PostconditionViolated,
	"invariant.not.established":       verrors.InvariantNotEstablished,
	"invariant.not.preserved":         verrors.InvariantNotPreserved,
	"fold.failed":                     verrors.FoldFailed,
	"unfold.failed":                   verrors.UnfoldFailed,
	"package.failed":                  verrors.PackageFailed,
	"apply.failed":                    verrors.ApplyFailed,
	"assert.failed":                   verrors.AssertFailed,
	"inhale.failed":                   verrors.InhaleFailed,
	"exhale.failed":                   verrors.ExhaleFailed,
	"termination.failed":              verrors.TerminationFailed,
	"function.wellformedness.failed":  verrors.FunctionWellformednessFailed,
	"predicate.wellformedness.failed": verrors.PredicateWellformednessFailed,
	"wand.wellformedness.failed":      verrors.MagicWandWellformednessFailed,
	"heuristics.failed":               verrors.HeuristicsFailed,
}

func decodeKind(s string) verrors.Kind {
	if k, ok := wireKinds[s]; ok {
		return k
	}

	return verrors.InternalError
}
