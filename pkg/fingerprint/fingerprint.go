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

// Package fingerprint computes position-independent structural content
// hashes over the AST (§4.1).  The design generalises
// pkg/util/collection/hash's Hasher[T]/Array combinator pattern from a
// 64-bit FNV digest to a 128-bit xxhash digest, wide enough that collision
// probability is negligible at the ≤10^6-member workload named in the
// contract.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/vericache/vericache/pkg/ast"
)

// Digest is a 128-bit fingerprint, formed from two independently-seeded
// 64-bit xxhash sums.  Two independent halves keep the collision
// probability of combining many digests (see Combine) far below what a
// single 64-bit sum would give.
type Digest struct {
	Hi uint64
	Lo uint64
}

// Zero is the digest of no content; it is never returned for an actual
// node, but is used as the identity element when combining an empty child
// list.
var Zero = Digest{}

// String renders the digest as hex, e.g. for log messages.
func (d Digest) String() string {
	return fmt.Sprintf("%016x%016x", d.Hi, d.Lo)
}

// Equals reports whether two digests are identical.
func (d Digest) Equals(other Digest) bool {
	return d.Hi == other.Hi && d.Lo == other.Lo
}

// leaf hashes a byte payload into a Digest using two differently-seeded
// xxhash instances.
func leaf(data []byte) Digest {
	hi := xxhash.New()
	hi.Write(data) //nolint:errcheck

	lo := xxhash.NewWithSeed(0x9e3779b97f4a7c15)
	lo.Write(data) //nolint:errcheck

	return Digest{hi.Sum64(), lo.Sum64()}
}

// Combine folds a variant tag and an ordered list of child digests into one
// digest.  Order matters: this is precisely what makes fingerprints
// sensitive to argument order while remaining agnostic to position.
func Combine(tag ast.Tag, children ...Digest) Digest {
	buf := make([]byte, 0, 8+16*len(children))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(tag))

	for _, c := range children {
		buf = binary.LittleEndian.AppendUint64(buf, c.Hi)
		buf = binary.LittleEndian.AppendUint64(buf, c.Lo)
	}

	return leaf(buf)
}

// combineOffset and combinePrime are the standard 64-bit FNV-1a constants,
// used here exactly as pkg/util/collection/hash's Array combinator uses
// them, but applied twice (once per half) to fold an ordered list of
// 128-bit digests into one.
const (
	combineOffset uint64 = 14695981039346656037
	combinePrime  uint64 = 1099511628211
)

// CombineDigests folds an ordered sequence of digests into one, in the
// manner of pkg/util/collection/hash.Array's Hash method.  This is what the
// dependency resolver uses to fold a method's own fingerprint together with
// the fingerprints of every member in its dependency set (§4.2).
func CombineDigests(ds []Digest) Digest {
	hi, lo := combineOffset, combineOffset

	for _, d := range ds {
		hi ^= d.Hi
		hi *= combinePrime
		lo ^= d.Lo
		lo *= combinePrime
	}

	return Digest{hi, lo}
}

// Fingerprinter computes fingerprints over an AST, memoizing results per
// node identity so that a shared or repeatedly-visited subtree (e.g. the
// dependency resolver revisiting a member from multiple call sites) is only
// hashed once.
type Fingerprinter struct {
	cache map[ast.Node]Digest
}

// New constructs an empty Fingerprinter.
func New() *Fingerprinter {
	return &Fingerprinter{cache: make(map[ast.Node]Digest)}
}

// Fingerprint computes (or retrieves the memoized) structural fingerprint
// of a node.  Positions and Meta fields are never read here, satisfying I2.
func (f *Fingerprinter) Fingerprint(n ast.Node) Digest {
	if n == nil {
		return Zero
	}

	if d, ok := f.cache[n]; ok {
		return d
	}

	d := f.hashNode(n)
	f.cache[n] = d

	return d
}

// hashNode dispatches on a node's variant, hashing its literal payload (if
// any) together with the fingerprints of its structural children.  This is
// the single variant-dispatch table the contract calls for; every entry in
// ast.Tag must have a case here.
func (f *Fingerprinter) hashNode(n ast.Node) Digest {
	children := f.childDigests(n)

	switch v := n.(type) {
	case *ast.IntLit:
		return Combine(v.Tag(), leaf(strconv.AppendInt(nil, v.Value, 10)))
	case *ast.BoolLit:
		return Combine(v.Tag(), leaf([]byte(strconv.FormatBool(v.Value))))
	case *ast.LocalVar:
		return Combine(v.Tag(), leaf([]byte(v.Name)))
	case *ast.FieldAccess:
		return Combine(v.Tag(), append(children, leaf([]byte(v.Field)))...)
	case *ast.PredicateAccess:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Predicate))}, children...)...)
	case *ast.UnaryExpr:
		return Combine(v.Tag(), append([]Digest{leaf([]byte{byte(v.Op)})}, children...)...)
	case *ast.BinaryExpr:
		return Combine(v.Tag(), append([]Digest{leaf([]byte{byte(v.Op)})}, children...)...)
	case *ast.LabelledOld:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Label))}, children...)...)
	case *ast.FuncApp:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Function))}, children...)...)
	case *ast.DomainFuncApp:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Domain + "::" + v.Function))}, children...)...)
	case *ast.Forall:
		return Combine(v.Tag(), append([]Digest{hashVars(v.Vars)}, children...)...)
	case *ast.Exists:
		return Combine(v.Tag(), append([]Digest{hashVars(v.Vars)}, children...)...)
	case *ast.SeqExpr:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Op))}, children...)...)
	case *ast.SetExpr:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Op))}, children...)...)
	case *ast.MultisetExpr:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Op))}, children...)...)
	case *ast.LocalVarDecl:
		return Combine(v.Tag(), leaf([]byte(v.Name+":"+v.Type)))
	case *ast.Label:
		return Combine(v.Tag(), leaf([]byte(v.Name)))
	case *ast.Goto:
		return Combine(v.Tag(), leaf([]byte(v.Label)))
	case *ast.MethodCall:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Method))}, children...)...)
	case *ast.Method:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Name)), hashFormals(v.Args), hashFormals(v.Returns)}, children...)...)
	case *ast.Function:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Name + ":" + v.ReturnType)), hashFormals(v.Args)}, children...)...)
	case *ast.Predicate:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Name)), hashFormals(v.Args)}, children...)...)
	case *ast.Domain:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Name)), hashDomainFuncs(v.Funcs)}, children...)...)
	case *ast.Axiom:
		return Combine(v.Tag(), append([]Digest{leaf([]byte(v.Name))}, children...)...)
	case *ast.Field:
		return Combine(v.Tag(), leaf([]byte(v.Name+":"+v.Type)))
	default:
		// Position-only or otherwise contentless nodes (NullLit, FullPerm,
		// NoPerm, WildcardPerm, Result, Seqn, Assert, Inhale, Exhale, Fold,
		// Unfold, Package, Apply, Assignment, If, While, CondExpr, Old,
		// Unfolding, Applying, RangeSeqExpr) are fully described by their
		// tag plus their children.
		return Combine(n.Tag(), children...)
	}
}

func (f *Fingerprinter) childDigests(n ast.Node) []Digest {
	kids := n.Children()
	digests := make([]Digest, len(kids))

	for i, k := range kids {
		digests[i] = f.Fingerprint(k)
	}

	return digests
}

func hashFormals(formals []ast.Formal) Digest {
	buf := make([]byte, 0, 32*len(formals))
	for _, fo := range formals {
		buf = append(buf, []byte(fo.Name+":"+fo.Type+";")...)
	}

	return leaf(buf)
}

func hashVars(vars []ast.BoundVar) Digest {
	buf := make([]byte, 0, 32*len(vars))
	for _, v := range vars {
		buf = append(buf, []byte(v.Name+":"+v.Type+";")...)
	}

	return leaf(buf)
}

func hashDomainFuncs(funcs []ast.DomainFunc) Digest {
	buf := make([]byte, 0, 32*len(funcs))

	for _, df := range funcs {
		buf = append(buf, []byte(df.Name+":"+df.ReturnType+"(")...)
		buf = append(buf, hashFormals(df.Args).String()...)
		buf = append(buf, ')')
	}

	return leaf(buf)
}
