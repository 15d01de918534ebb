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

// Package access implements the Node Locator: a position-independent path
// from a member's root to one of its descendants, used to relocate a cached
// error's offending node (and reason node) inside a freshly re-parsed AST
// whose positions have shifted but whose structure has not.
package access

import (
	log "github.com/sirupsen/logrus"

	"github.com/vericache/vericache/pkg/ast"
)

// Step is one descent: "the child at Index among Parent's children whose
// own tag is Tag". Recording the tag alongside the index guards against
// silently landing on the wrong node if intervening children were inserted
// or removed by a change the dependency hash did not catch.
type Step struct {
	Tag   ast.Tag
	Index int
}

// Path is an ordered descent from a root node to one of its descendants.
// An empty Path refers to the root itself.
type Path []Step

// Equals reports whether two paths describe the same descent.
func (p Path) Equals(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// PathTo computes the access path from root to target, where target must be
// reachable via root's Children() graph. The second return is false if
// target is not found anywhere beneath root.
func PathTo(root, target ast.Node) (Path, bool) {
	if root == target {
		return Path{}, true
	}

	for i, child := range root.Children() {
		if child == nil {
			continue
		}

		if path, ok := PathTo(child, target); ok {
			return append(Path{{Tag: child.Tag(), Index: i}}, path...), true
		}
	}

	return nil, false
}

// Locate walks path from root and returns the node it resolves to. It
// returns false, rather than panicking, if the path no longer matches the
// tree's current shape: a stale access path is an expected occurrence (a
// dependency changed shape without the cache noticing) and callers are
// expected to treat it as a cache-lookup-error, not a crash.
func Locate(root ast.Node, path Path) (ast.Node, bool) {
	n := root

	for _, step := range path {
		children := n.Children()
		if step.Index < 0 || step.Index >= len(children) {
			log.Debugf("access: index %d out of range (%d children) while locating %s", step.Index, len(children), step.Tag)
			return nil, false
		}

		next := children[step.Index]
		if next == nil || next.Tag() != step.Tag {
			log.Debugf("access: tag mismatch at index %d: expected %s, found %v", step.Index, step.Tag, next)
			return nil, false
		}

		n = next
	}

	return n, true
}

