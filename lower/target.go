// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lower implements labeling and rewriting (§4.2): assigning
// path labels to an AST and rewriting enhanced combinators down to the
// primitive set compose/fsm knows how to compile.
package lower

import (
	"strconv"
	"strings"
)

type targetKind int

const (
	targetAll targetKind = iota
	targetNone
	targetList
	targetVersion
)

// Target selects how far Lower rewrites a tree (§4.2):
//   - All: lower maximally, down to primitives only.
//   - None: no lowering at all.
//   - List: stop at any of a caller-given set of combinator names.
//   - Version: target = primitives plus enhanced combinators whose
//     Since is at most the given version.
type Target struct {
	kind    targetKind
	list    map[string]bool
	version string
}

// All lowers maximally: every enhanced combinator is rewritten down to
// primitives. Corresponds to the spec's `true`/`""` target value.
func All() Target { return Target{kind: targetAll} }

// None disables lowering entirely. Corresponds to the spec's `false`.
func None() Target { return Target{kind: targetNone} }

// List stops rewriting as soon as a node's type is one of the given
// names, whether or not it's primitive.
func List(types ...string) Target {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return Target{kind: targetList, list: m}
}

// Version targets primitives plus any enhanced combinator whose
// descriptor Since is at most v.
func Version(v string) Target { return Target{kind: targetVersion, version: v} }

// versionAtMost reports whether since <= target under a simple
// three-component dotted-integer comparison (e.g. "0.1.0" <= "1.0.0").
// Non-numeric or short components default to 0.
func versionAtMost(since, target string) bool {
	s, t := parseVersion(since), parseVersion(target)
	for i := 0; i < 3; i++ {
		if s[i] != t[i] {
			return s[i] < t[i]
		}
	}
	return true
}

func parseVersion(v string) [3]int {
	var out [3]int
	parts := strings.SplitN(v, ".", 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, _ := strconv.Atoi(parts[i])
		out[i] = n
	}
	return out
}
