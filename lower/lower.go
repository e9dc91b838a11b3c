// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lower

import "code.hybscloud.com/compose"

// Lowerer rewrites a tree against a registry and a rewrite table. The
// core table (§4.2) is seeded by NewLowerer; a plugin's "composer"
// hook (§6.4) can add rewrites keyed by combinator type name via
// RegisterRewrite.
type Lowerer struct {
	Registry *compose.Registry
	Composer *compose.Composer
	rewrites map[string]RewriteFunc
}

// NewLowerer returns a Lowerer bound to reg, seeded with the canonical
// rewrite table.
func NewLowerer(reg *compose.Registry) *Lowerer {
	l := &Lowerer{
		Registry: reg,
		Composer: compose.NewComposer(reg),
		rewrites: make(map[string]RewriteFunc, len(coreRewrites)),
	}
	for name, fn := range coreRewrites {
		l.rewrites[name] = fn
	}
	return l
}

// RegisterRewrite merges an additional rewrite rule. Mirrors
// Registry.Register's contract: a name that's already registered is
// left untouched.
func (l *Lowerer) RegisterRewrite(name string, fn RewriteFunc) {
	if _, exists := l.rewrites[name]; exists {
		return
	}
	l.rewrites[name] = fn
}

// Lower rewrites tree against target (§4.2): the root is repeatedly
// replaced by its rewrite until either its type is in the target set
// or no rewrite exists for it, then the same process recurses into
// its components and composition-typed argument slots. A label
// restored onto each rewritten root preserves Label's path assignment
// across the rewrite, per §4.2's "labels propagate through rewrites".
func (l *Lowerer) Lower(target Target, tree compose.Composition) (compose.Composition, error) {
	node := tree
	for !l.shouldStop(target, node.Type) {
		fn, ok := l.rewrites[node.Type]
		if !ok {
			break
		}
		rewritten, err := fn(l.Composer, node)
		if err != nil {
			return compose.Composition{}, err
		}
		rewritten.Path = node.Path
		node = rewritten
	}

	if len(node.Components) > 0 {
		children := make([]compose.Composition, len(node.Components))
		for i, child := range node.Components {
			lowered, err := l.Lower(target, child)
			if err != nil {
				return compose.Composition{}, err
			}
			children[i] = lowered
		}
		node.Components = children
	}

	if len(node.Args) > 0 {
		args := make(map[string]any, len(node.Args))
		for name, v := range node.Args {
			if child, ok := v.(compose.Composition); ok {
				lowered, err := l.Lower(target, child)
				if err != nil {
					return compose.Composition{}, err
				}
				args[name] = lowered
			} else {
				args[name] = v
			}
		}
		node.Args = args
	}

	return node, nil
}

func (l *Lowerer) shouldStop(target Target, typeName string) bool {
	desc, ok := l.Registry.Get(typeName)
	if !ok {
		return true
	}
	switch target.kind {
	case targetNone:
		return true
	case targetList:
		return target.list[typeName]
	case targetVersion:
		return desc.IsPrimitive() || versionAtMost(desc.Since, target.version)
	default: // targetAll
		return desc.IsPrimitive()
	}
}
