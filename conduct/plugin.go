// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conduct

import (
	"code.hybscloud.com/compose"
	"code.hybscloud.com/compose/fsm"
	"code.hybscloud.com/compose/lower"
)

// Plugin is the framework's sole extension point (§6.4): a combinator
// library variant contributes a builder surface, a lowering rewrite, a
// compile rule, and a conductor state handler without any core package
// knowing about it ahead of time. Every contribution point mirrors the
// registry/rewrite/rule no-op-on-collision contract, so loading two
// plugins that both claim a name is safe — the first one wins.
type Plugin interface {
	// Combinators lists the node-type names this plugin owns, for
	// host-side introspection/logging only.
	Combinators() []string
	// Compose registers the plugin's builder methods and lowering
	// rewrites against reg and lowerer.
	Compose(reg *compose.Registry, lowerer *lower.Lowerer)
	// Compile registers the plugin's FSM compile rules against c.
	Compile(c *fsm.Compiler)
	// Conduct returns the plugin's state handlers, keyed by the FSM Kind
	// each owns, plus an optional Finish hook run over every terminal
	// Result a Conductor produces after this plugin is loaded.
	Conduct(cfg *Config) (handlers map[fsm.Kind]StateHandler, finish func(*Result))
}

// LoadPlugin wires p's contributions into reg, lowerer, compiler, and
// conductor in one call, honoring each component's existing
// no-op-on-collision contract.
func LoadPlugin(p Plugin, reg *compose.Registry, lowerer *lower.Lowerer, compiler *fsm.Compiler, conductor *Conductor) {
	p.Compose(reg, lowerer)
	p.Compile(compiler)

	handlers, finish := p.Conduct(conductor.Config)
	for kind, h := range handlers {
		conductor.RegisterHandler(kind, h)
	}
	if finish != nil {
		conductor.finish = chainFinish(conductor.finish, finish)
	}
}

// chainFinish composes two Finish hooks so a second plugin's hook runs
// after, not instead of, the first's.
func chainFinish(prev, next func(*Result)) func(*Result) {
	if prev == nil {
		return next
	}
	return func(r *Result) {
		prev(r)
		next(r)
	}
}
