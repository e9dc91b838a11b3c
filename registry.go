// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package compose

// ArgType is the declared type of a combinator's named argument slot.
type ArgType string

const (
	// ArgComposition marks a slot whose positional value is coerced via
	// Composer.task (nil -> empty(), string -> action, callable -> function, ...).
	ArgComposition ArgType = "composition"
	ArgString      ArgType = "string"
	ArgNumber      ArgType = "number"
	ArgObject      ArgType = "object"
	// ArgValue accepts any JSON-representable value except a function.
	ArgValue ArgType = "value"
)

// ArgSlot describes one named argument of a combinator.
type ArgSlot struct {
	Name     string
	Type     ArgType
	Optional bool
}

// Descriptor is a combinator's full shape: whether it takes variadic
// components, its ordered named-argument slots, and the minimum
// version string at which it is available (used by version-based
// lowering target selection, §4.2).
type Descriptor struct {
	Name     string
	Variadic bool
	Args     []ArgSlot
	// Since is empty for primitive combinators (always available) and a
	// semver-like string for enhanced ones.
	Since string
}

// IsPrimitive reports whether d has no minimum version, i.e. it survives
// maximal lowering.
func (d Descriptor) IsPrimitive() bool { return d.Since == "" }

// Registry holds the active set of combinator descriptors. It is
// populated at setup time (DefaultRegistry plus any plugin
// registrations) and treated as read-only once composition building
// begins — the conductor's single-threaded execution model (§5) has no
// concurrent registry mutation to guard against.
type Registry struct {
	descriptors map[string]Descriptor
}

func newRegistry() *Registry {
	return &Registry{descriptors: make(map[string]Descriptor)}
}

// Get looks up a combinator descriptor by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Register merges an additional combinator into the registry. Per the
// plugin contract (§6.4), new names do not override existing ones: a
// Register call for an already-registered name is a silent no-op.
func (r *Registry) Register(d Descriptor) {
	if _, exists := r.descriptors[d.Name]; exists {
		return
	}
	r.descriptors[d.Name] = d
}

// Names returns every registered combinator name, unordered.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	return names
}

// defaultDescriptors is the canonical combinator table (§4.1).
// empty and seq are user-facing sugar, not independent FSM primitives —
// the compiler (compose/fsm) only knows how to compile "sequence". Both
// carry a Since, so lowering treats them like any other enhanced
// combinator: lower.All() and a version target below 0.1.0 collapse
// them into sequence(); lower.None(), a list naming them, or a version
// at or above 0.1.0 leaves them in place.
var defaultDescriptors = []Descriptor{
	{Name: "empty", Since: "0.1.0"},
	{Name: "sequence", Variadic: true},
	{Name: "seq", Since: "0.1.0", Variadic: true},

	{Name: "if_nosave", Args: []ArgSlot{
		{Name: "test", Type: ArgComposition},
		{Name: "consequent", Type: ArgComposition},
		{Name: "alternate", Type: ArgComposition, Optional: true},
	}},
	{Name: "while_nosave", Args: []ArgSlot{
		{Name: "test", Type: ArgComposition},
		{Name: "body", Type: ArgComposition},
	}},
	{Name: "dowhile_nosave", Args: []ArgSlot{
		{Name: "body", Type: ArgComposition},
		{Name: "test", Type: ArgComposition},
	}},

	{Name: "if", Since: "0.1.0", Args: []ArgSlot{
		{Name: "test", Type: ArgComposition},
		{Name: "consequent", Type: ArgComposition},
		{Name: "alternate", Type: ArgComposition, Optional: true},
	}},
	{Name: "while", Since: "0.1.0", Args: []ArgSlot{
		{Name: "test", Type: ArgComposition},
		{Name: "body", Type: ArgComposition},
	}},
	{Name: "dowhile", Since: "0.1.0", Args: []ArgSlot{
		{Name: "body", Type: ArgComposition},
		{Name: "test", Type: ArgComposition},
	}},

	{Name: "try", Args: []ArgSlot{
		{Name: "body", Type: ArgComposition},
		{Name: "handler", Type: ArgComposition},
	}},
	{Name: "finally", Args: []ArgSlot{
		{Name: "body", Type: ArgComposition},
		{Name: "finalizer", Type: ArgComposition},
	}},

	{Name: "let", Variadic: true, Args: []ArgSlot{
		{Name: "declarations", Type: ArgObject},
	}},
	{Name: "mask", Variadic: true},

	{Name: "action", Args: []ArgSlot{
		{Name: "name", Type: ArgString},
		{Name: "options", Type: ArgObject, Optional: true},
	}},
	{Name: "function", Args: []ArgSlot{
		{Name: "function", Type: ArgObject},
	}},
	{Name: "composition", Since: "0.1.0", Args: []ArgSlot{
		{Name: "name", Type: ArgString},
		{Name: "composition", Type: ArgComposition},
		{Name: "options", Type: ArgObject, Optional: true},
	}},

	{Name: "retain", Since: "0.1.0", Variadic: true},
	{Name: "retain_catch", Since: "0.1.0", Variadic: true},
	{Name: "repeat", Since: "0.1.0", Variadic: true, Args: []ArgSlot{
		{Name: "count", Type: ArgNumber},
	}},
	{Name: "retry", Since: "0.1.0", Variadic: true, Args: []ArgSlot{
		{Name: "count", Type: ArgNumber},
	}},

	{Name: "value", Since: "0.1.0", Args: []ArgSlot{
		{Name: "value", Type: ArgValue},
	}},
	{Name: "literal", Since: "0.1.0", Args: []ArgSlot{
		{Name: "value", Type: ArgValue},
	}},
}

// DefaultRegistry returns a fresh registry populated with the canonical
// combinator table. Callers that load plugins call Register afterward.
func DefaultRegistry() *Registry {
	r := newRegistry()
	for _, d := range defaultDescriptors {
		r.descriptors[d.Name] = d
	}
	return r
}
