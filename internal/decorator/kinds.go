// Package decorator lowers TC39 Stage 3 decorators on JS/TS classes to
// plain ECMAScript a current engine already runs: a per-class static
// block that calls the runtime's _applyDecs, plus (when any instance
// member was decorated) a constructor call to the proto initializer it
// hands back, plus (when the class itself was decorated) a rebind of the
// class's own binding to whatever the class decorators returned.
//
// Besides this one, the five files here map onto the five components this lowering is
// naturally built from: detecting whether a class needs any of this
// (detector.go), turning its decorated members into the descriptor
// tuples the runtime expects (descriptor.go), rewriting one class body
// in place (class_rewriter.go), walking a whole program to find classes
// and wire in the runtime + module-scope bindings (program_rewriter.go),
// and the three-kind diagnostic model this pass reports through
// (errors.go).
package decorator

// Kind classifies what a single decorator is attached to. The integer
// values are part of the wire contract with the runtime helper
// (internal/runtime's _applyDecs packs one of these into the low 3 bits
// of a member descriptor's flags byte), so they must not be renumbered
// independently of internal/runtime.Code.
type Kind uint8

const (
	KindField Kind = iota
	KindAccessor
	KindMethod
	KindGetter
	KindSetter
	KindClass
)

// staticBit is set in a member descriptor's flags byte when the
// decorated member is static, per internal/runtime.Code's "STATIC = 8".
const staticBit = 8

// Flags packs a member's kind and staticness into the single byte value
// a descriptor tuple's second element carries.
func Flags(kind Kind, isStatic bool) int {
	flags := int(kind)
	if isStatic {
		flags |= staticBit
	}
	return flags
}
