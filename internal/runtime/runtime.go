// Package runtime holds the helper text prepended to a file once it turns
// out to need decorator support. The asset is plain source text, always
// addressed through a single well-known index rather than a real import,
// and it's up to the caller (internal/decorator, component E) to decide
// whether to prepend it at all.
package runtime

import "github.com/stage3dec/stage3dec/internal/logger"

// SourceIndex is the fixed logical index Source gives the runtime's
// logger.Source ("always zero, but name it"). The source maps pkg/api
// produces do not list the runtime, so this index is never written into
// one.
const SourceIndex = uint32(0)

// Source returns the runtime as a logger.Source so callers can report
// diagnostics against it (or splice it into a source map) the same way
// they would any other file.
func Source() logger.Source {
	return logger.Source{
		Index:          SourceIndex,
		PrettyPath:     "<decorator-runtime>",
		IdentifierName: "stage3_decorator_runtime",
		Contents:       Code,
	}
}

// Code implements the Babel-style decorator runtime contract: a small,
// self-contained set of helpers that gives every lowered class the same
// descriptor-tuple evaluation order and accessor-wiring behavior a native
// implementation of the proposal would. Every lowered class with any
// decorator at all ends up calling _applyDecs exactly once, from a
// static block, destructuring its "e" property into the two functions
// the rest of the lowering wires up: "[_initProto, _initClass] =
// _applyDecs(this, memberDecs, classDecs).e". A class with its own
// decorators gets a second _applyDecs call from the binding-lift, this
// time with the class decorators and reading the lazily-computed ".c"
// property instead of ".e".
//
// _initProto(this) is called from the constructor (after any super()
// call) to run instance-level field/accessor initializers in decorator
// order. _initClass() is called once, immediately after the class
// expression finishes evaluating, and runs any class-level initializer a
// *member* decorator registered via context.addInitializer — it has
// nothing to do with class decorators, which are wired up by the second
// call's ".c" getter instead.
//
// The argument shape _applyDecs expects per member is the four-element
// tuple the collector in internal/decorator builds: [decorator, flags,
// name, isPrivate] — one tuple per decorator, so a member with two
// decorators contributes two adjacent tuples sharing the same flags/name.
// flags packs the member kind in its low 3 bits and a "static" bit in bit
// 3 (bit value 8).
const Code = `
function _applyDecs(targetClass, memberDecs, classDecs) {
	var CLASS = 5, GETTER = 3, SETTER = 4, ACCESSOR = 1, METHOD = 2, FIELD = 0
	var STATIC = 8

	var target = targetClass
	var metadata = {}
	var protoInitializers = []

	var convertPrivate = (name, isPrivate) => isPrivate ? Symbol(name) : name

	var callDec = (dec, thisArg, name, desc, initializers, kind, isStatic, isPrivate, value) => {
		var ctx = {
			kind: ["field", "accessor", "method", "getter", "setter", "class"][kind],
			name: isPrivate ? "#" + String(name) : name,
			static: !!isStatic,
			private: !!isPrivate,
			metadata: metadata,
		}
		if (kind !== CLASS) {
			ctx.addInitializer = f => initializers.push(f)
		}
		if (kind === ACCESSOR) {
			ctx.access = {
				get: function () { return this[name] },
				set: function (v) { this[name] = v },
			}
		} else if (kind === GETTER) {
			ctx.access = { get: function () { return desc.get.call(this) } }
		} else if (kind === SETTER) {
			ctx.access = { set: function (v) { desc.set.call(this, v) } }
		} else if (kind === METHOD) {
			ctx.access = { get: function () { return value } }
		}
		return dec.call(thisArg, kind === CLASS ? target : value, ctx)
	}

	// memberDecs is flat: every decorator the collector emitted for one
	// member is adjacent, in source order, sharing the same flags/name.
	// Regroup into per-member entries before deciding application order.
	var entries = []
	for (var i = 0; i < memberDecs.length; i++) {
		var tuple = memberDecs[i]
		var last = entries[entries.length - 1]
		if (last && last.flags === tuple[1] && last.name === tuple[2]) {
			last.decs.push(tuple[0])
		} else {
			entries.push({ flags: tuple[1], name: tuple[2], isPrivate: tuple[3], decs: [tuple[0]] })
		}
	}

	var applyMemberDec = (base, entry) => {
		var kind = entry.flags & 7, isStatic = !!(entry.flags & STATIC), isPrivate = entry.isPrivate
		var name = entry.name
		var desc, value
		var key = convertPrivate(name, isPrivate)
		var initializers = []

		if (kind === ACCESSOR) {
			var existing = Object.getOwnPropertyDescriptor(base, key) || {}
			value = {
				get: existing.get || function () { return this[key] },
				set: existing.set || function (v) { this[key] = v },
			}
		} else if (kind === METHOD) {
			value = base[key]
		} else if (kind === GETTER || kind === SETTER) {
			desc = Object.getOwnPropertyDescriptor(base, key) || {}
		}

		// Within one member, the decorator closest to it (last in source
		// order) applies first.
		for (var i = entry.decs.length - 1; i >= 0; i--) {
			var newValue = callDec(entry.decs[i], isStatic ? target : base, name, desc, initializers, kind, isStatic, isPrivate, value)
			if (newValue !== undefined) {
				if (kind === ACCESSOR) {
					value = { get: newValue.get || value.get, set: newValue.set || value.set }
				} else {
					value = newValue
				}
			}
		}

		if (kind === FIELD) {
			protoInitializers.push(function (instance) {
				var initial = instance[key]
				for (var f of initializers) initial = f.call(instance, initial) ?? initial
				instance[key] = initial
				return instance
			})
		} else if (kind === ACCESSOR) {
			protoInitializers.push(function (instance) {
				for (var f of initializers) f.call(instance)
				return instance
			})
			Object.defineProperty(base, key, { get: value.get, set: value.set, configurable: true, enumerable: true })
		} else if (kind === METHOD) {
			base[key] = value
		} else if (kind === GETTER) {
			desc.get = value
			Object.defineProperty(base, key, desc)
		} else if (kind === SETTER) {
			desc.set = value
			Object.defineProperty(base, key, desc)
		}
	}

	// Static members apply in reverse source order, then instance members
	// in reverse source order.
	var statics = entries.filter(e => e.flags & STATIC)
	var instances = entries.filter(e => !(e.flags & STATIC))
	for (var i = statics.length - 1; i >= 0; i--) applyMemberDec(target, statics[i])
	for (var i = instances.length - 1; i >= 0; i--) applyMemberDec(target.prototype, instances[i])

	var initProto = instance => {
		for (var f of protoInitializers) instance = f(instance) ?? instance
		return instance
	}

	var initClass = () => {
		// No class decorators reach this call (the static block always
		// passes []); any class-level initializer here would come from a
		// member decorator's context.addInitializer, which Stage 3 does
		// not expose to field/method/getter/setter/accessor contexts, so
		// this is a no-op today and exists for ABI symmetry with .c[1].
	}

	var cResult
	return {
		e: [initProto, initClass],
		get c() {
			if (!cResult) {
				var newClass = target
				var classInitializers = []
				for (var i = classDecs.length - 1; i >= 0; i--) {
					var r = callDec(classDecs[i], undefined, target.name, undefined, classInitializers, CLASS, false, false, undefined)
					if (r !== undefined) newClass = r
				}
				cResult = [newClass, () => { for (var f of classInitializers) f.call(newClass) }]
			}
			return cResult
		},
	}
}

function _toPropertyKey(value) {
	var key = _toPrimitive(value, "string")
	return typeof key === "symbol" ? key : String(key)
}

function _toPrimitive(input, hint) {
	if (typeof input !== "object" || input === null) return input
	var prim = input[Symbol.toPrimitive]
	if (prim !== undefined) {
		var res = prim.call(input, hint || "default")
		if (typeof res !== "object") return res
		throw new TypeError("Cannot convert object to primitive value")
	}
	return (hint === "string" ? String : Number)(input)
}

function _setFunctionName(fn, name, prefix) {
	if (typeof name === "symbol") {
		name = name.description ? "[" + name.description + "]" : ""
	}
	Object.defineProperty(fn, "name", { value: prefix ? prefix + " " + name : name, configurable: true })
	return fn
}

function _checkInRHS(value) {
	if (Object(value) !== value) {
		throw TypeError("Cannot use 'in' operator on a non-object")
	}
	return value
}
`
