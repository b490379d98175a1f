package decorator

import (
	"strconv"

	"github.com/stage3dec/stage3dec/internal/js_ast"
)

// BuildMemberDescriptorArray turns every decorated member of class into
// the descriptor-tuple array _applyDecs expects: one [decorator, flags,
// name, isPrivate] tuple per decorator, in declaration order — a member
// with two decorators contributes two tuples, not one tuple holding an
// array. Walks the class body once and pushes one array literal per
// decorator onto a flat descriptor list.
func BuildMemberDescriptorArray(class *js_ast.Class) (js_ast.Expr, *Error) {
	var items []js_ast.Expr
	for _, prop := range class.Properties {
		if len(prop.Decorators) == 0 {
			continue
		}
		if prop.IsConstructor {
			return js_ast.Expr{}, &Error{Kind: ErrUnsupportedTarget, Text: "decorators are not allowed on class constructors"}
		}
		kind, ok := memberKind(prop)
		if !ok {
			return js_ast.Expr{}, &Error{Kind: ErrInvariant, Text: "decorated class element of unexpected kind"}
		}
		if prop.IsComputed {
			// Computed keys are rejected with a diagnostic rather than
			// silently reported as "computed" for a decorated member, since
			// the runtime can't recover the actual key the decorator
			// context needs.
			return js_ast.Expr{}, &Error{Kind: ErrUnsupportedTarget, Text: "decorators are not supported on computed class member keys"}
		}

		isPrivate := isPrivateKey(prop.Key)
		keyString := PropertyKeyString(prop.Key, prop.IsComputed)
		flags := Flags(kind, prop.IsStatic)

		for _, dec := range prop.Decorators {
			items = append(items, buildDescriptor(dec, flags, keyString, isPrivate))
		}
	}
	return js_ast.Expr{Data: &js_ast.EArray{Items: items}}, nil
}

func memberKind(prop js_ast.Property) (Kind, bool) {
	switch prop.Kind {
	case js_ast.PropertyField:
		return KindField, true
	case js_ast.PropertyAutoAccessor:
		return KindAccessor, true
	case js_ast.PropertyGet:
		return KindGetter, true
	case js_ast.PropertySet:
		return KindSetter, true
	case js_ast.PropertyMethod:
		return KindMethod, true
	default:
		return 0, false
	}
}

// buildDescriptor builds one [decorator, flags, key, isPrivate] tuple: one
// decorator expression per tuple, not an array of decorators — a member
// with multiple decorators gets one tuple per decorator, all sharing the
// same flags/key/isPrivate.
func buildDescriptor(decorator js_ast.Expr, flags int, keyString string, isPrivate bool) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EArray{Items: []js_ast.Expr{
		decorator,
		{Data: &js_ast.ENumber{Value: float64(flags)}},
		{Data: &js_ast.EString{Value: keyString}},
		{Data: &js_ast.EBoolean{Value: isPrivate}},
	}}}
}

func isPrivateKey(key js_ast.Expr) bool {
	_, ok := key.Data.(*js_ast.EPrivateIdentifier)
	return ok
}

// PropertyKeyString extracts the name a descriptor tuple reports a member
// under: the identifier text for a plain or private name, the string value
// of a string key, the number converted to a string for a numeric key
// (so "1.0" reports as "1"), and the literal "computed" placeholder
// for a computed key or anything else. A computed key's actual runtime
// value can't be known until the key expression evaluates, so this pass
// reports a marker rather than guessing.
func PropertyKeyString(key js_ast.Expr, isComputed bool) string {
	if isComputed {
		return "computed"
	}
	switch k := key.Data.(type) {
	case *js_ast.EIdentifier:
		return k.Name
	case *js_ast.EPrivateIdentifier:
		return k.Name
	case *js_ast.EString:
		return k.Value
	case *js_ast.ENumber:
		return numberString(k.Value)
	default:
		return "computed"
	}
}

func numberString(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
