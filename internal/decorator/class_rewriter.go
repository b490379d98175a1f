package decorator

import "github.com/stage3dec/stage3dec/internal/js_ast"

// Result reports what Rewrite did to a class, so program_rewriter knows
// which module-scope bindings and which class-binding lift statement (if
// any) the enclosing declaration needs.
type Result struct {
	// Rewrote is false when the class had no decorators at all; every
	// other field is meaningless in that case.
	Rewrote bool

	// NeedsInitProto is true when at least one instance-level member
	// carried a decorator, meaning the constructor now calls
	// _initProto(this) and the enclosing scope needs a "let _initProto"
	// binding for it.
	NeedsInitProto bool

	// HasClassDecorators is true when the class itself carried one or
	// more decorators, meaning the enclosing declaration needs the
	// class-binding lift (component E rebinds the class's own name to
	// whatever the lift's own _applyDecs(...).c[0] call returns).
	HasClassDecorators bool

	// ClassDecorators holds the class's own decorator expressions, for
	// program_rewriter to pass into the lift's *separate* _applyDecs call.
	// These never travel into the static block's own call, which always
	// gets an empty class-decorator array — see buildStaticBlock.
	ClassDecorators []js_ast.Expr
}

// Rewrite mutates class in place: it appends a static block that calls
// _applyDecs with the class's descriptor tuples, arranges for _initProto
// to run during construction when any instance member needs it, and
// strips every decorator off the class and its members (output never
// sees "@" again). The class's own decorator expressions are returned via
// ClassDecorators, which program_rewriter turns into the binding-lift's
// own, separate _applyDecs call.
//
// Returns a non-nil *Error when class carries a decorated constructor or
// a decorated computed-key member; in that case class is left completely
// unmodified — the offending decorator is left intact for an
// unsupported-target diagnostic.
func Rewrite(class *js_ast.Class) (Result, *Error) {
	if !HasDecorators(class) {
		return Result{}, nil
	}

	members, err := BuildMemberDescriptorArray(class)
	if err != nil {
		return Result{}, err
	}

	classDecorators := make([]js_ast.Expr, len(class.Decorators))
	copy(classDecorators, class.Decorators)
	hasClassDecorators := len(classDecorators) > 0
	needsInitProto := needsInstanceInit(class)

	class.Properties = append(class.Properties, buildStaticBlock(members))

	if needsInitProto {
		ensureConstructorCallsInitProto(class)
	}

	class.Decorators = nil
	for i := range class.Properties {
		class.Properties[i].Decorators = nil
	}

	return Result{
		Rewrote:            true,
		NeedsInitProto:     needsInitProto,
		HasClassDecorators: hasClassDecorators,
		ClassDecorators:    classDecorators,
	}, nil
}

func needsInstanceInit(class *js_ast.Class) bool {
	for _, prop := range class.Properties {
		if len(prop.Decorators) > 0 && !prop.IsStatic {
			return true
		}
	}
	return false
}

// buildStaticBlock builds:
//
//	static {
//		[_initProto, _initClass] = _applyDecs(this, <members>, []).e;
//		if (_initClass) _initClass();
//	}
//
// The class-decorator array is always empty here — class decorators are
// not passed to this call; they travel through the separate _applyDecs
// call the binding-lift performs, built by
// program_rewriter.liftClassBinding from Result.ClassDecorators.
func buildStaticBlock(members js_ast.Expr) js_ast.Property {
	applyDecsCall := js_ast.Expr{Data: &js_ast.ECall{
		Target: ident("_applyDecs"),
		Args: []js_ast.Expr{
			{Data: &js_ast.EThis{}},
			members,
			{Data: &js_ast.EArray{}},
		},
	}}

	assign := js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.EAssign{
		Op: "=",
		Target: js_ast.Expr{Data: &js_ast.EArray{Items: []js_ast.Expr{
			ident("_initProto"), ident("_initClass"),
		}}},
		Value: js_ast.Expr{Data: &js_ast.EDot{Target: applyDecsCall, Name: "e"}},
	}}}}

	callInitClass := js_ast.Stmt{Data: &js_ast.SIf{
		Test: ident("_initClass"),
		Yes:  js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{Target: ident("_initClass")}}}},
	}}

	return js_ast.Property{
		Kind:             js_ast.PropertyClassStaticBlock,
		ClassStaticBlock: &js_ast.ClassStaticBlock{Stmts: []js_ast.Stmt{assign, callInitClass}},
	}
}

// ensureConstructorCallsInitProto finds the class's constructor (or
// synthesizes one) and inserts "if (_initProto) _initProto(this);"
// immediately after the first top-level "super(...);" statement, or at the
// very start when the body has none. A synthesized constructor calls
// super() first when the class has a superclass.
func ensureConstructorCallsInitProto(class *js_ast.Class) {
	initCall := initProtoIfStmt()

	for i := range class.Properties {
		prop := &class.Properties[i]
		if !prop.IsConstructor || prop.Fn == nil {
			continue
		}
		pos := superCallInsertPosition(prop.Fn.Body)
		body := make([]js_ast.Stmt, 0, len(prop.Fn.Body)+1)
		body = append(body, prop.Fn.Body[:pos]...)
		body = append(body, initCall)
		body = append(body, prop.Fn.Body[pos:]...)
		prop.Fn.Body = body
		return
	}

	var body []js_ast.Stmt
	if class.SuperClass.Data != nil {
		body = append(body, js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
			Target: js_ast.Expr{Data: &js_ast.ESuper{}},
		}}}})
	}
	body = append(body, initCall)

	ctor := js_ast.Property{
		Kind:          js_ast.PropertyMethod,
		Key:           ident("constructor"),
		IsConstructor: true,
		Fn:            &js_ast.Fn{Body: body},
	}
	class.Properties = append([]js_ast.Property{ctor}, class.Properties...)
}

func superCallInsertPosition(stmts []js_ast.Stmt) int {
	for i, stmt := range stmts {
		expr, ok := stmt.Data.(*js_ast.SExpr)
		if !ok {
			continue
		}
		call, ok := expr.Value.Data.(*js_ast.ECall)
		if !ok {
			continue
		}
		if _, ok := call.Target.Data.(*js_ast.ESuper); ok {
			return i + 1
		}
	}
	return 0
}

func initProtoIfStmt() js_ast.Stmt {
	test := ident("_initProto")
	call := js_ast.Expr{Data: &js_ast.ECall{Target: ident("_initProto"), Args: []js_ast.Expr{{Data: &js_ast.EThis{}}}}}
	return js_ast.Stmt{Data: &js_ast.SIf{
		Test: test,
		Yes:  js_ast.Stmt{Data: &js_ast.SExpr{Value: call}},
	}}
}

func ident(name string) js_ast.Expr {
	return js_ast.Expr{Data: &js_ast.EIdentifier{Name: name}}
}
