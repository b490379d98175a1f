package decorator

import (
	"github.com/stage3dec/stage3dec/internal/js_ast"
	"github.com/stage3dec/stage3dec/internal/logger"
)

// ProgramResult summarizes a whole-file rewrite for pkg/api: whether the
// runtime helper text needs to be prepended, and which classes actually
// ended up lowered (useful for host tooling that wants to report what
// changed without diffing source text).
type ProgramResult struct {
	NeedsRuntime     bool
	RewrittenClasses []string
}

// programRewriter carries the per-file state a recursive walk needs: where
// to report class-local errors, and the running tally RewriteProgram hands
// back once the walk is done.
type programRewriter struct {
	log    logger.Log
	source *logger.Source

	needsRuntime     bool
	rewrittenClasses []string
}

// RewriteProgram walks the whole program — every statement list, every
// function and arrow body, every expression subtree — and lowers any class
// it finds that carries a decorator, whether that class is a top-level
// declaration, nested inside a function, or sitting as a class expression
// buried in some other expression. It also owns the module-scope
// "let _initProto, _initClass" placement and the class-binding lift.
// log/source let a class-local error be reported without aborting the rest
// of the program — only a parse error (reported by internal/js_parser,
// before this ever runs) is terminal for the whole pass.
func RewriteProgram(log logger.Log, source *logger.Source, program *js_ast.Program) ProgramResult {
	w := &programRewriter{log: log, source: source}
	program.Stmts = w.rewriteStmts(program.Stmts)

	// "let _initProto, _initClass;" is a single module-scope binding every
	// rewritten class's static block assigns into, so it's declared once up
	// front rather than once per class — redeclaring the same "let" name
	// twice in one scope is a SyntaxError. This holds even when a rewritten
	// class is nested several functions deep: every static block runs
	// synchronously and consumes the pair immediately, so one module-scope
	// slot is safe to share across every class in the file, regardless of
	// nesting.
	if w.needsRuntime {
		program.Stmts = append(bindings(), program.Stmts...)
	}

	return ProgramResult{NeedsRuntime: w.needsRuntime, RewrittenClasses: w.rewrittenClasses}
}

// rewriteStmts walks a statement list in place, replacing any class
// declaration that needed the class-binding lift with its expansion (one
// statement becomes up to three). Every other statement kind is recursed
// into and returned unchanged in count.
func (w *programRewriter) rewriteStmts(stmts []js_ast.Stmt) []js_ast.Stmt {
	var out []js_ast.Stmt
	for _, stmt := range stmts {
		out = append(out, w.rewriteStmt(stmt)...)
	}
	return out
}

// rewriteStmtSingle handles a single-statement slot (an "if"/"else" arm)
// that can't grow into multiple statements without a wrapping block — the
// class-binding lift expands one statement into up to three, which needs
// somewhere to go when the original slot only ever held one.
func (w *programRewriter) rewriteStmtSingle(stmt js_ast.Stmt) js_ast.Stmt {
	out := w.rewriteStmt(stmt)
	switch len(out) {
	case 0:
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SEmpty{}}
	case 1:
		return out[0]
	default:
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SBlock{Stmts: out}}
	}
}

func (w *programRewriter) rewriteStmt(stmt js_ast.Stmt) []js_ast.Stmt {
	switch s := stmt.Data.(type) {
	case *js_ast.SClass:
		return w.rewriteClassStmt(stmt, s.Class)

	case *js_ast.SExportDefault:
		if class := StmtClass(stmt); class != nil {
			return w.rewriteClassStmt(stmt, class)
		}
		switch v := s.Value.(type) {
		case *js_ast.SFunction:
			v.Fn.Body = w.rewriteStmts(v.Fn.Body)
		case *js_ast.SExpr:
			v.Value = w.rewriteExpr(v.Value)
		}
		return []js_ast.Stmt{stmt}

	case *js_ast.SFunction:
		s.Fn.Body = w.rewriteStmts(s.Fn.Body)
		return []js_ast.Stmt{stmt}

	case *js_ast.SExpr:
		s.Value = w.rewriteExpr(s.Value)
		return []js_ast.Stmt{stmt}

	case *js_ast.SReturn:
		s.Value = w.rewriteExpr(s.Value)
		return []js_ast.Stmt{stmt}

	case *js_ast.SThrow:
		s.Value = w.rewriteExpr(s.Value)
		return []js_ast.Stmt{stmt}

	case *js_ast.SIf:
		s.Test = w.rewriteExpr(s.Test)
		s.Yes = w.rewriteStmtSingle(s.Yes)
		if s.No.Data != nil {
			s.No = w.rewriteStmtSingle(s.No)
		}
		return []js_ast.Stmt{stmt}

	case *js_ast.SBlock:
		s.Stmts = w.rewriteStmts(s.Stmts)
		return []js_ast.Stmt{stmt}

	case *js_ast.SLocal:
		for i := range s.Decls {
			s.Decls[i].Value = w.rewriteExpr(s.Decls[i].Value)
		}
		return []js_ast.Stmt{stmt}

	default:
		return []js_ast.Stmt{stmt}
	}
}

// rewriteClassStmt handles a class declaration found anywhere a statement
// can appear — not just Program.Stmts, but also a function body, a block,
// or an if/else arm. orig is passed straight through to liftClassBinding,
// which already switches on orig.Data to tell a plain "class C {}" apart
// from "export class C {}" and "export default class C {}"; since `export`
// syntax can only ever appear at a module's top level, a nested occurrence
// is always the plain form, and liftClassBinding handles that case the
// same way regardless of nesting depth.
func (w *programRewriter) rewriteClassStmt(orig js_ast.Stmt, class *js_ast.Class) []js_ast.Stmt {
	w.visitClassChildren(class)

	if !HasDecorators(class) {
		return []js_ast.Stmt{orig}
	}

	name := className(class)
	r, err := Rewrite(class)
	if err != nil {
		w.log.AddError(w.source, classLoc(class), err.Error())
		return []js_ast.Stmt{orig}
	}

	w.needsRuntime = true
	w.rewrittenClasses = append(w.rewrittenClasses, name)

	if !r.HasClassDecorators {
		return []js_ast.Stmt{orig}
	}
	return liftClassBinding(orig, class, name, r.ClassDecorators)
}

// visitClassChildren recurses into everything a class node owns that can
// itself hold a nested class: decorator argument expressions (so
// "@dec(class { ... }) class Outer {}" still reaches the inner class),
// the superclass expression, and every member's key, initializer, function
// body, and static-block body. Called before Rewrite so the walk always
// sees the class's real, user-written decorators and bodies rather than
// the synthesized static block Rewrite appends.
func (w *programRewriter) visitClassChildren(class *js_ast.Class) {
	for i := range class.Decorators {
		class.Decorators[i] = w.rewriteExpr(class.Decorators[i])
	}
	class.SuperClass = w.rewriteExpr(class.SuperClass)

	for i := range class.Properties {
		prop := &class.Properties[i]
		for j := range prop.Decorators {
			prop.Decorators[j] = w.rewriteExpr(prop.Decorators[j])
		}
		prop.Key = w.rewriteExpr(prop.Key)
		prop.Initializer = w.rewriteExpr(prop.Initializer)
		if prop.Fn != nil {
			prop.Fn.Body = w.rewriteStmts(prop.Fn.Body)
		}
		if prop.ClassStaticBlock != nil {
			prop.ClassStaticBlock.Stmts = w.rewriteStmts(prop.ClassStaticBlock.Stmts)
		}
	}
}

// rewriteExpr recurses into an expression tree looking for class
// expressions and function/arrow bodies to walk. Every node is mutated
// through the pointer its Data interface already holds, so the Expr value
// returned always wraps the same node — nothing here ever needs to replace
// an expression in its parent, unlike a class *declaration*, which can
// expand into several statements via the binding lift.
func (w *programRewriter) rewriteExpr(expr js_ast.Expr) js_ast.Expr {
	if expr.Data == nil {
		return expr
	}

	switch e := expr.Data.(type) {
	case *js_ast.EDot:
		e.Target = w.rewriteExpr(e.Target)

	case *js_ast.EIndex:
		e.Target = w.rewriteExpr(e.Target)
		e.Index = w.rewriteExpr(e.Index)

	case *js_ast.ECall:
		e.Target = w.rewriteExpr(e.Target)
		for i := range e.Args {
			e.Args[i] = w.rewriteExpr(e.Args[i])
		}

	case *js_ast.EArray:
		for i := range e.Items {
			e.Items[i] = w.rewriteExpr(e.Items[i])
		}

	case *js_ast.EObject:
		for i := range e.Properties {
			prop := &e.Properties[i]
			prop.Key = w.rewriteExpr(prop.Key)
			prop.Initializer = w.rewriteExpr(prop.Initializer)
			if prop.Fn != nil {
				prop.Fn.Body = w.rewriteStmts(prop.Fn.Body)
			}
		}

	case *js_ast.ESpread:
		e.Value = w.rewriteExpr(e.Value)

	case *js_ast.EArrow:
		for i := range e.Params {
			e.Params[i].Default = w.rewriteExpr(e.Params[i].Default)
		}
		if e.IsExprBody {
			e.ExprBody = w.rewriteExpr(e.ExprBody)
		} else {
			e.Body = w.rewriteStmts(e.Body)
		}

	case *js_ast.EFunction:
		if e.Fn != nil {
			e.Fn.Body = w.rewriteStmts(e.Fn.Body)
		}

	case *js_ast.EClass:
		w.visitClassChildren(e.Class)
		if HasDecorators(e.Class) {
			name := className(e.Class)
			_, err := Rewrite(e.Class)
			if err != nil {
				w.log.AddError(w.source, classLoc(e.Class), err.Error())
			} else {
				w.needsRuntime = true
				w.rewrittenClasses = append(w.rewrittenClasses, name)
				// The Result's HasClassDecorators is always false here: this parser
				// only ever attaches decorators to a class via the
				// declaration-statement path (parseDecoratedClassStmt), so
				// a class reached as an expression never carries one and
				// never needs the binding lift.
			}
		}

	case *js_ast.EUnary:
		e.Value = w.rewriteExpr(e.Value)

	case *js_ast.EBinary:
		e.Left = w.rewriteExpr(e.Left)
		e.Right = w.rewriteExpr(e.Right)

	case *js_ast.EIfElse:
		e.Test = w.rewriteExpr(e.Test)
		e.Yes = w.rewriteExpr(e.Yes)
		e.No = w.rewriteExpr(e.No)

	case *js_ast.EAssign:
		e.Target = w.rewriteExpr(e.Target)
		e.Value = w.rewriteExpr(e.Value)

	case *js_ast.ESequence:
		for i := range e.Exprs {
			e.Exprs[i] = w.rewriteExpr(e.Exprs[i])
		}

	case *js_ast.EParen:
		e.Value = w.rewriteExpr(e.Value)
	}

	return expr
}

func classLoc(class *js_ast.Class) logger.Loc {
	if class.Name != nil {
		return class.NameLoc
	}
	return class.BodyLoc
}

func className(class *js_ast.Class) string {
	if class.Name != nil {
		return *class.Name
	}
	return "_default"
}

// bindings returns the "let _initProto, _initClass;" declaration every
// decorated class needs in its enclosing scope: the static block writes
// to these names, and (when NeedsInitProto) the constructor reads
// _initProto back out of the same binding.
func bindings() []js_ast.Stmt {
	return []js_ast.Stmt{{Data: &js_ast.SLocal{
		Kind: js_ast.LocalLet,
		Decls: []js_ast.Decl{
			{Name: "_initProto"},
			{Name: "_initClass"},
		},
	}}}
}

// liftClassBinding turns a decorated class declaration into a class
// expression bound through a mutable "let", plus a follow-up statement
// that reassigns the binding to the replacement class the class
// decorators produced. This is the "class-binding lift", needed only when
// the class itself carries a decorator — a class with only member
// decorators keeps its original declaration form since nothing needs to
// replace its binding.
//
// The reassignment calls _applyDecs a second time — this one carrying the
// actual class-decorator expressions and an empty member array — and
// takes ".c[0]" (".c" evaluates to [replacementClass, initClass]). This is
// deliberately a second, separate call from the static block's own
// _applyDecs(this, members, []).e: the two stay apart unless an
// implementation can prove the class has no this-dependent member
// decorators, which this implementation does not attempt to prove.
func liftClassBinding(orig js_ast.Stmt, class *js_ast.Class, name string, classDecorators []js_ast.Expr) []js_ast.Stmt {
	classExpr := js_ast.Expr{Loc: orig.Loc, Data: &js_ast.EClass{Class: class}}

	decl := js_ast.Stmt{Loc: orig.Loc, Data: &js_ast.SLocal{
		Kind:  js_ast.LocalLet,
		Decls: []js_ast.Decl{{Name: name, Value: classExpr}},
	}}

	applyDecsCall := js_ast.Expr{Data: &js_ast.ECall{
		Target: ident("_applyDecs"),
		Args: []js_ast.Expr{
			ident(name),
			{Data: &js_ast.EArray{}},
			{Data: &js_ast.EArray{Items: classDecorators}},
		},
	}}
	replacementClass := js_ast.Expr{Data: &js_ast.EIndex{
		Target: js_ast.Expr{Data: &js_ast.EDot{Target: applyDecsCall, Name: "c"}},
		Index:  js_ast.Expr{Data: &js_ast.ENumber{Value: 0}},
	}}

	reassign := js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.EAssign{
		Op:     "=",
		Target: ident(name),
		Value:  replacementClass,
	}}}}

	switch s := orig.Data.(type) {
	case *js_ast.SClass:
		if !s.IsExport {
			return []js_ast.Stmt{decl, reassign}
		}
		return []js_ast.Stmt{decl, reassign, {Data: &js_ast.SExportClause{
			Items: []js_ast.ClauseItem{{Name: name, Alias: name}},
		}}}

	case *js_ast.SExportDefault:
		return []js_ast.Stmt{decl, reassign, {Data: &js_ast.SExportDefault{
			Value: &js_ast.SExpr{Value: ident(name)},
		}}}
	}

	return []js_ast.Stmt{decl, reassign}
}
