// Package js_printer renders an internal/js_ast.Program back to source
// text, tracking a source map alongside it when asked to.
//
// Structurally this is a Printer struct wrapping a helpers.Joiner, one
// print method per node "kind" rather than a generic visitor, and an
// addSourceMapping call at the start of any statement or expression that
// can be the target of a mapping. There is no minification, ASCII-only
// output, or target-specific lowering to worry about, so this stays small.
package js_printer

import (
	"fmt"
	"strconv"

	"github.com/stage3dec/stage3dec/internal/helpers"
	"github.com/stage3dec/stage3dec/internal/js_ast"
	"github.com/stage3dec/stage3dec/internal/logger"
	"github.com/stage3dec/stage3dec/internal/sourcemap"
)

type Options struct {
	// Source, when non-nil, turns on source-map tracking: every
	// addSourceMapping call records a mapping back into Source's text.
	Source *logger.Source
}

type Result struct {
	JS            []byte
	SourceMap     *sourcemap.Builder
	GeneratedLine int // total line count, for chaining multiple printed files
}

type printer struct {
	js helpers.Joiner

	indent int

	generatedLine   int
	generatedColumn int

	source    *logger.Source
	smBuilder sourcemap.Builder
	trackSM   bool
}

// Print renders program and, when opts.Source is set, returns mapping
// data a caller can turn into a "//# sourceMappingURL" file.
func Print(program js_ast.Program, opts Options) Result {
	p := &printer{source: opts.Source, trackSM: opts.Source != nil}

	for _, stmt := range program.Stmts {
		p.printStmt(stmt)
	}

	result := Result{JS: p.js.Done(), GeneratedLine: p.generatedLine}
	if p.trackSM {
		result.SourceMap = &p.smBuilder
	}
	return result
}

func (p *printer) print(s string) {
	for _, c := range s {
		if c == '\n' {
			p.generatedLine++
			p.generatedColumn = 0
		} else {
			p.generatedColumn++
		}
	}
	p.js.AddString(s)
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.print("\t")
	}
}

// addSourceMapping records that the generated position about to be
// written corresponds to loc in the original source.
func (p *printer) addSourceMapping(loc logger.Loc) {
	if !p.trackSM || p.source == nil {
		return
	}
	line, column, _ := p.source.LineColumn(loc.Start)
	p.smBuilder.AddMapping(sourcemap.Mapping{
		GeneratedLine:   p.generatedLine,
		GeneratedColumn: p.generatedColumn,
		OriginalLine:    line - 1,
		OriginalColumn:  column,
	})
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *printer) printStmt(stmt js_ast.Stmt) {
	p.printIndent()
	p.printStmtBody(stmt)
}

// printStmtBody prints stmt's own text without a leading indent, so a
// caller already mid-line (printStmtAsBlockMember's single-statement
// branch) can inline it after "if (x) " / "else " instead of starting a
// fresh line.
func (p *printer) printStmtBody(stmt js_ast.Stmt) {
	p.addSourceMapping(stmt.Loc)

	switch s := stmt.Data.(type) {
	case *js_ast.SExpr:
		p.printExpr(s.Value, js_ast.LLowestForStmt)
		p.print(";\n")

	case *js_ast.SClass:
		if s.IsExport {
			p.print("export ")
		}
		p.printClass(s.Class)
		p.print("\n")

	case *js_ast.SFunction:
		if s.IsExport {
			p.print("export ")
		}
		p.printFn("function", s.Fn)
		p.print("\n")

	case *js_ast.SReturn:
		p.print("return")
		if s.Value.Data != nil {
			p.print(" ")
			p.printExpr(s.Value, js_ast.LLowestForStmt)
		}
		p.print(";\n")

	case *js_ast.SThrow:
		p.print("throw ")
		p.printExpr(s.Value, js_ast.LLowestForStmt)
		p.print(";\n")

	case *js_ast.SIf:
		p.print("if (")
		p.printExpr(s.Test, js_ast.LLowestForStmt)
		p.print(") ")
		p.printStmtAsBlockMember(s.Yes)
		if s.No.Data != nil {
			p.printIndent()
			p.print("else ")
			p.printStmtAsBlockMember(s.No)
		}

	case *js_ast.SBlock:
		p.print("{\n")
		p.indent++
		for _, child := range s.Stmts {
			p.printStmt(child)
		}
		p.indent--
		p.printIndent()
		p.print("}\n")

	case *js_ast.SEmpty:
		p.print(";\n")

	case *js_ast.SLocal:
		p.printLocal(s)
		p.print(";\n")

	case *js_ast.SExportDefault:
		p.print("export default ")
		p.printStmtDataInline(s.Value)

	case *js_ast.SExportClause:
		p.print("export { ")
		for i, item := range s.Items {
			if i > 0 {
				p.print(", ")
			}
			p.print(item.Name)
			if item.Alias != item.Name {
				p.print(" as ")
				p.print(item.Alias)
			}
		}
		p.print(" };\n")

	default:
		panic(fmt.Sprintf("js_printer: unhandled statement %T", s))
	}
}

// printStmtAsBlockMember prints the body of an "if"/"else" branch. A
// block prints as-is ("if (x) { ... }"); anything else prints inline on
// the same line the caller already started ("if (x) y();\n"), matching
// how a single-statement guard like "if (_initProto) _initProto(this);"
// is meant to come out with no synthetic braces around it.
func (p *printer) printStmtAsBlockMember(stmt js_ast.Stmt) {
	if block, ok := stmt.Data.(*js_ast.SBlock); ok {
		p.print("{\n")
		p.indent++
		for _, child := range block.Stmts {
			p.printStmt(child)
		}
		p.indent--
		p.printIndent()
		p.print("}\n")
		return
	}
	p.printStmtBody(stmt)
}

// printStmtDataInline prints the S payload of an SExportDefault without
// the indent+newline bookkeeping printStmt would add, since
// "export default " has already been written on the current line.
func (p *printer) printStmtDataInline(s js_ast.S) {
	switch inner := s.(type) {
	case *js_ast.SClass:
		p.printClass(inner.Class)
		p.print(";\n")
	case *js_ast.SFunction:
		p.printFn("function", inner.Fn)
		p.print("\n")
	case *js_ast.SExpr:
		p.printExpr(inner.Value, js_ast.LLowestForStmt)
		p.print(";\n")
	default:
		panic(fmt.Sprintf("js_printer: unhandled export-default payload %T", s))
	}
}

func (p *printer) printLocal(s *js_ast.SLocal) {
	switch s.Kind {
	case js_ast.LocalConst:
		p.print("const ")
	case js_ast.LocalLet:
		p.print("let ")
	default:
		p.print("var ")
	}
	for i, decl := range s.Decls {
		if i > 0 {
			p.print(", ")
		}
		p.print(decl.Name)
		if decl.Value.Data != nil {
			p.print(" = ")
			p.printExpr(decl.Value, js_ast.LAssignForStmt)
		}
	}
}

// ---------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------

func (p *printer) printClass(class *js_ast.Class) {
	for _, dec := range class.Decorators {
		p.print("@")
		p.printExpr(dec, js_ast.LCallForStmt)
		p.print(" ")
	}
	p.print("class")
	if class.Name != nil {
		p.print(" ")
		p.print(*class.Name)
	}
	if class.SuperClass.Data != nil {
		p.print(" extends ")
		p.printExpr(class.SuperClass, js_ast.LCallForStmt)
	}
	p.print(" {\n")
	p.indent++
	for _, prop := range class.Properties {
		p.printClassMember(prop)
	}
	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) printClassMember(prop js_ast.Property) {
	p.printIndent()
	p.addSourceMapping(prop.Loc)

	if prop.Kind == js_ast.PropertyClassStaticBlock {
		p.print("static {\n")
		p.indent++
		for _, stmt := range prop.ClassStaticBlock.Stmts {
			p.printStmt(stmt)
		}
		p.indent--
		p.printIndent()
		p.print("}\n")
		return
	}

	for _, dec := range prop.Decorators {
		p.print("@")
		p.printExpr(dec, js_ast.LCallForStmt)
		p.print(" ")
	}
	if prop.IsStatic {
		p.print("static ")
	}
	switch prop.Kind {
	case js_ast.PropertyGet:
		p.print("get ")
	case js_ast.PropertySet:
		p.print("set ")
	case js_ast.PropertyAutoAccessor:
		p.print("accessor ")
	}
	if prop.Fn != nil && prop.Fn.IsAsync {
		p.print("async ")
	}
	if prop.Fn != nil && prop.Fn.IsGenerator {
		p.print("*")
	}

	p.printPropertyKey(prop.Key, prop.IsComputed)

	if prop.Kind == js_ast.PropertyMethod || prop.Kind == js_ast.PropertyGet || prop.Kind == js_ast.PropertySet {
		p.printParams(prop.Fn.Params)
		p.print(" {\n")
		p.indent++
		for _, stmt := range prop.Fn.Body {
			p.printStmt(stmt)
		}
		p.indent--
		p.printIndent()
		p.print("}\n")
		return
	}

	if prop.Initializer.Data != nil {
		p.print(" = ")
		p.printExpr(prop.Initializer, js_ast.LAssignForStmt)
	}
	p.print(";\n")
}

func (p *printer) printPropertyKey(key js_ast.Expr, isComputed bool) {
	if isComputed {
		p.print("[")
		p.printExpr(key, js_ast.LAssignForStmt)
		p.print("]")
		return
	}
	switch k := key.Data.(type) {
	case *js_ast.EIdentifier:
		p.print(k.Name)
	case *js_ast.EPrivateIdentifier:
		p.print("#")
		p.print(k.Name)
	case *js_ast.EString:
		p.print(string(helpers.QuoteSingle(k.Value, false)))
	case *js_ast.ENumber:
		p.print(numberToString(k.Value, k.Raw))
	default:
		p.printExpr(key, js_ast.LAssignForStmt)
	}
}

func (p *printer) printFn(keyword string, fn *js_ast.Fn) {
	p.print(keyword)
	if fn.IsGenerator {
		p.print("*")
	}
	if fn.Name != "" {
		p.print(" ")
		p.print(fn.Name)
	} else {
		p.print(" ")
	}
	p.printParams(fn.Params)
	p.print(" {\n")
	p.indent++
	for _, stmt := range fn.Body {
		p.printStmt(stmt)
	}
	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) printParams(params []js_ast.Param) {
	p.print("(")
	for i, param := range params {
		if i > 0 {
			p.print(", ")
		}
		p.print(param.Name)
		if param.Default.Data != nil {
			p.print(" = ")
			p.printExpr(param.Default, js_ast.LAssignForStmt)
		}
	}
	p.print(")")
}

func numberToString(value float64, raw string) string {
	if raw != "" {
		return raw
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// exprPrecedence returns the binding power of expr's own operator/form,
// used to decide whether printExpr needs to wrap it in parentheses given
// the level its parent requires.
func exprPrecedence(expr js_ast.Expr) js_ast.Level {
	switch e := expr.Data.(type) {
	case *js_ast.EBinary:
		if lvl, ok := js_ast.BinaryOpLevel[e.Op]; ok {
			return lvl
		}
		return js_ast.LLowest
	case *js_ast.EIfElse:
		return js_ast.LConditional
	case *js_ast.EAssign:
		return js_ast.LAssign
	case *js_ast.ESequence:
		return js_ast.LComma
	case *js_ast.EArrow:
		return js_ast.LAssign
	case *js_ast.EUnary:
		if e.Prefix {
			return js_ast.LPrefix
		}
		return js_ast.LPostfix
	case *js_ast.ESpread:
		return js_ast.LSpread
	case *js_ast.ECall:
		if e.IsNew {
			return js_ast.LNew
		}
		return js_ast.LCall
	case *js_ast.EDot, *js_ast.EIndex:
		return js_ast.LMember
	default:
		return js_ast.LMember
	}
}

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.Level) {
	wrap := exprPrecedence(expr) < level
	if wrap {
		p.print("(")
	}
	p.printExprData(expr, level)
	if wrap {
		p.print(")")
	}
}

func (p *printer) printExprData(expr js_ast.Expr, level js_ast.Level) {
	p.addSourceMapping(expr.Loc)

	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		p.print(e.Name)

	case *js_ast.EPrivateIdentifier:
		p.print("#")
		p.print(e.Name)

	case *js_ast.EThis:
		p.print("this")

	case *js_ast.ESuper:
		p.print("super")

	case *js_ast.ENull:
		p.print("null")

	case *js_ast.EUndefined:
		p.print("undefined")

	case *js_ast.EBoolean:
		if e.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *js_ast.ENumber:
		p.print(numberToString(e.Value, e.Raw))

	case *js_ast.EString:
		p.print(string(helpers.QuoteSingle(e.Value, false)))

	case *js_ast.ETemplate:
		p.print(e.Raw)

	case *js_ast.ERegExp:
		p.print(e.Raw)

	case *js_ast.EImportMeta:
		p.print("import.meta")

	case *js_ast.EDot:
		// Use LCall, not LMember, for the target: a plain call ("foo().bar")
		// has precedence LCall, one tier below LMember, and printing it at
		// LMember here would force needless parens around every call in
		// member-access position.
		p.printExpr(e.Target, js_ast.LCall)
		if e.IsPrivate {
			p.print(".#")
		} else {
			p.print(".")
		}
		p.print(e.Name)

	case *js_ast.EIndex:
		p.printExpr(e.Target, js_ast.LCall)
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest)
		p.print("]")

	case *js_ast.ECall:
		if e.IsNew {
			p.print("new ")
			p.printExpr(e.Target, js_ast.LMember)
		} else {
			p.printExpr(e.Target, js_ast.LCall)
			if e.OptionalChain {
				p.print("?.")
			}
		}
		p.print("(")
		for i, arg := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(arg, js_ast.LAssign)
		}
		p.print(")")

	case *js_ast.EArray:
		p.print("[")
		for i, item := range e.Items {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(item, js_ast.LAssign)
		}
		p.print("]")

	case *js_ast.EObject:
		p.print("{ ")
		for i, prop := range e.Properties {
			if i > 0 {
				p.print(", ")
			}
			if prop.Kind == js_ast.PropertyMethod {
				p.printPropertyKey(prop.Key, prop.IsComputed)
				p.printParams(prop.Fn.Params)
				p.print(" {\n")
				p.indent++
				for _, stmt := range prop.Fn.Body {
					p.printStmt(stmt)
				}
				p.indent--
				p.printIndent()
				p.print("}")
				continue
			}
			p.printPropertyKey(prop.Key, prop.IsComputed)
			if id, ok := prop.Key.Data.(*js_ast.EIdentifier); ok {
				if pid, ok2 := prop.Initializer.Data.(*js_ast.EIdentifier); ok2 && pid.Name == id.Name {
					continue
				}
			}
			p.print(": ")
			p.printExpr(prop.Initializer, js_ast.LAssign)
		}
		p.print(" }")

	case *js_ast.ESpread:
		p.print("...")
		p.printExpr(e.Value, js_ast.LAssign)

	case *js_ast.EArrow:
		p.printParams(e.Params)
		p.print(" => ")
		if e.IsAsync {
			p.print("async ")
		}
		if e.IsExprBody {
			p.printExpr(e.ExprBody, js_ast.LAssign)
		} else {
			p.print("{\n")
			p.indent++
			for _, stmt := range e.Body {
				p.printStmt(stmt)
			}
			p.indent--
			p.printIndent()
			p.print("}")
		}

	case *js_ast.EFunction:
		p.printFn("function", e.Fn)

	case *js_ast.EClass:
		p.printClass(e.Class)

	case *js_ast.EUnary:
		if e.Prefix {
			p.print(e.Op)
			if len(e.Op) > 1 {
				p.print(" ")
			}
			p.printExpr(e.Value, js_ast.LPrefix)
		} else {
			p.printExpr(e.Value, js_ast.LPostfix)
			p.print(e.Op)
		}

	case *js_ast.EBinary:
		opLevel := js_ast.BinaryOpLevel[e.Op]
		rightLevel := opLevel + 1
		if e.Op == "**" {
			rightLevel = opLevel
		}
		p.printExpr(e.Left, opLevel)
		p.print(" ")
		p.print(e.Op)
		p.print(" ")
		p.printExpr(e.Right, rightLevel)

	case *js_ast.EIfElse:
		p.printExpr(e.Test, js_ast.LConditional+1)
		p.print(" ? ")
		p.printExpr(e.Yes, js_ast.LAssign)
		p.print(" : ")
		p.printExpr(e.No, js_ast.LAssign)

	case *js_ast.EAssign:
		p.printExpr(e.Target, js_ast.LConditional)
		p.print(" ")
		p.print(e.Op)
		p.print(" ")
		p.printExpr(e.Value, js_ast.LAssign)

	case *js_ast.ESequence:
		for i, child := range e.Exprs {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(child, js_ast.LAssign)
		}

	case *js_ast.EParen:
		p.printExpr(e.Value, level)

	default:
		panic(fmt.Sprintf("js_printer: unhandled expression %T", e))
	}
}
