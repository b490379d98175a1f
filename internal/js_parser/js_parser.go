// Package js_parser turns a token stream from internal/js_lexer into an
// internal/js_ast.Program.
//
// The expression parser uses a Pratt-parsing shape: a table of
// binding-power "levels" (LLowest .. LMember), a parsePrefix/parseSuffix
// split, and a parser struct carrying the lexer and the log. This pass
// never renames or resolves a binding; internal/decorator only ever
// introduces two fixed names (_initProto, _initClass) per module, so
// there is no scope resolution step to own here.
package js_parser

import (
	"fmt"

	"github.com/stage3dec/stage3dec/internal/js_ast"
	"github.com/stage3dec/stage3dec/internal/js_lexer"
	"github.com/stage3dec/stage3dec/internal/logger"
)

// Level is an alias for js_ast.Level: the parser only ever needs the
// precedence tiers to decide how far a suffix or right-hand side
// extends, but the type itself is shared with js_printer so a node's
// precedence means the same thing on both sides of the AST.
type Level = js_ast.Level

const (
	LLowest            = js_ast.LLowest
	LComma             = js_ast.LComma
	LSpread            = js_ast.LSpread
	LAssign            = js_ast.LAssign
	LConditional       = js_ast.LConditional
	LNullishCoalescing = js_ast.LNullishCoalescing
	LLogicalOr         = js_ast.LLogicalOr
	LLogicalAnd        = js_ast.LLogicalAnd
	LBitwiseOr         = js_ast.LBitwiseOr
	LBitwiseXor        = js_ast.LBitwiseXor
	LBitwiseAnd        = js_ast.LBitwiseAnd
	LEquals            = js_ast.LEquals
	LCompare           = js_ast.LCompare
	LShift             = js_ast.LShift
	LAdd               = js_ast.LAdd
	LMultiply          = js_ast.LMultiply
	LExponentiation    = js_ast.LExponentiation
	LPrefix            = js_ast.LPrefix
	LPostfix           = js_ast.LPostfix
	LNew               = js_ast.LNew
	LCall              = js_ast.LCall
	LMember            = js_ast.LMember
)

var binaryOpLevel = js_ast.BinaryOpLevel

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true,
	"^=": true, "&&=": true, "||=": true, "??=": true,
}

type Parser struct {
	log    logger.Log
	source *logger.Source
	lex    *js_lexer.Lexer
}

// Parse tokenizes and parses source, returning ok=false if any error was
// logged; parse errors are terminal for the whole pass.
func Parse(log logger.Log, source *logger.Source) (program js_ast.Program, ok bool) {
	p := &Parser{log: log, source: source, lex: js_lexer.NewLexer(log, source)}
	defer func() {
		if r := recover(); r != nil {
			if _, isParseError := r.(parseError); isParseError {
				ok = false
				return
			}
			panic(r)
		}
	}()
	program.Stmts = p.parseStmtsUntil(js_lexer.TEndOfFile)
	ok = !log.HasErrors()
	return
}

// parseError unwinds the recursive-descent parser back to Parse on the
// first syntax error so one bad file never partially double-reports.
type parseError struct{}

func (p *Parser) fail(loc logger.Loc, format string, args ...interface{}) {
	p.log.AddError(p.source, loc, fmt.Sprintf(format, args...))
	panic(parseError{})
}

func (p *Parser) failHere(format string, args ...interface{}) {
	p.fail(p.lex.Loc(), format, args...)
}

func (p *Parser) at(raw string) bool {
	return p.lex.Token == js_lexer.TPunctuation && p.lex.Raw == raw
}

func (p *Parser) isIdent(name string) bool {
	return p.lex.Token == js_lexer.TIdentifier && p.lex.Identifier == name
}

func (p *Parser) expectPunct(raw string) {
	if !p.at(raw) {
		p.failHere("expected %q but found %q", raw, p.lex.Raw)
	}
	p.lex.Next()
}

func (p *Parser) expectIdentifier() string {
	if p.lex.Token != js_lexer.TIdentifier {
		p.failHere("expected identifier but found %q", p.lex.Raw)
	}
	name := p.lex.Identifier
	p.lex.Next()
	return name
}

// tryConsumePunct consumes raw if present and reports whether it did.
func (p *Parser) tryConsumePunct(raw string) bool {
	if p.at(raw) {
		p.lex.Next()
		return true
	}
	return false
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *Parser) parseStmtsUntil(end js_lexer.T) []js_ast.Stmt {
	var stmts []js_ast.Stmt
	for {
		if end == js_lexer.TEndOfFile && p.lex.Token == js_lexer.TEndOfFile {
			break
		}
		if end != js_lexer.TEndOfFile && p.at("}") {
			break
		}
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

func (p *Parser) parseStmt() js_ast.Stmt {
	loc := p.lex.Loc()

	// Decorators preceding a class declaration/export. The decorators
	// bind to the class itself regardless of which of the three
	// surrounding forms follows ("class C {}", "export class C {}", or
	// "export default class [C] {}"), so this dispatches on that
	// surrounding form the same way parseExport does, just with
	// decorators already in hand.
	if p.at("@") {
		decorators := p.parseDecorators()
		return p.parseDecoratedClassStmt(loc, decorators)
	}

	switch {
	case p.at("{"):
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: p.parseBlock()}}

	case p.at(";"):
		p.lex.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case p.isIdent("class"):
		return p.parseDecoratedClassStmt(loc, nil)

	case p.isIdent("export"):
		return p.parseExport(loc)

	case p.isIdent("function"):
		fn := p.parseFunction()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn}}

	case p.isIdent("const"), p.isIdent("let"), p.isIdent("var"):
		local := p.parseLocal()
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: local}

	case p.isIdent("return"):
		p.lex.Next()
		var value js_ast.Expr
		if !p.at(";") && !p.at("}") && p.lex.Token != js_lexer.TEndOfFile {
			value = p.parseExpr(LLowest)
		}
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{Value: value}}

	case p.isIdent("throw"):
		p.lex.Next()
		value := p.parseExpr(LLowest)
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: value}}

	case p.isIdent("if"):
		return p.parseIf(loc)

	default:
		value := p.parseExpr(LLowest)
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: value}}
	}
}

func (p *Parser) parseBlock() []js_ast.Stmt {
	p.expectPunct("{")
	stmts := p.parseStmtsUntil(js_lexer.TPunctuation)
	p.expectPunct("}")
	return stmts
}

func (p *Parser) parseIf(loc logger.Loc) js_ast.Stmt {
	p.lex.Next() // "if"
	p.expectPunct("(")
	test := p.parseExpr(LLowest)
	p.expectPunct(")")
	yes := p.parseStmt()
	var no js_ast.Stmt
	if p.isIdent("else") {
		p.lex.Next()
		no = p.parseStmt()
	}
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, No: no}}
}

func (p *Parser) parseLocal() *js_ast.SLocal {
	kind := js_ast.LocalVar
	switch p.lex.Identifier {
	case "let":
		kind = js_ast.LocalLet
	case "const":
		kind = js_ast.LocalConst
	}
	p.lex.Next()
	var decls []js_ast.Decl
	for {
		name := p.expectIdentifier()
		var value js_ast.Expr
		if p.tryConsumePunct("=") {
			value = p.parseExpr(LAssign)
		}
		decls = append(decls, js_ast.Decl{Name: name, Value: value})
		if !p.tryConsumePunct(",") {
			break
		}
	}
	return &js_ast.SLocal{Kind: kind, Decls: decls}
}

func (p *Parser) parseExport(loc logger.Loc) js_ast.Stmt {
	p.lex.Next() // "export"

	if p.isIdent("default") {
		p.lex.Next()
		var inner js_ast.S
		switch {
		case p.isIdent("class"):
			class := p.parseClass(nil)
			inner = &js_ast.SClass{Class: class}
		case p.isIdent("function"):
			fn := p.parseFunction()
			inner = &js_ast.SFunction{Fn: fn}
		default:
			value := p.parseExpr(LAssign)
			p.tryConsumePunct(";")
			inner = &js_ast.SExpr{Value: value}
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: inner}}
	}

	if p.at("{") {
		p.lex.Next()
		var items []js_ast.ClauseItem
		for !p.at("}") {
			name := p.expectIdentifier()
			alias := name
			if p.isIdent("as") {
				p.lex.Next()
				alias = p.expectIdentifier()
			}
			items = append(items, js_ast.ClauseItem{Name: name, Alias: alias})
			if !p.tryConsumePunct(",") {
				break
			}
		}
		p.expectPunct("}")
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportClause{Items: items}}
	}

	if p.isIdent("class") {
		class := p.parseClass(nil)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: true}}
	}

	if p.isIdent("function") {
		fn := p.parseFunction()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn, IsExport: true}}
	}

	if p.isIdent("const") || p.isIdent("let") || p.isIdent("var") {
		local := p.parseLocal()
		p.tryConsumePunct(";")
		return js_ast.Stmt{Loc: loc, Data: local}
	}

	p.failHere("unsupported export form")
	return js_ast.Stmt{}
}

// parseDecoratedClassStmt handles all three statement forms a class
// declaration can take, with decorators (possibly empty, for the bare
// "class C {}" case reached without a leading "@") already consumed by
// the caller: "class C {}", "export class C {}", and
// "export default class [C] {}".
func (p *Parser) parseDecoratedClassStmt(loc logger.Loc, decorators []js_ast.Expr) js_ast.Stmt {
	if p.isIdent("export") {
		p.lex.Next()
		if p.isIdent("default") {
			p.lex.Next()
			class := p.parseClass(decorators)
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: &js_ast.SClass{Class: class}}}
		}
		class := p.parseClass(decorators)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: true}}
	}
	class := p.parseClass(decorators)
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class}}
}

func (p *Parser) parseDecorators() []js_ast.Expr {
	var decorators []js_ast.Expr
	for p.at("@") {
		p.lex.Next()
		// A decorator expression is an identifier (or parenthesized
		// expression) followed by any mix of "." member accesses and call
		// argument lists, e.g. "@dec", "@ns.dec", "@dec(arg)",
		// "@dec(a).b(c)". A "[" never continues a decorator, so in
		// "@dec [key]() {}" the "[key]" is the decorated member's key.
		dec := p.parseSuffix(p.parsePrefix(), LMember)
		for p.at("(") {
			dec = js_ast.Expr{Loc: dec.Loc, Data: &js_ast.ECall{Target: dec, Args: p.parseArgs()}}
			dec = p.parseSuffix(dec, LMember)
		}
		decorators = append(decorators, dec)
	}
	return decorators
}

// ---------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------

func (p *Parser) parseClass(decorators []js_ast.Expr) *js_ast.Class {
	p.lex.Next() // "class"
	class := &js_ast.Class{Decorators: decorators}

	if p.lex.Token == js_lexer.TIdentifier && !p.isIdent("extends") {
		nameLoc := p.lex.Loc()
		name := p.expectIdentifier()
		class.Name = &name
		class.NameLoc = nameLoc
	}

	if p.isIdent("extends") {
		p.lex.Next()
		class.SuperClass = p.parseSuffix(p.parsePrefix(), LCall)
	}

	class.BodyLoc = p.lex.Loc()
	p.expectPunct("{")
	for !p.at("}") {
		if p.tryConsumePunct(";") {
			continue
		}
		class.Properties = append(class.Properties, p.parseClassMember())
	}
	class.CloseBraceLoc = p.lex.Loc()
	p.expectPunct("}")
	return class
}

func (p *Parser) parseClassMember() js_ast.Property {
	propLoc := p.lex.Loc()
	var decorators []js_ast.Expr
	if p.at("@") {
		decorators = p.parseDecorators()
	}

	// "static { ... }" class static block.
	if p.isIdent("static") {
		// Peek: "static {" is a static block; anything else is a static
		// member with the "static" modifier.
		save := *p.lex
		p.lex.Next()
		if p.at("{") {
			stmts := p.parseBlock()
			return js_ast.Property{
				Loc:              propLoc,
				Kind:             js_ast.PropertyClassStaticBlock,
				ClassStaticBlock: &js_ast.ClassStaticBlock{Stmts: stmts},
			}
		}
		*p.lex = save
	}

	isStatic := false
	if p.isIdent("static") {
		isStatic = true
		p.lex.Next()
	}

	kind := js_ast.PropertyField
	isAutoAccessor := false

	switch {
	case p.isIdent("accessor"):
		save := *p.lex
		p.lex.Next()
		if p.canStartPropertyKey() {
			isAutoAccessor = true
			kind = js_ast.PropertyAutoAccessor
		} else {
			*p.lex = save
		}
	case p.isIdent("get"):
		save := *p.lex
		p.lex.Next()
		if p.canStartPropertyKey() {
			kind = js_ast.PropertyGet
		} else {
			*p.lex = save
		}
	case p.isIdent("set"):
		save := *p.lex
		p.lex.Next()
		if p.canStartPropertyKey() {
			kind = js_ast.PropertySet
		} else {
			*p.lex = save
		}
	}

	isAsync, isGenerator := false, false
	if kind == js_ast.PropertyField && p.isIdent("async") {
		save := *p.lex
		p.lex.Next()
		if p.canStartPropertyKey() || p.at("*") {
			isAsync = true
		} else {
			*p.lex = save
		}
	}
	if kind == js_ast.PropertyField && p.at("*") {
		isGenerator = true
		p.lex.Next()
	}

	key, isComputed := p.parsePropertyKey()
	isConstructor := !isStatic && !isComputed && kind == js_ast.PropertyField && isIdentifierKey(key, "constructor")

	// Method (including constructor): key followed by "(".
	if p.at("(") {
		fn := p.parseMethodTail(isAsync, isGenerator)
		if kind == js_ast.PropertyField {
			kind = js_ast.PropertyMethod
		}
		return js_ast.Property{
			Loc: propLoc, Kind: kind, Key: key, IsComputed: isComputed,
			Decorators: decorators, IsStatic: isStatic, IsConstructor: isConstructor, Fn: fn,
		}
	}

	// Field or auto-accessor, optionally with an initializer.
	var init js_ast.Expr
	if p.tryConsumePunct("=") {
		init = p.parseExpr(LAssign)
	}
	p.tryConsumePunct(";")
	if !isAutoAccessor {
		kind = js_ast.PropertyField
	}
	return js_ast.Property{
		Loc: propLoc, Kind: kind, Key: key, IsComputed: isComputed,
		Decorators: decorators, IsStatic: isStatic, Initializer: init,
	}
}

func isIdentifierKey(key js_ast.Expr, name string) bool {
	id, ok := key.Data.(*js_ast.EIdentifier)
	return ok && id.Name == name
}

// canStartPropertyKey reports whether the current token could begin a
// property key, used to disambiguate contextual keywords like "get"/"set"/
// "static"/"accessor" from a property named e.g. "get".
func (p *Parser) canStartPropertyKey() bool {
	switch p.lex.Token {
	case js_lexer.TIdentifier, js_lexer.TPrivateIdentifier, js_lexer.TStringLiteral, js_lexer.TNumericLiteral:
		return true
	}
	return p.at("[")
}

func (p *Parser) parsePropertyKey() (key js_ast.Expr, isComputed bool) {
	loc := p.lex.Loc()
	switch p.lex.Token {
	case js_lexer.TIdentifier:
		name := p.lex.Identifier
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}, false
	case js_lexer.TPrivateIdentifier:
		name := p.lex.Identifier
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EPrivateIdentifier{Name: name}}, false
	case js_lexer.TStringLiteral:
		value := p.lex.StringValue
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}, false
	case js_lexer.TNumericLiteral:
		raw := p.lex.Raw
		n := p.lex.Number
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: n, Raw: raw}}, false
	case js_lexer.TPunctuation:
		if p.lex.Raw == "[" {
			p.lex.Next()
			e := p.parseExpr(LAssign)
			p.expectPunct("]")
			return e, true
		}
	}
	p.failHere("expected property key but found %q", p.lex.Raw)
	return js_ast.Expr{}, false
}

func (p *Parser) parseMethodTail(isAsync bool, isGenerator bool) *js_ast.Fn {
	params := p.parseParams()
	body := p.parseBlock()
	return &js_ast.Fn{Params: params, Body: body, IsAsync: isAsync, IsGenerator: isGenerator}
}

func (p *Parser) parseParams() []js_ast.Param {
	p.expectPunct("(")
	var params []js_ast.Param
	for !p.at(")") {
		name := p.expectIdentifier()
		var def js_ast.Expr
		if p.tryConsumePunct("=") {
			def = p.parseExpr(LAssign)
		}
		params = append(params, js_ast.Param{Name: name, Default: def})
		if !p.tryConsumePunct(",") {
			break
		}
	}
	p.expectPunct(")")
	return params
}

func (p *Parser) parseFunction() *js_ast.Fn {
	p.lex.Next() // "function"
	isGenerator := p.tryConsumePunct("*")
	name := ""
	if p.lex.Token == js_lexer.TIdentifier {
		name = p.expectIdentifier()
	}
	params := p.parseParams()
	body := p.parseBlock()
	return &js_ast.Fn{Name: name, Params: params, Body: body, IsGenerator: isGenerator}
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (p *Parser) parseExpr(level Level) js_ast.Expr {
	expr := p.parsePrefix()
	expr = p.parseSuffix(expr, level)
	if level <= LComma {
		for p.at(",") {
			p.lex.Next()
			next := p.parseExpr(LAssign)
			if seq, ok := expr.Data.(*js_ast.ESequence); ok {
				seq.Exprs = append(seq.Exprs, next)
			} else {
				expr = js_ast.Expr{Loc: expr.Loc, Data: &js_ast.ESequence{Exprs: []js_ast.Expr{expr, next}}}
			}
		}
	}
	return expr
}

func (p *Parser) parsePrefix() js_ast.Expr {
	loc := p.lex.Loc()

	switch p.lex.Token {
	case js_lexer.TNumericLiteral:
		n, raw := p.lex.Number, p.lex.Raw
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: n, Raw: raw}}

	case js_lexer.TStringLiteral:
		v := p.lex.StringValue
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: v}}

	case js_lexer.TTemplateLiteral:
		raw := p.lex.Raw
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{Raw: raw}}

	case js_lexer.TRegularExpression:
		raw := p.lex.Raw
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Raw: raw}}

	case js_lexer.TPrivateIdentifier:
		name := p.lex.Identifier
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EPrivateIdentifier{Name: name}}

	case js_lexer.TIdentifier:
		name := p.lex.Identifier
		switch name {
		case "this":
			p.lex.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}
		case "super":
			p.lex.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}
		case "true", "false":
			p.lex.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: name == "true"}}
		case "null":
			p.lex.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}
		case "undefined":
			p.lex.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.EUndefined{}}
		case "function":
			fn := p.parseFunction()
			return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
		case "class":
			class := p.parseClass(nil)
			return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}
		case "new":
			p.lex.Next()
			if p.isIdent("target") {
				p.lex.Next()
				return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "new"}}, Name: "target"}}
			}
			callee := p.parseSuffix(p.parsePrefix(), LNew)
			var args []js_ast.Expr
			if p.at("(") {
				args = p.parseArgs()
			}
			return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{Target: callee, Args: args, IsNew: true}}
		case "typeof", "void", "delete":
			p.lex.Next()
			value := p.parseExpr(LPrefix)
			return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: name, Value: value, Prefix: true}}
		case "async":
			save := *p.lex
			p.lex.Next()
			if p.isIdent("function") {
				fn := p.parseFunction()
				fn.IsAsync = true
				return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
			}
			if arrow, ok := p.tryParseArrow(true); ok {
				return arrow
			}
			*p.lex = save
		}
		if arrow, ok := p.tryParseArrow(false); ok {
			return arrow
		}
		p.lex.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}

	case js_lexer.TPunctuation:
		switch p.lex.Raw {
		case "(":
			return p.parseParenOrArrow(loc)
		case "[":
			return p.parseArrayLiteral(loc)
		case "{":
			return p.parseObjectLiteral(loc)
		case "!", "~", "+", "-", "++", "--":
			op := p.lex.Raw
			p.lex.Next()
			value := p.parseExpr(LPrefix)
			return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: op, Value: value, Prefix: true}}
		case "...":
			p.lex.Next()
			value := p.parseExpr(LSpread)
			return js_ast.Expr{Loc: loc, Data: &js_ast.ESpread{Value: value}}
		}
	}

	p.failHere("unexpected token %q", p.lex.Raw)
	return js_ast.Expr{}
}

// tryParseArrow speculatively parses "(params) => body" or "ident => body".
// On failure it leaves the lexer position unspecified; callers must save
// and restore lexer state themselves around the attempt.
func (p *Parser) tryParseArrow(isAsync bool) (js_ast.Expr, bool) {
	loc := p.lex.Loc()
	save := *p.lex

	var params []js_ast.Param
	if p.lex.Token == js_lexer.TIdentifier && !js_lexer.IsKeyword(p.lex.Identifier) {
		name := p.lex.Identifier
		p.lex.Next()
		if !p.at("=>") {
			*p.lex = save
			return js_ast.Expr{}, false
		}
		params = []js_ast.Param{{Name: name}}
	} else if p.at("(") {
		ok := func() (ok bool) {
			defer func() {
				if recover() != nil {
					ok = false
				}
			}()
			params = p.parseParams()
			return p.at("=>")
		}()
		if !ok {
			*p.lex = save
			return js_ast.Expr{}, false
		}
	} else {
		return js_ast.Expr{}, false
	}

	p.expectPunct("=>")
	if p.at("{") {
		body := p.parseBlock()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{Params: params, Body: body, IsAsync: isAsync}}, true
	}
	expr := p.parseExpr(LAssign)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{Params: params, ExprBody: expr, IsExprBody: true, IsAsync: isAsync}}, true
}

func (p *Parser) parseParenOrArrow(loc logger.Loc) js_ast.Expr {
	if arrow, ok := p.tryParseArrow(false); ok {
		return arrow
	}
	p.expectPunct("(")
	value := p.parseExpr(LLowest)
	p.expectPunct(")")
	return js_ast.Expr{Loc: loc, Data: &js_ast.EParen{Value: value}}
}

func (p *Parser) parseArrayLiteral(loc logger.Loc) js_ast.Expr {
	p.lex.Next() // "["
	var items []js_ast.Expr
	for !p.at("]") {
		items = append(items, p.parseExpr(LAssign))
		if !p.tryConsumePunct(",") {
			break
		}
	}
	p.expectPunct("]")
	return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items}}
}

func (p *Parser) parseObjectLiteral(loc logger.Loc) js_ast.Expr {
	p.lex.Next() // "{"
	var props []js_ast.Property
	for !p.at("}") {
		propLoc := p.lex.Loc()
		key, isComputed := p.parsePropertyKey()
		if p.at("(") {
			fn := p.parseMethodTail(false, false)
			props = append(props, js_ast.Property{Loc: propLoc, Kind: js_ast.PropertyMethod, Key: key, IsComputed: isComputed, Fn: fn})
		} else if p.tryConsumePunct(":") {
			value := p.parseExpr(LAssign)
			props = append(props, js_ast.Property{Loc: propLoc, Kind: js_ast.PropertyField, Key: key, IsComputed: isComputed, Initializer: value})
		} else {
			// Shorthand "{ x }".
			props = append(props, js_ast.Property{Loc: propLoc, Kind: js_ast.PropertyField, Key: key, Initializer: key})
		}
		if !p.tryConsumePunct(",") {
			break
		}
	}
	p.expectPunct("}")
	return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: props}}
}

func (p *Parser) parseArgs() []js_ast.Expr {
	p.expectPunct("(")
	var args []js_ast.Expr
	for !p.at(")") {
		args = append(args, p.parseExpr(LAssign))
		if !p.tryConsumePunct(",") {
			break
		}
	}
	p.expectPunct(")")
	return args
}

func (p *Parser) parseSuffix(left js_ast.Expr, level Level) js_ast.Expr {
	for {
		switch p.lex.Token {
		case js_lexer.TPunctuation:
			switch p.lex.Raw {
			case ".":
				p.lex.Next()
				if p.lex.Token == js_lexer.TPrivateIdentifier {
					name := p.lex.Identifier
					p.lex.Next()
					left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, IsPrivate: true}}
				} else {
					name := p.expectIdentifier()
					left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name}}
				}
				continue
			case "?.":
				p.lex.Next()
				if p.at("(") {
					args := p.parseArgs()
					left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: args, OptionalChain: true}}
					continue
				}
				name := p.expectIdentifier()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name}}
				continue
			case "[":
				if level >= LMember {
					return left
				}
				p.lex.Next()
				index := p.parseExpr(LLowest)
				p.expectPunct("]")
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index}}
				continue
			case "(":
				// Use a strict ">" here (not the ">=" every other suffix
				// check in this loop uses): "extends" clauses call
				// parseSuffix at exactly LCall specifically so that a call
				// expression ("extends Mixin(Base)") still gets consumed as
				// part of the expression instead of being left dangling
				// for the caller to choke on.
				if level > LCall {
					return left
				}
				args := p.parseArgs()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: args}}
				continue
			case "++", "--":
				if level >= LPostfix || p.lex.HasNewlineBefore {
					return left
				}
				op := p.lex.Raw
				p.lex.Next()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: op, Value: left, Prefix: false}}
				continue
			case "?":
				if level >= LConditional {
					return left
				}
				p.lex.Next()
				yes := p.parseExpr(LAssign)
				p.expectPunct(":")
				no := p.parseExpr(LAssign)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIfElse{Test: left, Yes: yes, No: no}}
				continue
			}

			if assignOps[p.lex.Raw] {
				if level > LAssign {
					return left
				}
				op := p.lex.Raw
				p.lex.Next()
				value := p.parseExpr(LAssign)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EAssign{Op: op, Target: left, Value: value}}
				continue
			}

			if opLevel, ok := binaryOpLevel[p.lex.Raw]; ok {
				if opLevel < level {
					return left
				}
				op := p.lex.Raw
				nextLevel := opLevel + 1
				if op == "**" {
					nextLevel = opLevel // right-associative
				}
				p.lex.Next()
				right := p.parseExpr(nextLevel)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
				continue
			}

			return left

		case js_lexer.TIdentifier:
			switch p.lex.Identifier {
			case "instanceof", "in":
				if level > LCompare {
					return left
				}
				op := p.lex.Identifier
				p.lex.Next()
				right := p.parseExpr(LCompare + 1)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
				continue
			}
			return left

		default:
			return left
		}
	}
}
