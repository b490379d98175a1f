package decorator_test

import (
	"strings"
	"testing"

	"github.com/stage3dec/stage3dec/internal/decorator"
	"github.com/stage3dec/stage3dec/internal/helpers"
	"github.com/stage3dec/stage3dec/internal/js_parser"
	"github.com/stage3dec/stage3dec/internal/js_printer"
	"github.com/stage3dec/stage3dec/internal/logger"
	"github.com/stage3dec/stage3dec/internal/runtime"
	"github.com/stage3dec/stage3dec/internal/test"
)

// lower parses contents, runs the full program rewrite, and prints the
// result, returning the diagnostic strings alongside the code instead of
// failing the test directly, since several tests here want to assert on
// errors rather than output. Prepends the runtime helper when needed,
// same as pkg/api.Transform does — it's
// decorator.RewriteProgram's caller's job, not RewriteProgram's own, to
// splice the two together.
func lower(t *testing.T, contents string) (code string, errs []string) {
	t.Helper()
	log := logger.NewDeferLog()
	src := test.SourceForTest(contents)

	program, ok := js_parser.Parse(log, &src)
	if !ok {
		return "", log.Strings()
	}

	result := decorator.RewriteProgram(log, &src, &program)
	printed := js_printer.Print(program, js_printer.Options{})
	code = string(printed.JS)
	if result.NeedsRuntime {
		code = runtime.Code + "\n" + code
	}
	return code, log.Strings()
}

func expectContains(t *testing.T, contents string, substrs ...string) string {
	t.Helper()
	code, errs := lower(t, contents)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors for %q: %v", contents, errs)
	}
	for _, sub := range substrs {
		if !strings.Contains(code, sub) {
			t.Fatalf("expected output for %q to contain:\n\t%s\ngot:\n%s", contents, sub, code)
		}
	}
	return code
}

func expectNotContains(t *testing.T, code string, substrs ...string) {
	t.Helper()
	for _, sub := range substrs {
		if strings.Contains(code, sub) {
			t.Fatalf("expected output not to contain %q, got:\n%s", sub, code)
		}
	}
}

// A plain method decorator. The method carries a non-static decorator,
// so a synthesized constructor calling _initProto(this) is required in
// addition to the static block; the pieces are checked separately rather
// than as one contiguous substring.
func TestPlainMethodDecorator(t *testing.T) {
	code := expectContains(t, `function d(v){return v} class C { @d m(){return 1} }`,
		"function _applyDecs",
		"let _initProto, _initClass;",
		"m() {",
		"return 1;",
		"[_initProto, _initClass] = _applyDecs(this, [[d, 2, 'm', false]], []).e;",
		"if (_initClass) _initClass();",
		"if (_initProto) _initProto(this);",
	)
	expectNotContains(t, code, "@d")
}

// A field decorator forces a synthesized constructor since fields always
// need instance initialization.
func TestFieldDecoratorForcesConstructor(t *testing.T) {
	code := expectContains(t, `class C { @d x = 1; }`,
		"constructor() {\n\t\tif (_initProto) _initProto(this);\n\t}",
		"[d, 0, 'x', false]",
	)

	wantCtor := "constructor() {\n\t\tif (_initProto) _initProto(this);\n\t}"
	idx := strings.Index(code, "constructor() {")
	if idx < 0 || idx+len(wantCtor) > len(code) {
		t.Fatalf("expected a synthesized constructor in:\n%s", code)
	}
	test.AssertEqualWithDiff(t, wantCtor, code[idx:idx+len(wantCtor)])
}

// A private getter reports its key without the leading "#" and
// isPrivate=true.
func TestPrivateGetterDescriptor(t *testing.T) {
	expectContains(t, `class C { @d get #g(){} }`,
		"[d, 3, 'g', true]",
	)
}

// A static setter packs kind=4 with the static bit (8) set, for flags = 12.
func TestStaticSetterFlags(t *testing.T) {
	expectContains(t, `class C { @d static set s(v){} }`,
		"[d, 12, 's', false]",
	)
}

// A call-expression decorator with a member-access argument on an
// "export default class" triggers the class-binding lift, complete with
// the second _applyDecs(...).c[0] call.
func TestClassDecoratorBindingLift(t *testing.T) {
	code := expectContains(t,
		`@noraComponent(import.meta.hot) export default class X extends Base {}`,
		"let _initProto, _initClass;",
		"let X = class X extends Base {",
		"[_initProto, _initClass] = _applyDecs(this, [], []).e;",
		"if (_initClass) _initClass();",
		"X = _applyDecs(X, [], [noraComponent(import.meta.hot)]).c[0];",
		"export default X;",
	)
	expectNotContains(t, code, "@noraComponent")
}

// _initProto(this) is inserted between an existing super(...) call and
// whatever statement follows it.
func TestInitProtoInsertedAfterSuper(t *testing.T) {
	code := expectContains(t,
		`class C extends B { @d x = 1; constructor(){ super(42); log(); } }`,
		"super(42);",
		"if (_initProto) _initProto(this);",
		"log();",
	)
	superIdx := strings.Index(code, "super(42);")
	initIdx := strings.Index(code, "if (_initProto) _initProto(this);")
	logIdx := strings.Index(code, "log();")
	if !(superIdx < initIdx && initIdx < logIdx) {
		t.Fatalf("expected super(42); < _initProto guard < log(); in:\n%s", code)
	}
}

// P1: source with no "@" token at all is emitted unchanged in substance
// and never gets the runtime helper prepended.
func TestNoDecoratorIdentity(t *testing.T) {
	contents := `class Plain { x = 1; m() { return this.x; } }`
	code, errs := lower(t, contents)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	expectNotContains(t, code, "_applyDecs", "_initProto", "_initClass")
	test.AssertEqual(t, strings.Contains(code, "x = 1;"), true)
	test.AssertEqual(t, strings.Contains(code, "return this.x;"), true)
}

// P2: no "@" survives anywhere in a decorated file's output.
func TestNoDecoratorTokenSurvives(t *testing.T) {
	code := expectContains(t, `class C { @a @b m(){} @c static y = 1; }`)
	expectNotContains(t, code, "@a", "@b", "@c")
}

// P3: the runtime's "function _applyDecs" substring appears exactly once when
// at least one class was rewritten, and not at all otherwise.
func TestSingleHelperInjection(t *testing.T) {
	decorated, _ := lower(t, `class C { @d m(){} }`)
	test.AssertEqual(t, strings.Count(decorated, "function _applyDecs"), 1)

	plain, _ := lower(t, `class C { m(){} }`)
	test.AssertEqual(t, strings.Count(plain, "function _applyDecs"), 0)
}

// P4: "let _initProto, _initClass" appears at most once per module, and
// only when at least one class was rewritten — even with two decorated
// classes in the same file.
func TestSingleLetInjectionPerModule(t *testing.T) {
	code := expectContains(t, `class A { @d x = 1; } class B { @d y = 2; }`,
		"let _initProto, _initClass;",
	)
	test.AssertEqual(t, strings.Count(code, "let _initProto, _initClass;"), 1)

	plain, _ := lower(t, `class C {}`)
	test.AssertEqual(t, strings.Contains(plain, "_initProto"), false)
}

// P5: "export class X" keeps exporting X by name, through an "export {
// X };" clause rather than an invalid "export let X".
func TestExportClassPreservesBinding(t *testing.T) {
	code := expectContains(t, `@dec export class X {}`,
		"let X = class X {",
		"export { X };",
	)
	expectNotContains(t, code, "export let X", "export var X", "export class X")
}

// P6: two decorators on one member are collected in source order, with
// the outer (first-written) decorator appearing earlier in the tuple list
// than the inner (closest-to-member) one — so the runtime's reverse
// iteration applies the inner decorator first.
func TestMultipleDecoratorsPreserveSourceOrder(t *testing.T) {
	code := expectContains(t, `class C { @outer @inner m(){} }`,
		"[[outer, 2, 'm', false], [inner, 2, 'm', false]]",
	)
	_ = code
}

// A decorated constructor is an unsupported target: the class is left
// untouched and a diagnostic is reported.
func TestDecoratedConstructorIsUnsupported(t *testing.T) {
	code, errs := lower(t, `class C { @d constructor(){} }`)
	if len(errs) == 0 {
		t.Fatalf("expected an error for a decorated constructor")
	}
	if !strings.Contains(errs[0], "constructor") {
		t.Fatalf("expected the diagnostic to mention the constructor, got %q", errs[0])
	}
	expectNotContains(t, code, "_applyDecs")
}

// A decorated computed key is also an unsupported target: the pass
// can't recover the runtime key string for it.
func TestDecoratedComputedKeyIsUnsupported(t *testing.T) {
	_, errs := lower(t, `class C { @d [k](){} }`)
	if len(errs) == 0 {
		t.Fatalf("expected an error for a decorated computed key")
	}
	if !strings.Contains(errs[0], "computed") {
		t.Fatalf("expected the diagnostic to mention computed keys, got %q", errs[0])
	}
}

// One class failing (a decorated constructor) doesn't stop the rest of
// the program from being rewritten — class-local errors are best-effort.
func TestOneClassErrorDoesNotAbortTheProgram(t *testing.T) {
	code, errs := lower(t, `class Bad { @d constructor(){} } class Good { @d m(){} }`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", errs)
	}
	expectNotContains(t, extractClass(code, "Bad"), "_applyDecs")
	if !strings.Contains(extractClass(code, "Good"), "_applyDecs") {
		t.Fatalf("expected class Good to still be rewritten, got:\n%s", code)
	}
}

// A class expression nested inside a variable declarator is reached by
// the same traversal as a top-level declaration — only its member
// decorators matter, since this parser never attaches a decorator to a
// class in expression position.
func TestNestedClassExpressionInVariableDeclarator(t *testing.T) {
	code := expectContains(t, `function d(v){return v} let X = class { @d m(){return 1} };`,
		"function _applyDecs",
		"let _initProto, _initClass;",
		"let X = class {",
		"[_initProto, _initClass] = _applyDecs(this, [[d, 2, 'm', false]], []).e;",
	)
	expectNotContains(t, code, "@d")
}

// A decorated class declaration nested inside a function body still gets
// the class-binding lift, spliced into the function's own statement list
// rather than the module's.
func TestNestedClassDeclarationInsideFunctionBody(t *testing.T) {
	code := expectContains(t, `function f(){ @d class Inner { m(){} } }`,
		"function _applyDecs",
		"let _initProto, _initClass;",
		"function f() {",
		"let Inner = class Inner {",
		"Inner = _applyDecs(Inner, [], [d]).c[0];",
	)
	expectNotContains(t, code, "@d class")
}

// ProgramResult.RewrittenClasses lists classes in the order the traversal
// visits them: a top-level class before one nested inside a function
// declared later in the file.
func TestRewrittenClassesReportsSourceOrderAcrossNesting(t *testing.T) {
	log := logger.NewDeferLog()
	src := test.SourceForTest(`class A { @d x = 1; } function f(){ @d class B {} }`)

	program, ok := js_parser.Parse(log, &src)
	if !ok {
		t.Fatalf("unexpected parse errors: %v", log.Strings())
	}

	result := decorator.RewriteProgram(log, &src, &program)
	want := []string{"A", "B"}
	if !helpers.StringArraysEqual(result.RewrittenClasses, want) {
		t.Fatalf("expected rewritten classes %v, got %v", want, result.RewrittenClasses)
	}
}

// extractClass returns the slice of code from "class <name>" up to (but not
// including) the next "class " substring, so assertions about one
// class's output aren't accidentally satisfied by a sibling class later in
// the same file.
func extractClass(code string, name string) string {
	idx := strings.Index(code, "class "+name)
	if idx < 0 {
		return ""
	}
	rest := code[idx+len("class "+name):]
	if next := strings.Index(rest, "class "); next >= 0 {
		return code[idx : idx+len("class "+name)+next]
	}
	return code[idx:]
}
