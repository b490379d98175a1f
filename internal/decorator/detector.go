package decorator

import "github.com/stage3dec/stage3dec/internal/js_ast"

// HasDecorators reports whether class or any of its members carries a
// decorator, the question component E asks of every class declaration
// before deciding whether to touch it at all: check the class itself
// first (cheap, no allocation), then its member list.
func HasDecorators(class *js_ast.Class) bool {
	if len(class.Decorators) > 0 {
		return true
	}
	for _, prop := range class.Properties {
		if len(prop.Decorators) > 0 {
			return true
		}
	}
	return false
}

// StmtClass extracts the *js_ast.Class a statement declares, if any — a
// plain class declaration, "export class", or "export default class" all
// qualify; anything else returns nil. Works the same regardless of where
// the statement sits (module top level, a function body, a block).
func StmtClass(stmt js_ast.Stmt) *js_ast.Class {
	switch s := stmt.Data.(type) {
	case *js_ast.SClass:
		return s.Class
	case *js_ast.SExportDefault:
		if inner, ok := s.Value.(*js_ast.SClass); ok {
			return inner.Class
		}
	}
	return nil
}
