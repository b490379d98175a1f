// Package js_lexer tokenizes the subset of JS/TS syntax internal/js_parser
// understands. It's a byte-oriented scanner that advances one code point
// ("step") at a time and exposes the current token through fields on the
// Lexer rather than returning a new struct per token.
package js_lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stage3dec/stage3dec/internal/logger"
)

type T uint8

const (
	TEndOfFile T = iota
	TIdentifier
	TPrivateIdentifier
	TNumericLiteral
	TStringLiteral
	TTemplateLiteral
	TRegularExpression

	// Punctuators. Raw carries the exact operator text so the parser can
	// switch on it without a second enum for every compound assignment form.
	TPunctuation
)

// Lexer tokenizes source text on demand. Callers call Next() to advance.
type Lexer struct {
	Log    logger.Log
	Source *logger.Source

	source string

	start int // byte offset of the current token
	end   int // byte offset just past the current token
	pos   int // byte offset of the next rune to read

	codePoint rune

	Token       T
	Raw         string // exact source text of the current token
	Identifier  string // decoded identifier/keyword text (== Raw for ASCII identifiers)
	StringValue string // decoded string-literal value (no quotes, escapes resolved)
	Number      float64

	// HasNewlineBefore is true if a line terminator appears between the
	// previous token and this one. The parser reads it only to keep a
	// postfix "++"/"--" from binding across a line break.
	HasNewlineBefore bool

	PrevTokenWasKeywordOrIdentifier bool
}

func NewLexer(log logger.Log, source *logger.Source) *Lexer {
	l := &Lexer{Log: log, Source: source, source: source.Contents}
	l.step()
	l.Next()
	return l
}

func (l *Lexer) step() {
	if l.pos >= len(l.source) {
		l.codePoint = -1
		l.end = l.pos
		return
	}
	c, width := utf8.DecodeRuneInString(l.source[l.pos:])
	l.end = l.pos
	l.codePoint = c
	l.pos += width
}

func (l *Lexer) peekByte() byte {
	if l.pos < len(l.source) {
		return l.source[l.pos]
	}
	return 0
}

func (l *Lexer) raise(loc logger.Loc, text string) {
	l.Log.AddError(l.Source, loc, text)
}

func (l *Lexer) Loc() logger.Loc {
	return logger.Loc{Start: int32(l.start)}
}

func (l *Lexer) Range() logger.Range {
	return logger.Range{Loc: logger.Loc{Start: int32(l.start)}, Len: int32(l.end - l.start)}
}

func isIdentifierStart(c rune) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c > 127
}

func isIdentifierPart(c rune) bool {
	return isIdentifierStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

// Next scans the next token into the Lexer's fields.
func (l *Lexer) Next() {
	l.HasNewlineBefore = false
	prevWasKeywordOrIdent := l.PrevTokenWasKeywordOrIdentifier
	l.PrevTokenWasKeywordOrIdentifier = false

	for {
		l.start = l.end
		l.StringValue = ""

		switch l.codePoint {
		case -1:
			l.Token = TEndOfFile
			return

		case ' ', '\t', '\r':
			l.step()
			continue

		case '\n':
			l.HasNewlineBefore = true
			l.step()
			continue

		case '/':
			if l.peekByte() == '/' {
				l.skipLineComment()
				continue
			}
			if l.peekByte() == '*' {
				if l.skipBlockComment() {
					l.HasNewlineBefore = true
				}
				continue
			}
			if !prevWasKeywordOrIdent {
				l.scanRegExp()
				return
			}
			l.scanPunctuation()
			return

		case '"', '\'':
			l.scanString(byte(l.codePoint))
			return

		case '`':
			l.scanTemplate()
			return

		case '#':
			l.step()
			if !isIdentifierStart(l.codePoint) {
				l.raise(l.Loc(), "expected identifier after \"#\"")
			}
			l.scanIdentifierBody()
			l.Token = TPrivateIdentifier
			l.Identifier = l.source[l.start+1 : l.end]
			l.Raw = l.source[l.start:l.end]
			return

		default:
			if isIdentifierStart(l.codePoint) {
				l.scanIdentifierBody()
				l.Token = TIdentifier
				l.Identifier = l.source[l.start:l.end]
				l.Raw = l.Identifier
				l.PrevTokenWasKeywordOrIdentifier = true
				return
			}
			if isDigit(l.codePoint) || (l.codePoint == '.' && isDigit(rune(l.peekByte()))) {
				l.scanNumber()
				return
			}
			l.scanPunctuation()
			return
		}
	}
}

func (l *Lexer) scanIdentifierBody() {
	for isIdentifierPart(l.codePoint) {
		l.step()
	}
}

func (l *Lexer) skipLineComment() {
	for l.codePoint != '\n' && l.codePoint != -1 {
		l.step()
	}
}

func (l *Lexer) skipBlockComment() (sawNewline bool) {
	l.step() // consume '*'
	l.step()
	for {
		switch l.codePoint {
		case -1:
			l.raise(l.Loc(), "unterminated block comment")
			return
		case '\n':
			sawNewline = true
			l.step()
		case '*':
			l.step()
			if l.codePoint == '/' {
				l.step()
				return
			}
		default:
			l.step()
		}
	}
}

func (l *Lexer) scanString(quote byte) {
	l.step()
	var sb strings.Builder
	for {
		switch l.codePoint {
		case -1:
			l.raise(l.Loc(), "unterminated string literal")
			l.Token = TStringLiteral
			l.StringValue = sb.String()
			return
		case rune(quote):
			l.step()
			l.Token = TStringLiteral
			l.StringValue = sb.String()
			return
		case '\\':
			l.step()
			sb.WriteRune(decodeEscape(l))
		default:
			sb.WriteRune(l.codePoint)
			l.step()
		}
	}
}

func decodeEscape(l *Lexer) rune {
	c := l.codePoint
	switch c {
	case 'n':
		l.step()
		return '\n'
	case 't':
		l.step()
		return '\t'
	case 'r':
		l.step()
		return '\r'
	case -1:
		return -1
	default:
		l.step()
		return c
	}
}

// scanTemplate captures a whole template literal verbatim, including any
// "${...}" substitutions, tracking brace/backtick nesting. The pass never
// inspects template contents, only re-emits them, so no substitution AST
// is built.
func (l *Lexer) scanTemplate() {
	l.step() // opening backtick
	depth := 0
	for {
		switch l.codePoint {
		case -1:
			l.raise(l.Loc(), "unterminated template literal")
			l.Token = TTemplateLiteral
			return
		case '\\':
			l.step()
			l.step()
		case '`':
			if depth == 0 {
				l.step()
				l.Token = TTemplateLiteral
				l.Raw = l.source[l.start:l.end]
				return
			}
			l.step()
		case '$':
			l.step()
			if l.codePoint == '{' {
				depth++
				l.step()
			}
		case '}':
			if depth > 0 {
				depth--
			}
			l.step()
		default:
			l.step()
		}
	}
}

func (l *Lexer) scanRegExp() {
	l.step() // opening slash
	inClass := false
	for {
		switch l.codePoint {
		case -1, '\n':
			l.raise(l.Loc(), "unterminated regular expression")
			l.Token = TRegularExpression
			return
		case '\\':
			l.step()
			l.step()
		case '[':
			inClass = true
			l.step()
		case ']':
			inClass = false
			l.step()
		case '/':
			l.step()
			if !inClass {
				for isIdentifierPart(l.codePoint) {
					l.step()
				}
				l.Token = TRegularExpression
				l.Raw = l.source[l.start:l.end]
				return
			}
		default:
			l.step()
		}
	}
}

func (l *Lexer) scanNumber() {
	for isDigit(l.codePoint) {
		l.step()
	}
	if l.codePoint == '.' {
		l.step()
		for isDigit(l.codePoint) {
			l.step()
		}
	}
	if l.codePoint == 'e' || l.codePoint == 'E' {
		l.step()
		if l.codePoint == '+' || l.codePoint == '-' {
			l.step()
		}
		for isDigit(l.codePoint) {
			l.step()
		}
	}
	l.Raw = l.source[l.start:l.end]
	l.Token = TNumericLiteral
	if n, err := strconv.ParseFloat(l.Raw, 64); err == nil {
		l.Number = n
	}
}

// punctuators lists multi-character operators longest-first so a greedy
// scan never stops one character short.
var punctuators = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "**",
	"<<", ">>", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"{", "}", "(", ")", "[", "]", ".", ";", ",", "<", ">", "+", "-", "*", "/",
	"%", "&", "|", "^", "!", "~", "?", ":", "=", "@",
}

func (l *Lexer) scanPunctuation() {
	rest := l.source[l.start:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p) {
			l.pos = l.start + len(p)
			l.step()
			l.Token = TPunctuation
			l.Raw = p
			return
		}
	}
	l.raise(l.Loc(), "unexpected character")
	l.step()
	l.Token = TPunctuation
	l.Raw = l.source[l.start:l.end]
}

// IsKeyword reports whether text is a reserved word this grammar treats
// specially rather than as a plain identifier/binding name.
func IsKeyword(text string) bool {
	switch text {
	case "class", "extends", "static", "get", "set", "async", "function",
		"const", "let", "var", "export", "default", "return", "if", "else",
		"throw", "new", "typeof", "void", "delete", "instanceof", "in",
		"this", "super", "true", "false", "null":
		return true
	}
	return false
}
