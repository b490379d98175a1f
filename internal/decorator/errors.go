package decorator

// ErrorKind classifies a diagnostic this pass can report: a syntax error
// during parsing, a decorator written somewhere the proposal doesn't
// allow it, and an internal invariant violation this pass detects while
// collecting a class's descriptors.
type ErrorKind uint8

const (
	// ErrParse covers any failure in internal/js_parser.Parse. The
	// transform aborts entirely; nothing it would have produced is
	// trustworthy enough to return partially.
	ErrParse ErrorKind = iota

	// ErrUnsupportedTarget covers a decorated class member this pass
	// does not lower: a decorated constructor, or a decorated member
	// with a computed key (see BuildMemberDescriptorArray).
	ErrUnsupportedTarget

	// ErrInvariant covers this pass's own bugs: a decorated class
	// element whose kind BuildMemberDescriptorArray cannot classify as
	// a field, accessor, method, getter, or setter.
	ErrInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "parse error"
	case ErrUnsupportedTarget:
		return "decorator on unsupported target"
	case ErrInvariant:
		return "internal invariant violation"
	default:
		return "unknown error"
	}
}

// Error is a diagnostic produced by this package outside of parsing
// (parse errors are reported directly through internal/logger.Log by
// internal/js_parser and never reach this type).
type Error struct {
	Kind ErrorKind
	Text string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Text
}
