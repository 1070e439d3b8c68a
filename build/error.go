package build

import (
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predefined errors (sentinel values).
var (
	ErrUnknownTarget        = NewError("unknown target")
	ErrUnknownPlatform      = NewError("unknown platform")
	ErrUnknownConfiguration = NewError("unknown configuration")
	ErrCircularDependency   = NewError("circular dependency")
	ErrCommand              = NewError("command failed")
	ErrOutputDir            = NewError("cannot create output directory")
	ErrNoMarefile           = NewError("cannot load Marefile")
)

// Error represents a build error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil || t.msg == "" {
		return false
	}

	return t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// UnknownName returns sentinel wrapped with a message naming name and, if
// one of the known names is close, a suggestion.
func UnknownName(sentinel *Error, name string, known []string) *Error {
	msg := `"` + name + `"`

	if s := suggest(name, known); s != "" {
		msg += `, did you mean "` + s + `"?`
	}

	return sentinel.Wrap(nameError(msg)).With(slog.String("name", name))
}

// suggest returns the known name that best matches name, or "".
func suggest(name string, known []string) string {
	if matches := fuzzy.Find(name, known); len(matches) > 0 {
		return matches[0].Str
	}

	// Fuzzy matching requires the characters of name in order, which
	// rules out names with a typo. Retry with the known names as patterns.
	lower := strings.ToLower(name)

	for _, k := range known {
		if len(fuzzy.Find(strings.ToLower(k), []string{lower})) > 0 {
			return k
		}
	}

	return ""
}

type nameError string

func (e nameError) Error() string { return string(e) }
