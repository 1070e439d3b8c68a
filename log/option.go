package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout of a [Logger] made without
// [WithTimeLayout].
const DefaultTimeLayout = time.RFC3339

// settings is the configuration a [Logger] builds its handler from.
type settings struct {
	output io.Writer
	layout string
	level  Level
	format Format
	caller bool
	pretty bool
}

// Option changes one setting of a [Logger].
type Option func(*settings)

func defaultSettings(w io.Writer) settings {
	if w == nil {
		w = io.Discard
	}

	return settings{
		output: w,
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
		pretty: true,
	}
}

func (s *settings) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// handler builds the [slog.Handler] described by s. Pretty output only
// colors when the output is a terminal.
func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	switch {
	case s.format == FormatText && s.pretty:
		return newPrettyTextHandler(s.output, opts)
	case s.format == FormatJSON && s.pretty:
		return newPrettyJSONHandler(s.output, opts)
	case s.format == FormatText:
		return slog.NewTextHandler(s.output, opts)
	case s.format == FormatJSON:
		return slog.NewJSONHandler(s.output, opts)
	default:
		return slog.DiscardHandler
	}
}

// replaceAttr formats timestamps with the configured layout, dropping them
// for an empty one, and prints levels by their [Level] name so that trace
// messages do not show up as "DEBUG-4".
func (s settings) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		if s.layout == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(t.Format(s.layout))

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// WithOutput sets the writer messages go to. A nil w discards them.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}

		s.output = w
	}
}

// WithLevel sets the minimum level of the messages written.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithCaller adds the source file and line of the logging call to each
// message.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty switches to the colorized handlers. Text is printed unquoted
// and JSON is indented over several lines.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}

// WithTimeLayout sets the layout of message timestamps. It accepts a
// [time.Time.Format] layout or one of the names in [TimeLayouts], matched
// ignoring case and punctuation. A layout without letters or digits, or
// the name "none", omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(s *settings) { s.layout = resolveTimeLayout(layout) }
}

// TimeLayouts maps the layout names accepted by [WithTimeLayout] to their
// layouts.
//
//nolint:gochecknoglobals
var TimeLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"none":        "",
}

func resolveTimeLayout(layout string) string {
	key := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if key == "" {
		return ""
	}

	if named, ok := TimeLayouts[key]; ok {
		return named
	}

	return layout
}
