package log

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Level is the severity of a log message. It orders like [slog.Level] and
// adds [LevelTrace] below [LevelDebug] for the parser and resolver.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a [Logger] made without [WithLevel].
const DefaultLevel = LevelInfo

type namedLevel struct {
	level Level
	name  string
}

// levels lists the named levels from least to most severe.
//
//nolint:gochecknoglobals
var levels = []namedLevel{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase name of l. A level between two named ones
// is printed as an offset from the lower one, e.g. "info+2".
func (l Level) String() string {
	for i := len(levels) - 1; i >= 0; i-- {
		named := levels[i]
		switch {
		case l == named.level:
			return named.name
		case l > named.level:
			return fmt.Sprintf("%s+%d", named.name, l-named.level)
		}
	}

	return fmt.Sprintf("%s%d", levels[0].name, l-levels[0].level)
}

// Levels yields the names of all named levels, least severe first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, named := range levels {
			if !yield(named.name) {
				return
			}
		}
	}
}

// ParseLevel parses the case-insensitive name of a level, optionally
// followed by a signed offset as in "debug+2" or "error-1". Anything else
// yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))

	name, offset := s, 0

	if i := strings.IndexAny(s, "+-"); i > 0 {
		n, err := strconv.Atoi(s[i:])
		if err != nil {
			return DefaultLevel
		}

		name, offset = s[:i], n
	}

	i := slices.IndexFunc(levels, func(named namedLevel) bool {
		return named.name == name
	})
	if i < 0 {
		return DefaultLevel
	}

	return levels[i].level + Level(offset)
}

// Format selects how log messages are encoded.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a [Logger] made without [WithFormat].
const DefaultFormat = FormatText

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Formats yields the names of all formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat parses the case-insensitive name of a format. Anything else
// yields [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for _, f := range []Format{FormatText, FormatJSON} {
		if strings.EqualFold(s, f.String()) {
			return f
		}
	}

	return DefaultFormat
}
