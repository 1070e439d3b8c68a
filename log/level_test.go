package log

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelTrace + 2, "trace+2"},
		{LevelInfo + 1, "info+1"},
		{LevelError + 4, "error+4"},
		{LevelTrace - 1, "trace-1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"debug+2", LevelDebug + 2},
		{"error-1", LevelError - 1},
		{"trace-1", LevelTrace - 1},
		{"", DefaultLevel},
		{"verbose", DefaultLevel},
		{"info+x", DefaultLevel},
		{"-4", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestParseLevel_RoundTrip(t *testing.T) {
	for name := range Levels() {
		assert.Equal(t, name, ParseLevel(name).String())
	}

	for _, l := range []Level{LevelTrace - 3, LevelDebug + 1, LevelWarn + 3} {
		assert.Equal(t, l, ParseLevel(l.String()))
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, []string{"text", "json"}, slices.Collect(Formats()))
	assert.Equal(t, "Format(7)", Format(7).String())

	for name := range Formats() {
		assert.Equal(t, name, ParseFormat(name).String())
	}

	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, DefaultFormat, ParseFormat("yaml"))
}
