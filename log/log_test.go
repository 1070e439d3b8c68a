package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plain returns a logger with deterministic output for assertions.
func plain(buf *bytes.Buffer, opts ...Option) Logger {
	return Make(buf, append([]Option{WithPretty(false), WithTimeLayout("none")}, opts...)...)
}

func TestLogger_Make_Defaults(t *testing.T) {
	l := Make(nil)

	assert.Equal(t, DefaultLevel, l.Level())
	assert.Equal(t, DefaultFormat, l.Format())
	assert.True(t, l.set.pretty)
	assert.False(t, l.set.caller)
	assert.Equal(t, DefaultTimeLayout, l.set.layout)

	l.Info("discarded")
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		want  []string
	}{
		{LevelTrace, []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{LevelDebug, []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{LevelInfo, []string{"INFO", "WARN", "ERROR"}},
		{LevelWarn, []string{"WARN", "ERROR"}},
		{LevelError, []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := plain(&buf, WithLevel(tt.level))
			l.Trace("rule")
			l.Debug("rule")
			l.Info("rule")
			l.Warn("rule")
			l.Error("rule")

			var got []string
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				level, _, _ := strings.Cut(strings.TrimPrefix(line, "level="), " ")
				got = append(got, level)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithLevel(LevelTrace))
	ctx := t.Context()

	l.TraceContext(ctx, "parsed", slog.String("file", "Marefile"))
	l.DebugContext(ctx, "resolved", slog.String("target", "app"))
	l.InfoContext(ctx, "built", slog.Int("rules", 3))
	l.WarnContext(ctx, "unknown dependency", slog.String("name", "lib"))
	l.ErrorContext(ctx, "command failed", slog.Int("status", 2))

	assert.Equal(t, strings.Join([]string{
		"level=TRACE msg=parsed file=Marefile",
		"level=DEBUG msg=resolved target=app",
		"level=INFO msg=built rules=3",
		`level=WARN msg="unknown dependency" name=lib`,
		"level=ERROR msg=\"command failed\" status=2",
	}, "\n")+"\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	l.Trace("expanded", slog.String("key", "command"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, map[string]any{
		"level": "TRACE",
		"msg":   "expanded",
		"key":   "command",
	}, got)
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithCaller(true))
	l.Info("located")

	assert.Contains(t, buf.String(), "log_test.go:")

	buf.Reset()
	Make(&buf, WithCaller(true), WithTimeLayout("none")).Warn("located")

	assert.Contains(t, buf.String(), "source=")
	assert.Contains(t, buf.String(), "log_test.go:")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := plain(&buf)
	l := base.With(slog.String("target", "app"))
	l.Info("building")
	base.Info("done")

	assert.Equal(t, "level=INFO msg=building target=app\nlevel=INFO msg=done\n", buf.String())
	assert.Equal(t, base, base.With())
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf).With(slog.String("target", "app"))
	wrapped := l.Wrap(WithLevel(LevelDebug), WithFormat(FormatJSON))

	assert.Equal(t, LevelInfo, l.Level())
	assert.Equal(t, LevelDebug, wrapped.Level())
	assert.Equal(t, FormatJSON, wrapped.Format())

	wrapped.Debug("linked")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "app", got["target"])
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	assert.NotPanics(t, func() {
		l.Trace("x")
		l.Error("x", slog.String("k", "v"))
		l.ErrorContext(t.Context(), "x")
		_ = l.With(slog.String("k", "v"))
	})

	assert.Equal(t, DefaultLevel, l.Level())
	assert.Equal(t, DefaultFormat, l.Format())
	assert.False(t, l.Enabled(t.Context(), LevelError))

	var buf bytes.Buffer

	l = l.Wrap(WithOutput(&buf), WithPretty(false), WithTimeLayout("none"))
	l.Warn("recovered")

	assert.Equal(t, "level=WARN msg=recovered\n", buf.String())
}

func TestLogger_Concurrent(t *testing.T) {
	var buf syncBuffer

	l := Make(&buf, WithPretty(false))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w := l.With(slog.Int("job", i))
			for range 10 {
				w.Info("rule done")
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 80, strings.Count(buf.String(), "rule done"))
}

type syncBuffer struct {
	mu sync.Mutex
	bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Buffer.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	l := Make(nil, WithPretty(false))

	for b.Loop() {
		l.Info("rule done", slog.String("target", "app"))
	}
}

func BenchmarkLogger_Info_Disabled(b *testing.B) {
	l := Make(nil, WithLevel(LevelWarn))

	for b.Loop() {
		l.Info("rule done", slog.String("target", "app"))
	}
}
