package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	cause := errors.New("no such file")
	derived := ErrReadFile.Wrap(cause).With(slog.String("path", "a.txt"))

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"sentinel", ErrReadFile, ErrReadFile, true},
		{"derived", derived, ErrReadFile, true},
		{"wrapped by fmt", fmt.Errorf("load: %w", derived), ErrReadFile, true},
		{"cause", derived, cause, true},
		{"other sentinel", derived, ErrGlob, false},
		{"derived target", ErrReadFile, derived, false},
		{"foreign type", ErrReadFile, errors.New("cannot read file"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}
