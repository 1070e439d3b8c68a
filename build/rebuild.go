package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"time"
)

// decide reports whether the commands of r must run. In clean and rebuild
// mode the outputs of r are removed first.
func (s *Scheduler) decide(ctx context.Context, r *Rule) bool {
	switch s.mode {
	case ModeClean:
		s.clean(ctx, r, true)

		return false
	case ModeRebuild:
		s.clean(ctx, r, false)

		return true
	}

	if r.dirty {
		return true
	}

	return outdated(s.fs, r.Input, r.Output)
}

// outdated reports whether any input is newer than the oldest output. A
// missing file or an empty output list counts as outdated. Equal timestamps
// do not.
func outdated(fsys FileSystem, inputs, outputs []string) bool {
	if len(outputs) == 0 {
		return true
	}

	var oldest time.Time

	for i, out := range outputs {
		t, err := fsys.ModTime(out)
		if err != nil {
			return true
		}

		if i == 0 || t.Before(oldest) {
			oldest = t
		}
	}

	for _, in := range inputs {
		t, err := fsys.ModTime(in)
		if err != nil || t.After(oldest) {
			return true
		}
	}

	return false
}

// clean removes the outputs of r. With prune, parent directories left empty
// are removed too.
func (s *Scheduler) clean(ctx context.Context, r *Rule, prune bool) {
	for _, out := range r.Output {
		err := s.fs.Remove(out)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "cannot remove output",
				slog.String("rule", r.Name),
				slog.String("output", out),
				slog.Any("error", err),
			)
		}

		if !prune {
			continue
		}

		for dir := path.Dir(filepath.ToSlash(out)); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if s.fs.RemoveDir(dir) != nil {
				break
			}
		}
	}
}
