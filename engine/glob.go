package engine

import (
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// hasWildcard reports whether word is a file pattern. Words containing
// whitespace are never patterns, so command lines such as "rm -f *.o" pass
// through unchanged.
func hasWildcard(word string) bool {
	return strings.ContainsAny(word, "*?") && !strings.ContainsAny(word, " \t\r\n")
}

// expandGlob returns the files of fsys matching pattern, in directory order.
//
// Patterns are matched one path segment at a time. A segment of "**" matches
// zero or more directories, and a segment containing "**" with other text
// (such as "**.cpp") matches file names at any depth below. Names beginning
// with "." only match segments that also begin with ".". A pattern without
// any match expands to nothing.
func expandGlob(fsys fs.FS, pattern string) ([]string, error) {
	segs := strings.Split(path.Clean(pattern), "/")

	m := &globber{fsys: fsys, seen: map[string]struct{}{}}
	if err := m.walk(".", segs); err != nil {
		return nil, ErrGlob.Wrap(err).With(slog.String("pattern", pattern))
	}

	return m.matches, nil
}

type globber struct {
	fsys    fs.FS
	matches []string
	seen    map[string]struct{}
}

func (g *globber) add(name string) {
	if _, ok := g.seen[name]; ok {
		return
	}

	g.seen[name] = struct{}{}
	g.matches = append(g.matches, name)
}

func (g *globber) walk(dir string, segs []string) error {
	seg, rest := segs[0], segs[1:]
	last := len(rest) == 0

	switch {
	case seg == "**":
		if last {
			return g.descend(dir, nil)
		}

		if err := g.walk(dir, rest); err != nil {
			return err
		}

		return g.descend(dir, rest)

	case strings.Contains(seg, "**"):
		pat, err := glob.Compile(strings.ReplaceAll(seg, "**", "*"))
		if err != nil {
			return err
		}

		return g.deep(dir, seg, pat, rest)

	case !strings.ContainsAny(seg, "*?["):
		name := join(dir, seg)

		info, err := fs.Stat(g.fsys, name)
		if err != nil {
			return nil //nolint:nilerr // missing literal segments match nothing
		}

		switch {
		case last && !info.IsDir():
			g.add(name)
		case !last && info.IsDir():
			return g.walk(name, rest)
		}

		return nil
	}

	pat, err := glob.Compile(seg)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(g.fsys, dir)
	if err != nil {
		return nil //nolint:nilerr // unreadable directories match nothing
	}

	for _, e := range entries {
		if !visible(e.Name(), seg) || !pat.Match(e.Name()) {
			continue
		}

		name := join(dir, e.Name())

		switch {
		case last && !e.IsDir():
			g.add(name)
		case !last && e.IsDir():
			if err := g.walk(name, rest); err != nil {
				return err
			}
		}
	}

	return nil
}

// descend applies rest in every directory below dir. With no rest it
// collects every file below dir.
func (g *globber) descend(dir string, rest []string) error {
	entries, err := fs.ReadDir(g.fsys, dir)
	if err != nil {
		return nil //nolint:nilerr
	}

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}

		name := join(dir, e.Name())

		if !e.IsDir() {
			if rest == nil {
				g.add(name)
			}

			continue
		}

		if rest != nil {
			if err := g.walk(name, rest); err != nil {
				return err
			}
		}

		if err := g.descend(name, rest); err != nil {
			return err
		}
	}

	return nil
}

// deep matches seg against names at any depth below dir.
func (g *globber) deep(dir, seg string, pat glob.Glob, rest []string) error {
	entries, err := fs.ReadDir(g.fsys, dir)
	if err != nil {
		return nil //nolint:nilerr
	}

	for _, e := range entries {
		if !visible(e.Name(), seg) {
			continue
		}

		name := join(dir, e.Name())

		if pat.Match(e.Name()) {
			switch {
			case len(rest) == 0 && !e.IsDir():
				g.add(name)
			case len(rest) > 0 && e.IsDir():
				if err := g.walk(name, rest); err != nil {
					return err
				}
			}
		}

		if e.IsDir() {
			if err := g.deep(name, seg, pat, rest); err != nil {
				return err
			}
		}
	}

	return nil
}

func visible(name, seg string) bool {
	return !strings.HasPrefix(name, ".") || strings.HasPrefix(seg, ".")
}

func join(dir, name string) string {
	if dir == "." {
		return name
	}

	return dir + "/" + name
}
