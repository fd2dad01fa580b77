package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface with gobwas/glob patterns.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Pattern is a compiled root-relative glob.
type Pattern struct {
	raw     string
	exclude bool
	globs   []glob.Glob
}

// CompilePattern compiles a glob written relative to the project root. A leading "!"
// marks an exclusion. Matching is done on slash separated root-relative paths.
func CompilePattern(raw string) (Pattern, error) {
	exclude := domain.IsExclude(raw)
	clean := normalizePattern(raw)

	variants := expandGlobstar(clean)
	globs := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return Pattern{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidGlob.Error()), "pattern", raw)
		}
		globs = append(globs, g)
	}

	return Pattern{raw: clean, exclude: exclude, globs: globs}, nil
}

// expandGlobstar lets every "**/" segment also match zero directories, so that
// "src/**/*.scss" matches "src/style.scss".
func expandGlobstar(p string) []string {
	for i := 0; i+3 <= len(p); i++ {
		if p[i:i+3] != "**/" || (i > 0 && p[i-1] != '/') {
			continue
		}
		var out []string
		for _, rest := range expandGlobstar(p[i+3:]) {
			out = append(out, p[:i+3]+rest, p[:i]+rest)
		}
		return out
	}
	return []string{p}
}

// Match reports whether the slash separated root-relative path matches.
func (p Pattern) Match(rel string) bool {
	return slices.ContainsFunc(p.globs, func(g glob.Glob) bool { return g.Match(rel) })
}

// Exclude reports whether the pattern was negated.
func (p Pattern) Exclude() bool {
	return p.exclude
}

// String returns the normalized pattern without its "!" prefix.
func (p Pattern) String() string {
	return p.raw
}

func normalizePattern(raw string) string {
	p := strings.TrimPrefix(raw, domain.ExcludePrefix)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[{")
}

// ResolveInputs resolves the given patterns to the sorted absolute paths of the regular
// files they match under root. Exclusions apply to the union of all inclusions.
// A pattern that matches nothing contributes nothing.
func (r *Resolver) ResolveInputs(patterns []string, root string) ([]string, error) {
	var includes, excludes []Pattern
	for _, raw := range patterns {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}
		if p.exclude {
			excludes = append(excludes, p)
		} else {
			includes = append(includes, p)
		}
	}

	uniquePaths := make(map[string]bool)
	for _, p := range includes {
		for _, rel := range r.match(p, root) {
			if slices.ContainsFunc(excludes, func(e Pattern) bool { return e.Match(rel) }) {
				continue
			}
			uniquePaths[filepath.Join(root, filepath.FromSlash(rel))] = true
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}

// match returns the root-relative slash paths matched by p.
func (r *Resolver) match(p Pattern, root string) []string {
	if isLiteral(p.raw) {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(p.raw)))
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		return []string{p.raw}
	}

	base := domain.GlobBase(p.raw)
	walkRoot := root
	if base != "." {
		walkRoot = filepath.Join(root, filepath.FromSlash(base))
	}

	var matches []string
	for path := range r.walker.WalkFiles(walkRoot, nil) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if p.Match(rel) {
			matches = append(matches, rel)
		}
	}
	return matches
}
