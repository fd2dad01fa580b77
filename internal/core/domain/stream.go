package domain

import "strings"

// Stream is an ordered list of transform steps applied to the files matched by Src.
type Stream struct {
	// Src holds glob patterns relative to the project root. A leading "!" excludes.
	Src []string
	// Base is the directory that relative output paths are computed from.
	// When empty it is derived from the first positive pattern.
	Base  string
	Steps []StepSpec
}

// StepSpec names a transform and carries its free-form options.
type StepSpec struct {
	Use  string
	With map[string]any
}

// ExcludePrefix marks a negated source pattern.
const ExcludePrefix = "!"

// IsExclude reports whether pattern is a negated source pattern.
func IsExclude(pattern string) bool {
	return strings.HasPrefix(pattern, ExcludePrefix)
}

// GlobBase returns the static directory prefix of a glob pattern,
// i.e. everything up to the last separator before the first meta character.
func GlobBase(pattern string) string {
	pattern = strings.TrimPrefix(pattern, ExcludePrefix)
	pattern = strings.TrimPrefix(pattern, "./")

	idx := strings.IndexAny(pattern, "*?[{")
	if idx < 0 {
		// A literal path: its base is the containing directory.
		if slash := strings.LastIndex(pattern, "/"); slash >= 0 {
			return pattern[:slash]
		}
		return "."
	}

	prefix := pattern[:idx]
	slash := strings.LastIndex(prefix, "/")
	if slash < 0 {
		return "."
	}
	if slash == 0 {
		return "/"
	}
	return prefix[:slash]
}

// ResolveBase returns the stream base, falling back to the base of the first positive pattern.
func (s *Stream) ResolveBase() string {
	if s.Base != "" {
		return s.Base
	}
	for _, p := range s.Src {
		if !IsExclude(p) {
			return GlobBase(p)
		}
	}
	return "."
}

// FailOnErrorOption is the step option that turns per-file errors into task failures.
const FailOnErrorOption = "failOnError"

// FailOnError reports whether a per-file error of this step fails the task
// instead of dropping the file.
func (s StepSpec) FailOnError() bool {
	v, ok := s.With[FailOnErrorOption].(bool)
	return ok && v
}
