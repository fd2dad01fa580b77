package domain

import "unique"

// InternedString is a canonical handle for a repeated string such as a task name
// or a glob. Equal strings compare equal as handles and share one allocation.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// NewInternedStrings interns every element of names.
func NewInternedStrings(names []string) []InternedString {
	out := make([]InternedString, len(names))
	for i, name := range names {
		out[i] = NewInternedString(name)
	}
	return out
}

// Strings is the inverse of NewInternedStrings. The result is never nil.
func Strings(handles []InternedString) []string {
	out := make([]string, len(handles))
	for i, h := range handles {
		out[i] = h.String()
	}
	return out
}

// IsZero reports whether the value was never interned.
func (is InternedString) IsZero() bool {
	return is.h == unique.Handle[string]{}
}

func (is InternedString) String() string {
	if is.IsZero() {
		return ""
	}
	return is.h.Value()
}

// Value exposes the handle for use as a map key.
func (is InternedString) Value() unique.Handle[string] {
	return is.h
}

// MarshalText encodes the plain string, so YAML and JSON documents stay readable.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText interns the decoded text.
func (is *InternedString) UnmarshalText(text []byte) error {
	*is = NewInternedString(string(text))
	return nil
}
