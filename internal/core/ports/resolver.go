package ports

// InputResolver expands glob patterns into concrete files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns the sorted, de-duplicated absolute paths of the regular files
	// matched by patterns under root. Patterns starting with "!" exclude matches.
	// A pattern that matches nothing is not an error.
	ResolveInputs(patterns []string, root string) ([]string, error)
}
