package models

import "fmt"

// SpecifierShape classifies an import specifier by the resolution rule that
// applies to it.
type SpecifierShape int

const (
	ShapePackage SpecifierShape = iota
	ShapeRelative
	ShapeAliased
	ShapeKnownMissing
)

func (s SpecifierShape) String() string {
	switch s {
	case ShapePackage:
		return "package"
	case ShapeRelative:
		return "relative"
	case ShapeAliased:
		return "alias"
	case ShapeKnownMissing:
		return "known-missing"
	default:
		return "unknown"
	}
}

// KnownMissingMessage is the resolution error for a denylisted specifier.
func KnownMissingMessage(specifier, replacement string) string {
	return fmt.Sprintf("known missing module: %s (replace with %s)", specifier, replacement)
}
