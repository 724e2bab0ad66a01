package models

import "fmt"

// ReferenceKind identifies the syntactic form that produced an import reference.
type ReferenceKind int

const (
	StaticImport ReferenceKind = iota
	Require
	DynamicImport
)

func (k ReferenceKind) String() string {
	switch k {
	case StaticImport:
		return "StaticImport"
	case Require:
		return "Require"
	case DynamicImport:
		return "DynamicImport"
	default:
		return "Unknown"
	}
}

// ImportType is the name used for the kind in the JSON report contract.
func (k ReferenceKind) ImportType() string {
	switch k {
	case StaticImport:
		return "import"
	case Require:
		return "require"
	case DynamicImport:
		return "dynamic-import"
	default:
		return "unknown"
	}
}

// ImportReference is one import, require or dynamic import found in a source file.
type ImportReference struct {
	SourceFile string // project-relative, slash separated
	LineNumber int    // 1-based
	ImportPath string
	Kind       ReferenceKind

	// Resolvable is nil until the resolver has run.
	Resolvable      *bool
	ResolutionError string

	// Target is the project-relative path the resolver matched for local
	// specifiers. Empty for packages and unresolved references.
	Target string
}

// IsResolvable reports whether the reference was resolved successfully.
func (r *ImportReference) IsResolvable() bool {
	return r.Resolvable != nil && *r.Resolvable
}

// MarkResolved records a successful resolution to target.
func (r *ImportReference) MarkResolved(target string) {
	ok := true
	r.Resolvable = &ok
	r.ResolutionError = ""
	r.Target = target
}

// MarkUnresolved records a failed resolution with a reason.
func (r *ImportReference) MarkUnresolved(reason string) {
	ok := false
	r.Resolvable = &ok
	r.ResolutionError = reason
	r.Target = ""
}

// Location formats the reference as file:line.
func (r *ImportReference) Location() string {
	return fmt.Sprintf("%s:%d", r.SourceFile, r.LineNumber)
}
