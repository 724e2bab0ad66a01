package models

// ReportPayload is the JSON shape served to the dashboard and printed by
// `check --format json`.
type ReportPayload struct {
	ScannedFiles      int             `json:"scannedFiles" yaml:"scannedFiles"`
	TotalImports      int             `json:"totalImports" yaml:"totalImports"`
	UnresolvedImports []ImportPayload `json:"unresolvedImports" yaml:"unresolvedImports"`
	ResolvedImports   []ImportPayload `json:"resolvedImports" yaml:"resolvedImports"`
	Summary           SummaryPayload  `json:"summary" yaml:"summary"`
}

type ImportPayload struct {
	Source       string `json:"source" yaml:"source"`
	Line         int    `json:"line" yaml:"line"`
	ImportPath   string `json:"importPath" yaml:"importPath"`
	ImportType   string `json:"importType" yaml:"importType"`
	IsResolvable bool   `json:"isResolvable" yaml:"isResolvable"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

type SummaryPayload struct {
	TotalFiles      int `json:"totalFiles" yaml:"totalFiles"`
	TotalImports    int `json:"totalImports" yaml:"totalImports"`
	UnresolvedCount int `json:"unresolvedCount" yaml:"unresolvedCount"`
	ResolvedCount   int `json:"resolvedCount" yaml:"resolvedCount"`
}

// Payload converts the report into its wire shape.
func (sr *ScanReport) Payload() ReportPayload {
	return ReportPayload{
		ScannedFiles:      sr.ScannedFileCount,
		TotalImports:      sr.TotalImportCount,
		UnresolvedImports: toImportPayloads(sr.UnresolvedReferences),
		ResolvedImports:   toImportPayloads(sr.ResolvedReferences),
		Summary: SummaryPayload{
			TotalFiles:      sr.ScannedFileCount,
			TotalImports:    sr.TotalImportCount,
			UnresolvedCount: len(sr.UnresolvedReferences),
			ResolvedCount:   len(sr.ResolvedReferences),
		},
	}
}

func toImportPayloads(refs []ImportReference) []ImportPayload {
	out := make([]ImportPayload, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ImportPayload{
			Source:       ref.SourceFile,
			Line:         ref.LineNumber,
			ImportPath:   ref.ImportPath,
			ImportType:   ref.Kind.ImportType(),
			IsResolvable: ref.IsResolvable(),
			Error:        ref.ResolutionError,
		})
	}
	return out
}
