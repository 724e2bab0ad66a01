package models

// ScanReport is the aggregate result of one project scan. It is built once by
// the scanner and treated as read-only afterwards.
type ScanReport struct {
	ScannedFileCount     int
	TotalImportCount     int
	ResolvedReferences   []ImportReference
	UnresolvedReferences []ImportReference
}

// NewScanReport returns an empty report.
func NewScanReport() *ScanReport {
	return &ScanReport{
		ResolvedReferences:   []ImportReference{},
		UnresolvedReferences: []ImportReference{},
	}
}

// Add files a resolved reference into the matching partition.
func (sr *ScanReport) Add(ref ImportReference) {
	if ref.IsResolvable() {
		sr.ResolvedReferences = append(sr.ResolvedReferences, ref)
	} else {
		sr.UnresolvedReferences = append(sr.UnresolvedReferences, ref)
	}
	sr.TotalImportCount++
}

func (sr *ScanReport) ResolvedCount() int {
	return len(sr.ResolvedReferences)
}

func (sr *ScanReport) UnresolvedCount() int {
	return len(sr.UnresolvedReferences)
}

// HasUnresolved reports whether any reference failed to resolve.
func (sr *ScanReport) HasUnresolved() bool {
	return len(sr.UnresolvedReferences) > 0
}

// All returns every reference in discovery order within each partition,
// resolved first.
func (sr *ScanReport) All() []ImportReference {
	all := make([]ImportReference, 0, sr.TotalImportCount)
	all = append(all, sr.ResolvedReferences...)
	all = append(all, sr.UnresolvedReferences...)
	return all
}

// Clone returns a deep copy so callers can never mutate a shared report.
func (sr *ScanReport) Clone() *ScanReport {
	out := &ScanReport{
		ScannedFileCount:     sr.ScannedFileCount,
		TotalImportCount:     sr.TotalImportCount,
		ResolvedReferences:   cloneRefs(sr.ResolvedReferences),
		UnresolvedReferences: cloneRefs(sr.UnresolvedReferences),
	}
	return out
}

func cloneRefs(refs []ImportReference) []ImportReference {
	out := make([]ImportReference, len(refs))
	for i, ref := range refs {
		out[i] = ref
		if ref.Resolvable != nil {
			v := *ref.Resolvable
			out[i].Resolvable = &v
		}
	}
	return out
}
