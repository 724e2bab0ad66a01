package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/resolver"
)

func init() {
	color.NoColor = true
}

func classifier() Classifier {
	return resolver.New(fsprovider.NewPlaceholder(), config.Default())
}

func unresolved(file string, line int, spec, reason string) models.ImportReference {
	ref := models.ImportReference{SourceFile: file, LineNumber: line, ImportPath: spec}
	ref.MarkUnresolved(reason)
	return ref
}

func failingReport(n int) *models.ScanReport {
	r := models.NewScanReport()
	r.ScannedFileCount = n
	for i := 1; i <= n; i++ {
		spec := fmt.Sprintf("./missing-%d", i)
		r.Add(unresolved("app/page.tsx", i, spec, "cannot resolve relative module: "+spec))
	}
	return r
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteJSONMatchesContract(t *testing.T) {
	r := fsprovider.NewPlaceholder().SampleReport()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.EqualValues(t, 120, payload["scannedFiles"])
	assert.EqualValues(t, 543, payload["totalImports"])

	summary := payload["summary"].(map[string]any)
	assert.EqualValues(t, 120, summary["totalFiles"])
	assert.EqualValues(t, 543, summary["totalImports"])
	assert.EqualValues(t, 2, summary["unresolvedCount"])
	assert.EqualValues(t, 541, summary["resolvedCount"])

	first := payload["unresolvedImports"].([]any)[0].(map[string]any)
	assert.Equal(t, "components/hr/employee-form.tsx", first["source"])
	assert.Equal(t, "@v0/lib/sanitize", first["importPath"])
	assert.Equal(t, "import", first["importType"])
	assert.Equal(t, false, first["isResolvable"])
	assert.Contains(t, first["error"], "@/lib/sanitize")

	resolved := payload["resolvedImports"].([]any)[0].(map[string]any)
	_, hasError := resolved["error"]
	assert.False(t, hasError)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, failingReport(2)))

	var payload models.ReportPayload
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, 2, payload.Summary.UnresolvedCount)
	assert.Equal(t, "./missing-1", payload.UnresolvedImports[0].ImportPath)
	assert.Empty(t, payload.ResolvedImports)
}

func TestTextAllResolved(t *testing.T) {
	r := models.NewScanReport()
	r.ScannedFileCount = 1200
	for i := 0; i < 1500; i++ {
		ref := models.ImportReference{SourceFile: "a.ts", LineNumber: i + 1, ImportPath: "react"}
		ref.MarkResolved("")
		r.Add(ref)
	}

	var buf bytes.Buffer
	NewPrinter(&buf, classifier()).Text(r, TextOptions{Hints: true, Elapsed: 250 * time.Millisecond})
	out := buf.String()

	assert.Contains(t, out, "Files scanned")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "250 ms")
	assert.Contains(t, out, "All 1,500 imports resolve")
	assert.NotContains(t, out, "How to fix")
}

func TestUnresolvedListingIsTruncated(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, classifier()).Unresolved(failingReport(8), PrebuildLimit)
	out := buf.String()

	assert.Contains(t, out, "app/page.tsx:5  ./missing-5")
	assert.NotContains(t, out, "./missing-6")
	assert.Contains(t, out, "... and 3 more")
}

func TestUnresolvedListingUnlimited(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, classifier()).Unresolved(failingReport(8), 0)
	out := buf.String()

	assert.Contains(t, out, "app/page.tsx:8  ./missing-8")
	assert.Contains(t, out, "cannot resolve relative module: ./missing-8")
	assert.NotContains(t, out, "more")
}

func TestHintsKeyedByShape(t *testing.T) {
	r := models.NewScanReport()
	r.Add(unresolved("a.ts", 1, "./b", "cannot resolve relative module: ./b"))
	r.Add(unresolved("a.ts", 2, "./c", "cannot resolve relative module: ./c"))
	r.Add(unresolved("a.ts", 3, "@/lib/x", "cannot resolve aliased module: @/lib/x"))
	r.Add(unresolved("a.ts", 4, "@v0/lib/sanitize", models.KnownMissingMessage("@v0/lib/sanitize", "@/lib/sanitize")))
	r.Add(unresolved("b.ts", 1, "@v0/lib/sanitize", models.KnownMissingMessage("@v0/lib/sanitize", "@/lib/sanitize")))

	var buf bytes.Buffer
	NewPrinter(&buf, classifier()).Hints(r)
	out := buf.String()

	assert.Contains(t, out, "How to fix:")
	assert.Equal(t, 1, strings.Count(out, "Relative imports"))
	assert.Equal(t, 1, strings.Count(out, "Aliased imports"))
	assert.Equal(t, 1, strings.Count(out, "Replace imports of @v0/lib/sanitize with @/lib/sanitize."))
	assert.NotContains(t, out, "Bare package")
	assert.Less(t, strings.Index(out, "Relative"), strings.Index(out, "Aliased"))
}

func TestTextFailingReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, classifier()).Text(failingReport(1), TextOptions{Hints: true})
	out := buf.String()

	assert.Contains(t, out, "1 unresolved import\n")
	assert.Contains(t, out, "app/page.tsx:1")
	assert.Contains(t, out, "How to fix:")
	assert.NotContains(t, out, "Elapsed")
}
