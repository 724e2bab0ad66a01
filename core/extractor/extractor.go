// Package extractor finds import specifiers in JavaScript and TypeScript
// source text. It is line oriented: statements spanning several lines are
// not reassembled.
//
// Side-effect imports such as import "./globals.css" have no from clause but
// still load a module, so they are reported as StaticImport too.
package extractor

import (
	"bufio"
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

var (
	// import x from "y", import { a, b } from 'y', import * as ns from "y",
	// import type { T } from "y" and the side-effect form import "y".
	staticImportPattern = regexp.MustCompile(`\bimport\s+(?:[\w$*{}\s,]+?\s+from\s*)?["']([^"'\n]+)["']`)

	// const x = require("y"), let { a } = require('y')
	requirePattern = regexp.MustCompile(`\b(?:const|let|var)\s+[\w${}\s,:]+?\s*=\s*require\s*\(\s*["']([^"'\n]+)["']\s*\)`)

	// import("y"), await import('y')
	dynamicImportPattern = regexp.MustCompile(`\bimport\s*\(\s*["']([^"'\n]+)["']\s*\)`)
)

type pattern struct {
	kind models.ReferenceKind
	re   *regexp.Regexp
}

var patterns = []pattern{
	{kind: models.StaticImport, re: staticImportPattern},
	{kind: models.Require, re: requirePattern},
	{kind: models.DynamicImport, re: dynamicImportPattern},
}

type match struct {
	column int
	kind   models.ReferenceKind
	path   string
}

// ExtractImports returns every reference in content in line order, and within
// a line in column order. References come back unresolved.
func ExtractImports(sourceFile string, content []byte) []models.ImportReference {
	refs := []models.ImportReference{}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		for _, m := range extractLine(scanner.Text()) {
			refs = append(refs, models.ImportReference{
				SourceFile: sourceFile,
				LineNumber: lineNumber,
				ImportPath: m.path,
				Kind:       m.kind,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("Stopped reading %s at line %d: %v", sourceFile, lineNumber, err)
	}

	logger.Debug("Extracted %d imports from %s", len(refs), sourceFile)
	return refs
}

// extractLine applies the three patterns to a single line.
func extractLine(line string) []match {
	if !strings.Contains(line, "import") && !strings.Contains(line, "require") {
		return nil
	}

	var found []match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			if p.kind == models.DynamicImport && precededByFrom(line[:loc[0]]) {
				continue
			}
			found = append(found, match{
				column: loc[0],
				kind:   p.kind,
				path:   line[loc[2]:loc[3]],
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].column < found[j].column })
	return found
}

func precededByFrom(prefix string) bool {
	return strings.HasSuffix(strings.TrimRight(prefix, " \t"), "from")
}
