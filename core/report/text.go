package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tristendillon/depcheck/core/models"
)

// PrebuildLimit is how many unresolved imports the prebuild gate lists.
const PrebuildLimit = 5

// Classifier tells the printer which resolution rule applied to a specifier.
// The resolver satisfies it.
type Classifier interface {
	Shape(specifier string) models.SpecifierShape
	Replacement(specifier string) (string, bool)
}

type TextOptions struct {
	// Limit caps the unresolved listing. Zero lists everything.
	Limit   int
	Elapsed time.Duration
	Hints   bool
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	locColor  = color.New(color.FgCyan)
	dimColor  = color.New(color.FgHiBlack)
)

type Printer struct {
	out        io.Writer
	classifier Classifier
}

func NewPrinter(out io.Writer, classifier Classifier) *Printer {
	return &Printer{out: out, classifier: classifier}
}

// Text prints the summary table, the status line and, when something failed,
// the unresolved listing and the remediation hints.
func (p *Printer) Text(r *models.ScanReport, opts TextOptions) {
	p.Summary(r, opts.Elapsed)
	p.Status(r)
	if !r.HasUnresolved() {
		return
	}
	p.Unresolved(r, opts.Limit)
	if opts.Hints {
		p.Hints(r)
	}
}

func (p *Printer) Summary(r *models.ScanReport, elapsed time.Duration) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Import check")
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"Files scanned", humanize.Comma(int64(r.ScannedFileCount))},
		{"Total imports", humanize.Comma(int64(r.TotalImportCount))},
		{"Resolved", humanize.Comma(int64(r.ResolvedCount()))},
		{"Unresolved", humanize.Comma(int64(r.UnresolvedCount()))},
	})
	if elapsed > 0 {
		tbl.AppendRow(table.Row{"Elapsed", humanize.SIWithDigits(elapsed.Seconds(), 1, "s")})
	}
	fmt.Fprintln(p.out, tbl.Render())
}

func (p *Printer) Status(r *models.ScanReport) {
	if !r.HasUnresolved() {
		okColor.Fprintf(p.out, "All %s imports resolve\n", humanize.Comma(int64(r.TotalImportCount)))
		return
	}
	failColor.Fprintf(p.out, "%s unresolved %s\n",
		humanize.Comma(int64(r.UnresolvedCount())), plural(r.UnresolvedCount(), "import", "imports"))
}

// Unresolved lists failing references as file:line followed by the reason.
// With a positive limit the rest is collapsed into "... and N more".
func (p *Printer) Unresolved(r *models.ScanReport, limit int) {
	refs := r.UnresolvedReferences
	shown := len(refs)
	if limit > 0 && shown > limit {
		shown = limit
	}

	fmt.Fprintln(p.out)
	for _, ref := range refs[:shown] {
		fmt.Fprintf(p.out, "  %s  %s\n", locColor.Sprint(ref.Location()), ref.ImportPath)
		fmt.Fprintf(p.out, "      %s\n", dimColor.Sprint(ref.ResolutionError))
	}
	if rest := len(refs) - shown; rest > 0 {
		fmt.Fprintf(p.out, "  ... and %d more\n", rest)
	}
}

// Hints prints one remediation hint per specifier shape seen among the
// unresolved references, in order of first appearance.
func (p *Printer) Hints(r *models.ScanReport) {
	if p.classifier == nil {
		return
	}

	seen := make(map[models.SpecifierShape]bool)
	missing := make(map[string]bool)
	var lines []string

	for _, ref := range r.UnresolvedReferences {
		shape := p.classifier.Shape(ref.ImportPath)
		if shape == models.ShapeKnownMissing {
			if missing[ref.ImportPath] {
				continue
			}
			missing[ref.ImportPath] = true
			replacement, _ := p.classifier.Replacement(ref.ImportPath)
			lines = append(lines, fmt.Sprintf("Replace imports of %s with %s.", ref.ImportPath, replacement))
			continue
		}
		if seen[shape] {
			continue
		}
		seen[shape] = true
		lines = append(lines, hintFor(shape))
	}

	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "How to fix:")
	for _, line := range lines {
		fmt.Fprintf(p.out, "  - %s\n", line)
	}
}

func hintFor(shape models.SpecifierShape) string {
	switch shape {
	case models.ShapeAliased:
		return "Aliased imports resolve against the alias base directory. Check the target file exists there and the casing matches."
	case models.ShapeRelative:
		return "Relative imports resolve from the importing file. Extensionless paths are tried with each resolve extension and as a directory index."
	default:
		return "Bare package imports must be installed. Add the package to package.json and reinstall."
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
