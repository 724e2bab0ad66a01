package fsprovider

import (
	"context"
	"fmt"

	"github.com/tristendillon/depcheck/core/models"
)

const (
	sampleFileCount      = 120
	sampleImportCount    = 543
	sampleMissingModule  = "@v0/lib/sanitize"
	sampleMissingReplace = "@/lib/sanitize"
)

// sampleModules are cycled through to give the sample report realistic specifiers.
var sampleModules = []string{
	"react",
	"next/link",
	"@/components/ui/button",
	"@/components/ui/card",
	"@/lib/utils",
	"./columns",
	"../hooks/use-toast",
	"lucide-react",
	"recharts",
	"@/lib/api/employees",
	"date-fns",
}

var sampleDirs = []string{
	"app/dashboard",
	"app/attendance",
	"app/payroll",
	"components/hr",
	"components/ui",
	"lib",
}

// Placeholder stands in for environments without file system access, such as
// a browser-hosted page. It never touches the disk and reports a fixed sample.
type Placeholder struct{}

func NewPlaceholder() *Placeholder { return &Placeholder{} }

func (Placeholder) Capable() bool { return false }

func (Placeholder) Root() string { return "" }

func (Placeholder) Stat(context.Context, string) (Info, error) {
	return Info{}, ErrNotCapable
}

func (Placeholder) ReadFile(context.Context, string) ([]byte, error) {
	return nil, ErrNotCapable
}

func (Placeholder) Walk(context.Context, WalkFunc) error {
	return ErrNotCapable
}

// SampleReport returns a new copy of the sample: 120 files, 543 imports and two
// unresolved references to a known-missing module.
func (Placeholder) SampleReport() *models.ScanReport {
	files := make([]string, sampleFileCount)
	files[0] = "components/hr/employee-form.tsx"
	files[1] = "app/payroll/export/page.tsx"
	for i := 2; i < sampleFileCount; i++ {
		dir := sampleDirs[i%len(sampleDirs)]
		files[i] = fmt.Sprintf("%s/module-%03d.tsx", dir, i)
	}

	report := models.NewScanReport()
	report.ScannedFileCount = sampleFileCount

	line := make([]int, sampleFileCount)
	for i := 0; i < sampleImportCount-2; i++ {
		fi := i % sampleFileCount
		line[fi]++
		ref := models.ImportReference{
			SourceFile: files[fi],
			LineNumber: line[fi],
			ImportPath: sampleModules[i%len(sampleModules)],
			Kind:       models.StaticImport,
		}
		ref.MarkResolved("")
		report.Add(ref)
	}

	for fi := 0; fi < 2; fi++ {
		line[fi]++
		ref := models.ImportReference{
			SourceFile: files[fi],
			LineNumber: line[fi],
			ImportPath: sampleMissingModule,
			Kind:       models.StaticImport,
		}
		ref.MarkUnresolved(models.KnownMissingMessage(sampleMissingModule, sampleMissingReplace))
		report.Add(ref)
	}

	return report
}
