package template_engine

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"text/template"
	"time"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/logger"
)

//go:embed templates
var TemplateFS embed.FS

var ErrOutputExists = errors.New("output file already exists")

type TemplateRef struct {
	Path string
}

// ConfigTemplate renders a commented depcheck.yaml from ConfigData.
var ConfigTemplate = TemplateRef{Path: "depcheck.yaml.tmpl"}

type ConfigData struct {
	Version string
	Config  *config.Config
}

type TemplateEngine struct {
	funcMap template.FuncMap
}

func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"quote":    strconv.Quote,
		"duration": func(d time.Duration) string { return d.String() },
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{funcMap: getDefaultFuncMap()}
}

// Render executes the template and returns the output.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) ([]byte, error) {
	templatePath := path.Join("templates", templateRef.Path)
	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(path.Base(templateRef.Path)).
		Funcs(te.funcMap).
		Option("missingkey=error").
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateRef.Path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}
	return buf.Bytes(), nil
}

// GenerateFile renders the template into outputPath. An existing file is
// only replaced when overwrite is set.
func (te *TemplateEngine) GenerateFile(templateRef TemplateRef, outputPath string, data interface{}, overwrite bool) error {
	if _, err := os.Stat(outputPath); err == nil && !overwrite {
		return fmt.Errorf("%w: %s", ErrOutputExists, outputPath)
	}

	content, err := te.Render(templateRef, data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	logger.Debug("Generated %s from %s", outputPath, templateRef.Path)
	return nil
}
