package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tristendillon/depcheck/core/models"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (expected text, json or yaml)", ErrUnknownFormat, s)
	}
}

// WriteJSON writes the wire payload of the report, indented.
func WriteJSON(w io.Writer, r *models.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Payload()); err != nil {
		return fmt.Errorf("failed to encode report as json: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, r *models.ScanReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Payload()); err != nil {
		return fmt.Errorf("failed to encode report as yaml: %w", err)
	}
	return enc.Close()
}
