package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// OutputFormatTable renders a bordered table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatPlain renders kubectl-style columns for piping.
	OutputFormatPlain OutputFormat = "plain"
	// OutputFormatJSON prints the raw data as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML prints the raw data as YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidateOutputFormat returns an error for unsupported format names.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatPlain, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, plain, json, yaml)", format)
	}
}

// Printer writes command results in the selected format.
type Printer struct {
	Out       io.Writer
	Format    OutputFormat
	NoHeaders bool
}

// Structured reports whether the printer emits machine-readable data.
func (p *Printer) Structured() bool {
	return p.Format == OutputFormatJSON || p.Format == OutputFormatYAML
}

// Data writes v as JSON or YAML. It returns false for the table formats,
// in which case the caller renders its own view.
func (p *Printer) Data(v any) (bool, error) {
	switch p.Format {
	case OutputFormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	}
	return false, nil
}

// Table starts a table in the printer's format.
func (p *Printer) Table(headers ...string) *Table {
	return NewTable(p.Out, p.Format == OutputFormatPlain, p.NoHeaders, headers...)
}
