package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders reports as JSON documents
type JSONFormatter struct {
	indent bool
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render encodes the report
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
