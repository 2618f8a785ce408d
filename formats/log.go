package formats

import (
	"fmt"
	"strings"

	"logviewer/models"
)

// LineParser defines an interface for turning one log line into a LogRecord.
type LineParser interface {
	// Parse converts a non-blank line into a LogRecord. It never fails:
	// lines that do not match the parser's grammar come back as raw-only
	// records.
	Parse(line string) models.LogRecord

	// Name returns the name of the log format this parser handles.
	Name() string
}

const (
	NameRFC3164 = "rfc3164"
	NameRaw    = "raw"
)

// ParserByName returns the parser registered for a format name.
func ParserByName(name string) (LineParser, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameRFC3164:
		return NewRFC3164Parser(), nil
	case NameRaw:
		return RawParser{}, nil
	default:
		return nil, fmt.Errorf("unknown line format %q", name)
	}
}

// RawParser keeps every line unstructured.
type RawParser struct{}

func (RawParser) Name() string { return NameRaw }

func (RawParser) Parse(line string) models.LogRecord {
	return rawRecord(strings.TrimSpace(line))
}

// rawRecord is the fallback for lines that did not match a grammar.
func rawRecord(trimmed string) models.LogRecord {
	return models.LogRecord{
		Message: trimmed,
		Raw:     trimmed,
	}
}
