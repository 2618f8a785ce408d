package models

import (
	"time"
)

// LogRecord represents one parsed line of a syslog file.
// It's used both by the query engine and for API responses.
type LogRecord struct {
	// Structural fields. Either all four are set (the line matched the
	// syslog grammar) or all four are empty and Message holds the raw line.
	Timestamp string `json:"timestamp"` // raw token, e.g. "Jan  5 10:00:00"
	Hostname  string `json:"hostname"`
	Tag       string `json:"tag"`
	Message   string `json:"message"`

	Raw string `json:"raw"` // the original line, trimmed

	// Decoded from a leading <PRI> on lines that matched the grammar
	Priority *Priority `json:"priority,omitempty"`
}

// Structured reports whether the line matched the syslog grammar.
func (r LogRecord) Structured() bool {
	return r.Tag != ""
}

// LogFile is a discovered log file under the configured root.
type LogFile struct {
	RelativePath string    `json:"path"`
	AbsolutePath string    `json:"-"` // used for reads only, never sent to clients
	SizeBytes    int64     `json:"size"`
	ModifiedAt   time.Time `json:"modified"`
}

// QueryFilter holds the per-request query parameters.
type QueryFilter struct {
	LineLimit int    // size of the tail window
	Search    string // case-insensitive substring of the raw line
	Level     string // case-insensitive substring of the raw line
}

// DefaultLineLimit is used when a query does not specify a positive limit.
const DefaultLineLimit = 100

// Normalize replaces a non-positive limit with defaultLimit and clamps
// the limit to maxLimit when maxLimit is positive.
func (f QueryFilter) Normalize(defaultLimit, maxLimit int) QueryFilter {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLineLimit
	}
	if f.LineLimit <= 0 {
		f.LineLimit = defaultLimit
	}
	if maxLimit > 0 && f.LineLimit > maxLimit {
		f.LineLimit = maxLimit
	}
	return f
}

// Stats summarizes the discovered log files.
type Stats struct {
	FileCount      int     `json:"total_files"`
	TotalBytes     int64   `json:"total_size"`
	TotalMegabytes float64 `json:"total_size_mb"`
}
