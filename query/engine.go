// Package query answers "last N lines matching search/level" questions
// against a single log file.
package query

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"logviewer/formats"
	"logviewer/models"
)

// Result is the outcome of a query. A degraded result carries a single
// diagnostic record in Records and the underlying failure in Err.
type Result struct {
	Records []models.LogRecord
	Err     error
}

// Degraded reports whether the records describe a read failure rather than
// the file's content.
func (r Result) Degraded() bool {
	return r.Err != nil
}

// ReadError describes an I/O failure on an existing file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Engine reads, parses and filters the tail window of log files. It holds
// no per-query state and is safe for concurrent use.
type Engine struct {
	parser formats.LineParser
}

// NewEngine creates a query engine. A nil parser selects RFC3164.
func NewEngine(parser formats.LineParser) *Engine {
	if parser == nil {
		parser = formats.NewRFC3164Parser()
	}
	return &Engine{parser: parser}
}

// Query returns the records among the last f.LineLimit lines of the file at
// path that pass both filters, oldest first. A missing file gives an empty
// result; any other read failure gives a degraded result.
func (e *Engine) Query(path string, f models.QueryFilter) Result {
	f = f.Normalize(models.DefaultLineLimit, 0)

	lines, err := readTail(path, f.LineLimit)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Records: []models.LogRecord{}}
		}
		return Result{
			Records: []models.LogRecord{diagnostic(err)},
			Err:     &ReadError{Path: path, Err: err},
		}
	}

	search := strings.ToLower(f.Search)
	level := strings.ToLower(f.Level)

	records := make([]models.LogRecord, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		record := e.parser.Parse(line)
		raw := strings.ToLower(record.Raw)

		if search != "" && !strings.Contains(raw, search) {
			continue
		}
		if level != "" && !strings.Contains(raw, level) {
			continue
		}

		records = append(records, record)
	}

	return Result{Records: records}
}

// readTail returns at most limit trailing lines of the file, in order.
func readTail(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return tail(file, limit)
}

// tail keeps the last limit lines of r in a ring buffer, so memory stays
// bounded by the window rather than the file size.
func tail(r io.Reader, limit int) ([]string, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	ring := make([]string, 0, min(limit, 1024))
	next := 0

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if len(ring) < limit {
				ring = append(ring, line)
			} else {
				ring[next] = line
				next = (next + 1) % limit
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if len(ring) < limit || next == 0 {
		return ring, nil
	}
	ordered := make([]string, 0, len(ring))
	ordered = append(ordered, ring[next:]...)
	return append(ordered, ring[:next]...), nil
}

// diagnostic builds the synthetic record that stands in for a failed read.
// The path is left out of the message so absolute paths never reach clients.
func diagnostic(err error) models.LogRecord {
	cause := err
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		cause = pathErr.Err
	}
	return models.LogRecord{
		Message: "Error reading file: " + cause.Error(),
	}
}
