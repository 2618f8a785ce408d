package formats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"logviewer/models"
)

var (
	// Example: <34>Oct 11 22:14:15 mymachine su: 'su root' failed
	// The priority prefix is optional and does not feed the structural fields.
	rfc3164Regex = regexp.MustCompile(`^(?:<(?P<pri>\d{1,3})>)?(?P<ts>\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})\s+(?P<host>\S+)\s+(?P<tag>\S+?):\s*(?P<msg>.*)$`)

	priIndex  = rfc3164Regex.SubexpIndex("pri")
	tsIndex   = rfc3164Regex.SubexpIndex("ts")
	hostIndex = rfc3164Regex.SubexpIndex("host")
	tagIndex  = rfc3164Regex.SubexpIndex("tag")
	msgIndex  = rfc3164Regex.SubexpIndex("msg")
)

// RFC3164Parser parses BSD syslog lines as written by remote syslog collectors.
type RFC3164Parser struct{}

func NewRFC3164Parser() *RFC3164Parser { return &RFC3164Parser{} }

func (p *RFC3164Parser) Name() string { return NameRFC3164 }

func (p *RFC3164Parser) Parse(line string) models.LogRecord {
	return ParseLine(line)
}

// ParseLine parses an RFC3164 (BSD) syslog line into a LogRecord.
// Best-effort: the structural match is all-or-nothing, and anything that
// does not match (or blows up while matching) falls back to a record whose
// Message is the trimmed line.
func ParseLine(line string) (record models.LogRecord) {
	trimmed := strings.TrimSpace(line)

	defer func() {
		if r := recover(); r != nil {
			record = rawRecord(trimmed)
		}
	}()

	m := rfc3164Regex.FindStringSubmatch(trimmed)
	if m == nil {
		return rawRecord(trimmed)
	}

	record = models.LogRecord{
		Timestamp: m[tsIndex],
		Hostname:  m[hostIndex],
		Tag:       m[tagIndex],
		Message:   m[msgIndex],
		Raw:       trimmed,
	}

	if m[priIndex] != "" {
		record.Priority = decodePriority(m[priIndex])
	}

	return record
}

// decodePriority turns the captured PRI digits into a Priority. Values
// outside 0..191 give nil.
func decodePriority(pri string) *models.Priority {
	value, err := strconv.Atoi(pri)
	if err != nil {
		return nil
	}
	return models.NewPriority(value)
}

// FormatRFC3164 renders a message in the wire format produced by syslog
// clients: <PRI>Mmm DD HH:MM:SS HOSTNAME TAG: MESSAGE (no year, day
// space-padded).
func FormatRFC3164(priority int, ts time.Time, hostname, tag, message string) string {
	return fmt.Sprintf("<%d>%s %s %s: %s", priority, ts.Format(StampLayout), hostname, tag, message)
}
