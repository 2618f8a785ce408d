package formats

import (
	"fmt"
	"strings"
	"time"

	syslog "github.com/leodido/go-syslog/v4"
	"github.com/leodido/go-syslog/v4/rfc3164"
	"github.com/leodido/go-syslog/v4/rfc5424"

	"logviewer/models"
)

// StampLayout is the RFC 3164 TIMESTAMP: day space-padded, no year.
const StampLayout = time.Stamp

// defaultPRI is what a relay adds to a message that arrives without one
// (RFC 3164 section 4.3.3).
const defaultPRI = "<13>"

// WireMessage is an inbound syslog message reduced to the fields the
// traditional file format keeps.
type WireMessage struct {
	Timestamp string
	Hostname  string
	AppName   string
	ProcID    string
	Message   string
	Priority  *models.Priority
	// Raw is the received message, trimmed.
	Raw string
}

// Structured reports whether a syslog grammar accepted the message.
func (m WireMessage) Structured() bool {
	return m.AppName != ""
}

// Tag is APP or APP[PID].
func (m WireMessage) Tag() string {
	if m.ProcID == "" {
		return m.AppName
	}
	return m.AppName + "[" + m.ProcID + "]"
}

// Line renders the message as a traditional file line
// (TIMESTAMP HOSTNAME APP[PID]: MSG). Unstructured messages are kept as
// received.
func (m WireMessage) Line() string {
	if !m.Structured() {
		return m.Raw
	}
	return fmt.Sprintf("%s %s %s: %s", m.Timestamp, m.Hostname, m.Tag(), m.Message)
}

// DecodeWire parses one received syslog message. RFC 5424 is tried
// first, then RFC 3164 (adding the default PRI when none was sent).
// sender stands in for a missing HOSTNAME; "-" is used when it is empty.
// Messages neither grammar accepts come back unstructured.
func DecodeWire(line, sender string) WireMessage {
	trimmed := strings.TrimSpace(line)
	if sender == "" {
		sender = "-"
	}

	if msg, ok := parseRFC5424(trimmed); ok {
		wm := fromBase(msg.Base, sender, trimmed)
		if msg.Timestamp != nil {
			wm.Timestamp = msg.Timestamp.Local().Format(StampLayout)
		} else {
			wm.Timestamp = time.Now().Format(StampLayout)
		}
		return wm
	}

	input := trimmed
	if !strings.HasPrefix(input, "<") {
		input = defaultPRI + input
	}
	if msg, ok := parseRFC3164(input); ok && msg.Appname != nil && msg.Timestamp != nil {
		wm := fromBase(msg.Base, sender, trimmed)
		// Stamp timestamps carry no zone or year; render the wall clock as sent.
		wm.Timestamp = msg.Timestamp.Format(StampLayout)
		return wm
	}

	return WireMessage{Message: trimmed, Raw: trimmed}
}

// fromBase copies the parsed header fields. A nil APP-NAME becomes "-".
func fromBase(b syslog.Base, sender, raw string) WireMessage {
	wm := WireMessage{
		Hostname: sender,
		AppName:  "-",
		Raw:      raw,
	}
	if b.Appname != nil {
		wm.AppName = *b.Appname
	}
	if b.Hostname != nil {
		wm.Hostname = *b.Hostname
	}
	if b.ProcID != nil {
		wm.ProcID = *b.ProcID
	}
	if b.Message != nil {
		wm.Message = strings.TrimSpace(*b.Message)
	}
	if b.Priority != nil {
		wm.Priority = models.NewPriority(int(*b.Priority))
	}
	return wm
}

// parseRFC5424 accepts only complete messages; best-effort partial
// results are discarded.
func parseRFC5424(line string) (*rfc5424.SyslogMessage, bool) {
	parser := rfc5424.NewParser()
	msg, err := parser.Parse([]byte(line))
	if err != nil {
		return nil, false
	}
	sm, ok := msg.(*rfc5424.SyslogMessage)
	return sm, ok && sm != nil
}

func parseRFC3164(line string) (*rfc3164.SyslogMessage, bool) {
	parser := rfc3164.NewParser()
	msg, err := parser.Parse([]byte(line))
	if err != nil {
		return nil, false
	}
	sm, ok := msg.(*rfc3164.SyslogMessage)
	return sm, ok && sm != nil
}
