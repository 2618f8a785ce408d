package models

// Priority is a decoded syslog PRI value (facility*8 + severity).
type Priority struct {
	Value        int    `json:"value"`
	Facility     int    `json:"facility"`
	Severity     int    `json:"severity"`
	FacilityName string `json:"facilityName"`
	Level        string `json:"level"`
}

var facilityNames = [...]string{
	"kern", "user", "mail", "daemon", "auth", "syslog", "lpr", "news",
	"uucp", "cron", "authpriv", "ftp", "ntp", "security", "console", "solaris-cron",
	"local0", "local1", "local2", "local3", "local4", "local5", "local6", "local7",
}

var severityLevels = [...]string{
	"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug",
}

// NewPriority splits a PRI value into facility and severity.
// It returns nil for values outside 0..191.
func NewPriority(value int) *Priority {
	if value < 0 || value > 191 {
		return nil
	}
	return &Priority{
		Value:        value,
		Facility:     value / 8,
		Severity:     value % 8,
		FacilityName: GetFacilityName(value / 8),
		Level:        GetSeverityLevel(value % 8),
	}
}

// GetSeverityLevel returns the RFC 3164 keyword for a severity code.
func GetSeverityLevel(severity int) string {
	if severity < 0 || severity >= len(severityLevels) {
		return "unknown"
	}
	return severityLevels[severity]
}

// GetFacilityName returns the RFC 3164 keyword for a facility code.
func GetFacilityName(facility int) string {
	if facility < 0 || facility >= len(facilityNames) {
		return "unknown"
	}
	return facilityNames[facility]
}

// SeverityCode looks up a severity keyword such as "err" or "warning".
func SeverityCode(level string) (int, bool) {
	for i, name := range severityLevels {
		if name == level {
			return i, true
		}
	}
	return 0, false
}

// FacilityCode looks up a facility keyword such as "local0" or "auth".
func FacilityCode(name string) (int, bool) {
	for i, n := range facilityNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
