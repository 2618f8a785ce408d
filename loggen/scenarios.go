package loggen

// Line is one canned message of a scenario. Text may contain a single "{}"
// placeholder that is replaced by a random four-digit number.
type Line struct {
	Severity string
	Text     string
}

// Scenario simulates one application writing to syslog.
type Scenario struct {
	Tag   string
	Lines []Line
}

// Scenarios are the simulated applications, keyed by name.
var Scenarios = map[string]Scenario{
	"web_server": {
		Tag: "nginx",
		Lines: []Line{
			{"info", "GET /api/users HTTP/1.1 200"},
			{"info", "POST /api/login HTTP/1.1 200"},
			{"warning", "Slow query detected: 2.5s"},
			{"err", "Connection refused to backend server"},
			{"notice", "SSL certificate will expire in 30 days"},
		},
	},
	"database": {
		Tag: "postgres",
		Lines: []Line{
			{"info", "Database checkpoint completed"},
			{"notice", "Connection from client 192.168.1.100"},
			{"warning", "Query execution time exceeded threshold"},
			{"err", "Could not establish replication connection"},
			{"crit", "Database disk space critically low"},
		},
	},
	"security": {
		Tag: "sshd",
		Lines: []Line{
			{"info", "Accepted publickey for admin from 10.0.1.50"},
			{"warning", "Failed password attempt for user root"},
			{"notice", "Session opened for user admin"},
			{"alert", "Multiple failed login attempts detected"},
			{"err", "Invalid user attempt from 192.168.1.200"},
		},
	},
	"application": {
		Tag: "myapp",
		Lines: []Line{
			{"debug", "Processing request ID: REQ-{}"},
			{"info", "User session created: SESSION-{}"},
			{"notice", "Cache miss for key: cache_key_{}"},
			{"warning", "Deprecated API endpoint accessed"},
			{"err", "Failed to process payment transaction"},
		},
	},
}

// trafficFacilities is weighted towards the local facilities.
var trafficFacilities = []string{
	"local0", "local1", "local2", "local3",
	"local4", "local5", "local6", "local7",
	"daemon", "user", "auth",
}
