// Package loggen produces RFC 3164 syslog traffic for exercising a remote
// syslog collector and, downstream, the viewer.
package loggen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"logviewer/formats"
	"logviewer/models"
)

const (
	writeTimeout = 10 * time.Second
	retryDelay   = 100 * time.Millisecond
)

// Config controls where and how fast traffic is sent.
type Config struct {
	Host     string
	Port     int
	Protocol string // "udp" or "tcp"
	Hostname string // HOSTNAME field of generated messages
	Scenario string // a key of Scenarios, or "" / "all" for a random mix
	Interval time.Duration
	Jitter   time.Duration // Interval is randomized by ±Jitter
	Count    int           // total messages; 0 runs until the context ends
	Workers  int
}

// Message is one generated syslog message.
type Message struct {
	Scenario string
	Facility string
	Severity string
	Tag      string
	Text     string
	Line     string
}

// Summary reports what a Run achieved.
type Summary struct {
	Sent     int64
	Errors   int64
	Duration time.Duration
}

// Generator is safe for concurrent use by its workers.
type Generator struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	sent   atomic.Int64
	errors atomic.Int64
}

// New validates cfg and creates a Generator.
func New(cfg Config, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.Protocol = strings.ToLower(cfg.Protocol)
	if cfg.Protocol != "udp" && cfg.Protocol != "tcp" {
		return nil, fmt.Errorf("protocol must be udp or tcp, got %q", cfg.Protocol)
	}
	if cfg.Scenario == "all" {
		cfg.Scenario = ""
	}
	if cfg.Scenario != "" {
		if _, ok := Scenarios[cfg.Scenario]; !ok {
			return nil, fmt.Errorf("unknown scenario %q (available: %s, all)", cfg.Scenario, strings.Join(ScenarioNames(), ", "))
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Count < 0 {
		return nil, fmt.Errorf("count must not be negative, got %d", cfg.Count)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "syslog-client"
	}

	return &Generator{
		cfg:    cfg,
		logger: logger.Named("loggen"),
		now:    time.Now,
	}, nil
}

// ScenarioNames lists the scenario keys in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Next builds a random message from the configured scenario (or any
// scenario when none is configured).
func (g *Generator) Next() Message {
	name := g.cfg.Scenario
	if name == "" {
		names := ScenarioNames()
		name = names[rand.IntN(len(names))]
	}
	scenario := Scenarios[name]

	line := scenario.Lines[rand.IntN(len(scenario.Lines))]
	text := line.Text
	if strings.Contains(text, "{}") {
		text = strings.Replace(text, "{}", strconv.Itoa(1000+rand.IntN(9000)), 1)
	}

	facility := trafficFacilities[rand.IntN(len(trafficFacilities))]
	facilityCode, _ := models.FacilityCode(facility)
	severityCode, _ := models.SeverityCode(line.Severity)

	return Message{
		Scenario: name,
		Facility: facility,
		Severity: line.Severity,
		Tag:      scenario.Tag,
		Text:     text,
		Line:     formats.FormatRFC3164(facilityCode*8+severityCode, g.now(), g.cfg.Hostname, scenario.Tag, text),
	}
}

// Run sends messages with the configured number of workers until Count
// messages have been attempted or ctx is cancelled.
func (g *Generator) Run(ctx context.Context) Summary {
	start := time.Now()
	addr := net.JoinHostPort(g.cfg.Host, strconv.Itoa(g.cfg.Port))

	g.logger.Info("starting syslog traffic",
		zap.String("target", addr),
		zap.String("protocol", g.cfg.Protocol),
		zap.String("scenario", scenarioLabel(g.cfg.Scenario)),
		zap.Int("count", g.cfg.Count),
		zap.Int("workers", g.cfg.Workers),
	)

	// Split Count across workers
	perWorker := g.cfg.Count / g.cfg.Workers
	remainder := g.cfg.Count % g.cfg.Workers

	var wg sync.WaitGroup
	for i := 0; i < g.cfg.Workers; i++ {
		n := perWorker
		if i < remainder {
			n++
		}
		if g.cfg.Count > 0 && n == 0 {
			continue
		}

		wg.Add(1)
		go func(workerID, numMessages int) {
			defer wg.Done()
			g.worker(ctx, addr, workerID, numMessages)
		}(i, n)
	}
	wg.Wait()

	summary := Summary{
		Sent:     g.sent.Load(),
		Errors:   g.errors.Load(),
		Duration: time.Since(start),
	}
	g.logger.Info("syslog traffic stopped",
		zap.Int64("sent", summary.Sent),
		zap.Int64("errors", summary.Errors),
		zap.Duration("duration", summary.Duration),
	)
	return summary
}

// worker sends numMessages messages over one connection, reconnecting after
// failures. numMessages == 0 means unbounded.
func (g *Generator) worker(ctx context.Context, addr string, workerID, numMessages int) {
	var conn net.Conn
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	dialer := net.Dialer{Timeout: writeTimeout}

	for i := 0; numMessages == 0 || i < numMessages; i++ {
		if ctx.Err() != nil {
			return
		}

		if conn == nil {
			c, err := dialer.DialContext(ctx, g.cfg.Protocol, addr)
			if err != nil {
				g.errors.Add(1)
				g.logger.Warn("connection error", zap.Int("worker", workerID), zap.Error(err))
				if !sleep(ctx, retryDelay) {
					return
				}
				continue
			}
			conn = c
		}

		msg := g.Next()
		payload := msg.Line
		if g.cfg.Protocol == "tcp" {
			payload += "\n"
		}

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write([]byte(payload)); err != nil {
			g.errors.Add(1)
			g.logger.Warn("send error", zap.Int("worker", workerID), zap.Error(err))
			conn.Close()
			conn = nil
		} else {
			g.sent.Add(1)
			g.logger.Debug("sent",
				zap.String("scenario", msg.Scenario),
				zap.String("priority", msg.Facility+"."+msg.Severity),
				zap.String("tag", msg.Tag),
				zap.String("message", msg.Text),
			)
		}

		if g.cfg.Interval > 0 && !sleep(ctx, g.delay()) {
			return
		}
	}
}

// delay is Interval randomized by ±Jitter, never negative.
func (g *Generator) delay() time.Duration {
	d := g.cfg.Interval
	if g.cfg.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(2*g.cfg.Jitter)+1)) - g.cfg.Jitter
	}
	return max(d, 0)
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func scenarioLabel(name string) string {
	if name == "" {
		return "all"
	}
	return name
}
