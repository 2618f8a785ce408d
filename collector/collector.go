// Package collector receives RFC 3164 and RFC 5424 syslog over UDP and TCP
// and appends it to files under the log root, laid out the way the viewer
// reads them.
package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"logviewer/formats"
)

const (
	udpBufferSize     = 64 * 1024
	maxTCPMessageSize = 1024 * 1024
	idleTimeout       = 2 * time.Minute
	maxUDPProcessors  = 100
	maxTCPConnections = 100
)

// Collector owns the UDP and TCP listeners. An empty address disables the
// corresponding listener.
type Collector struct {
	store   *Store
	udpAddr string
	tcpAddr string
	logger  *zap.Logger

	udpConn     net.PacketConn
	tcpListener net.Listener

	udpSlots chan struct{}
	tcpSlots chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool

	received atomic.Int64
	dropped  atomic.Int64
}

// New creates a Collector writing to store.
func New(store *Store, udpAddr, tcpAddr string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		store:    store,
		udpAddr:  udpAddr,
		tcpAddr:  tcpAddr,
		logger:   logger.Named("collector"),
		udpSlots: make(chan struct{}, maxUDPProcessors),
		tcpSlots: make(chan struct{}, maxTCPConnections),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Start binds the listeners and serves them in the background.
func (c *Collector) Start(ctx context.Context) error {
	if c.udpAddr == "" && c.tcpAddr == "" {
		return errors.New("no listener configured")
	}

	var lc net.ListenConfig

	if c.udpAddr != "" {
		conn, err := lc.ListenPacket(ctx, "udp", c.udpAddr)
		if err != nil {
			return fmt.Errorf("failed to start UDP listener on %s: %w", c.udpAddr, err)
		}
		c.mu.Lock()
		c.udpConn = conn
		c.mu.Unlock()
		c.logger.Info("UDP listener is running", zap.Stringer("addr", conn.LocalAddr()))

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.serveUDP()
		}()
	}

	if c.tcpAddr != "" {
		l, err := lc.Listen(ctx, "tcp", c.tcpAddr)
		if err != nil {
			c.Close()
			return fmt.Errorf("failed to start TCP listener on %s: %w", c.tcpAddr, err)
		}
		c.mu.Lock()
		c.tcpListener = l
		c.mu.Unlock()
		c.logger.Info("TCP listener is running", zap.Stringer("addr", l.Addr()))

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.serveTCP()
		}()
	}

	return nil
}

// Run starts the collector and stops it when ctx is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	c.logger.Info("shutting down collector",
		zap.Int64("received", c.received.Load()),
		zap.Int64("dropped", c.dropped.Load()),
	)
	return c.Close()
}

// Close stops the listeners, drops open TCP connections and waits for
// in-flight messages to be stored.
func (c *Collector) Close() error {
	c.mu.Lock()
	var errs []error
	if c.udpConn != nil {
		errs = append(errs, c.udpConn.Close())
	}
	if c.tcpListener != nil {
		errs = append(errs, c.tcpListener.Close())
	}
	c.closed = true
	for conn := range c.conns {
		conn.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	return errors.Join(errs...)
}

// UDPAddr returns the bound UDP address, or nil.
func (c *Collector) UDPAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.udpConn == nil {
		return nil
	}
	return c.udpConn.LocalAddr()
}

// TCPAddr returns the bound TCP address, or nil.
func (c *Collector) TCPAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tcpListener == nil {
		return nil
	}
	return c.tcpListener.Addr()
}

// Received counts the lines handed to the store.
func (c *Collector) Received() int64 { return c.received.Load() }

// Dropped counts the UDP datagrams refused while at capacity.
func (c *Collector) Dropped() int64 { return c.dropped.Load() }

// Handle decodes one received message and stores it. sender is the
// peer's address, used when the message carries no HOSTNAME. Blank lines
// are ignored.
func (c *Collector) Handle(line, sender string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	msg := formats.DecodeWire(line, sender)
	if !msg.Structured() {
		c.logger.Debug("storing unstructured message", zap.String("line", msg.Raw))
	}
	if err := c.store.Append(msg); err != nil {
		c.logger.Error("error storing log", zap.Error(err))
		return
	}
	c.received.Add(1)
}

func (c *Collector) serveUDP() {
	buffer := make([]byte, udpBufferSize)

	for {
		n, addr, err := c.udpConn.ReadFrom(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Warn("error reading from UDP", zap.Error(err))
			continue
		}

		// Make a copy of the received data to process
		data := make([]byte, n)
		copy(data, buffer[:n])

		sender := hostOf(addr)

		select {
		case c.udpSlots <- struct{}{}:
			c.wg.Add(1)
			go func() {
				defer func() {
					<-c.udpSlots
					c.wg.Done()
				}()
				c.handleDatagram(data, sender)
			}()
		default:
			c.dropped.Add(1)
			c.logger.Warn("UDP processing at capacity, dropping datagram")
		}
	}
}

// handleDatagram splits a datagram in case several messages were batched.
func (c *Collector) handleDatagram(data []byte, sender string) {
	input := strings.ReplaceAll(string(data), "\r\n", "\n")
	for part := range strings.SplitSeq(input, "\n") {
		c.Handle(part, sender)
	}
}

// hostOf returns the IP of a peer address, or "" when unknown.
func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return ""
	}
	return host
}

func (c *Collector) serveTCP() {
	for {
		conn, err := c.tcpListener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Warn("error accepting TCP connection", zap.Error(err))
			continue
		}

		c.tcpSlots <- struct{}{}
		if !c.track(conn) {
			conn.Close()
			<-c.tcpSlots
			return
		}
		c.wg.Add(1)

		go func() {
			defer func() {
				c.untrack(conn)
				<-c.tcpSlots
				c.wg.Done()
			}()
			c.handleConn(conn)
		}()
	}
}

// track registers conn for Close. It reports false once the collector
// is closed.
func (c *Collector) track(conn net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conns[conn] = struct{}{}
	return true
}

func (c *Collector) untrack(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn)
}

// handleConn reads newline-framed messages until EOF, an error, or
// idleTimeout without data.
func (c *Collector) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTCPMessageSize)

	sender := hostOf(conn.RemoteAddr())

	conn.SetReadDeadline(time.Now().Add(idleTimeout))
	for scanner.Scan() {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		c.Handle(scanner.Text(), sender)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		c.logger.Debug("TCP connection closed", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
	}
}
