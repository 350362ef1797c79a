// Package transport adapts the sans-I/O protocol engines in
// internal/smtp and internal/pop3 to a real net.Conn: it owns
// deadlines, the read loop, and the STARTTLS/STLS handshake, while
// staying blind to SMTP/POP3 verb semantics. Both cmd/smtpd and
// cmd/pop3d wire their protocol Server/Client through the same
// adapter.
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// Transport is the minimum surface a protocol driver needs from a
// connection: read one chunk, write one chunk, and upgrade to TLS in
// place for STARTTLS/STLS.
type Transport interface {
	// Read blocks for the next chunk of input, applying the
	// transport's configured command timeout.
	Read() ([]byte, error)

	// Write sends b in full.
	Write(b []byte) error

	// StartTLSServer performs a server-side TLS handshake over the
	// current connection, replacing it in place.
	StartTLSServer(cfg *tls.Config) error

	// StartTLSClient performs a client-side TLS handshake over the
	// current connection, replacing it in place.
	StartTLSClient(cfg *tls.Config) error

	// Close closes the underlying connection.
	Close() error
}

// Conn is the synchronous Transport implementation used by both demo
// servers: one goroutine per connection, blocking reads with
// deadlines driven by idle/command timeouts.
type Conn struct {
	conn           net.Conn
	readBuf        []byte
	commandTimeout time.Duration
	idleTimeout    time.Duration
	sawFirstRead   bool
}

// NewConn wraps conn. idleTimeout bounds each Read until the first one
// returns data; from then on every Read is bounded by commandTimeout.
// A zero timeout sets no deadline.
func NewConn(conn net.Conn, commandTimeout, idleTimeout time.Duration) *Conn {
	return &Conn{
		conn:           conn,
		readBuf:        make([]byte, 4096),
		commandTimeout: commandTimeout,
		idleTimeout:    idleTimeout,
	}
}

func (c *Conn) Read() ([]byte, error) {
	timeout := c.commandTimeout
	if !c.sawFirstRead {
		timeout = c.idleTimeout
	}
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}
	n, err := c.conn.Read(c.readBuf)
	if n > 0 {
		c.sawFirstRead = true
		out := make([]byte, n)
		copy(out, c.readBuf[:n])
		return out, err
	}
	return nil, err
}

func (c *Conn) Write(b []byte) error {
	_, err := c.conn.Write(b)
	return err
}

func (c *Conn) StartTLSServer(cfg *tls.Config) error {
	tlsConn := tls.Server(c.conn, cfg)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		return err
	}
	c.conn = tlsConn
	return nil
}

func (c *Conn) StartTLSClient(cfg *tls.Config) error {
	tlsConn := tls.Client(c.conn, cfg)
	if err := tlsConn.HandshakeContext(context.Background()); err != nil {
		return err
	}
	c.conn = tlsConn
	return nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// LocalAddr and RemoteAddr expose the wrapped connection's endpoints
// for logging.
func (c *Conn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// DefaultTLSConfig builds a minimal server-side *tls.Config from a
// certificate/key pair and a minimum version, matching the teacher's
// cmd/pop3d wiring.
func DefaultTLSConfig(certFile, keyFile string, minVersion uint16) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}
