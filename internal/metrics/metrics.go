// Package metrics provides interfaces and implementations for
// collecting server metrics shared by the SMTP and POP3 daemons. This
// package defines the Collector interface for recording metrics and
// the Server interface for exposing them.
package metrics

import "context"

// Collector defines the interface for recording server metrics. Both
// cmd/smtpd and cmd/pop3d share one implementation per process,
// distinguished at construction time rather than by separate methods,
// since every event here (a connection, a TLS upgrade, an auth
// attempt, a command line) means the same thing in either protocol.
type Collector interface {
	// Connection metrics
	ConnectionOpened()
	ConnectionClosed()
	TLSConnectionEstablished()

	// Authentication metrics (authenticated user's domain)
	AuthAttempt(authDomain string, success bool)

	// Command metrics: one call per dispatched SMTP verb or POP3
	// command line (HELO, MAIL, RCPT, APOP, STLS, ...).
	CommandProcessed(command string)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
