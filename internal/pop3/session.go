package pop3

// Session holds the server-side protocol state the driver threads
// through every POP3 verb's coroutine: configured hostname, pedantic
// mode, current TLS/auth state, the APOP challenge issued at greeting
// time, and the extra CAPA lines a host wants advertised.
type Session struct {
	Hostname string
	Pedantic bool

	TLS       bool
	AuthUID   string
	Challenge string // set by the GREETING coroutine's ApopChallengeEvent

	// PendingUser holds the name USER supplied until a following PASS
	// consumes it.
	PendingUser string

	// Capabilities lists extra CAPA lines beyond the always-present
	// ones the CAPA coroutine computes from TLS state (e.g. "USER").
	Capabilities []string
}

// NewSession builds a Session with pedantic mode on by default.
func NewSession(hostname string) *Session {
	return &Session{Hostname: hostname, Pedantic: true}
}

// IsAuthenticated reports whether APOP (or USER/PASS) has completed.
func (s *Session) IsAuthenticated() bool { return s.AuthUID != "" }

// CompleteStartTLS flips the TLS flag, mirroring the SMTP session's
// STARTTLS completion (POP3 has no client_hostname to clear).
func (s *Session) CompleteStartTLS() { s.TLS = true }
