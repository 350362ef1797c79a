package smtp

// Session holds the server-side protocol state the driver threads
// through every verb's coroutine: configured hostname, pedantic mode,
// advertised ESMTP features, and the per-connection state HELO/EHLO,
// AUTH, MAIL FROM, RCPT TO, and DATA accumulate.
//
// Session carries no I/O of its own; transports own the socket and
// call into a Server facade that in turn drives this state.
type Session struct {
	Hostname string
	Pedantic bool

	// EsmtpFeatures lists the feature names EHLO advertises, beyond
	// the always-present ones the EHLO coroutine computes from TLS
	// state. EHLO emits them sorted by name after 8BITMIME, PIPELINING
	// and STARTTLS; the order given here is not kept.
	EsmtpFeatures []string

	TLS            bool
	ClientHostname string
	AuthUID        string
	MailFrom       string
	RcptTo         []string
	DataLines      [][]byte
}

// NewSession builds a Session with pedantic mode on by default, per
// spec.md §6's configuration default.
func NewSession(hostname string) *Session {
	return &Session{Hostname: hostname, Pedantic: true}
}

// IsAuthenticated reports whether AUTH has completed successfully.
func (s *Session) IsAuthenticated() bool { return s.AuthUID != "" }

// ResetMailTransaction clears MAIL FROM/RCPT TO/DATA state, as RSET and
// a completed DATA both do.
func (s *Session) ResetMailTransaction() {
	s.MailFrom = ""
	s.RcptTo = nil
	s.DataLines = nil
}

// CompleteStartTLS flips the TLS flag and clears ClientHostname, since
// RFC 3207 requires the peer to re-issue EHLO/HELO after STARTTLS.
func (s *Session) CompleteStartTLS() {
	s.TLS = true
	s.ClientHostname = ""
}
