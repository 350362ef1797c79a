package smtp

import "github.com/infodancer/mailproto/internal/proto"

// GreetingEvent lets the host accept or reject a new connection before
// the initial 220 greeting is sent.
type GreetingEvent struct {
	proto.Decision
}

func newGreetingEvent() *GreetingEvent {
	e := &GreetingEvent{}
	e.Decision = proto.NewDecision(220, "", 554, "No SMTP service here")
	return e
}

// HeloEvent carries the domain argument of a HELO command.
type HeloEvent struct {
	proto.Decision
	Domain string
}

func newHeloEvent(domain string) *HeloEvent {
	e := &HeloEvent{Domain: domain}
	e.Decision = proto.NewDecision(250, "", 550, "Access denied")
	return e
}

// EhloEvent carries the domain argument of an EHLO command and lets the
// host amend the feature map the reply will advertise.
type EhloEvent struct {
	proto.Decision
	Domain   string
	Features map[string]string
}

func newEhloEvent(domain string, features map[string]string) *EhloEvent {
	e := &EhloEvent{Domain: domain, Features: features}
	e.Decision = proto.NewDecision(250, "", 550, "Access denied")
	return e
}

// StartTlsEvent lets the host refuse a STARTTLS upgrade.
type StartTlsEvent struct {
	proto.Decision
}

func newStartTlsEvent() *StartTlsEvent {
	e := &StartTlsEvent{}
	e.Decision = proto.NewDecision(220, "Go ahead, make my day", 454, "TLS not available at the moment")
	return e
}

// AuthEvent carries the credentials an AUTH mechanism decoded; the
// host's accept/reject decides whether auth_uid is set.
type AuthEvent struct {
	proto.Decision
	UID string
	PWD string
}

func newAuthEvent(uid, pwd string) *AuthEvent {
	e := &AuthEvent{UID: uid, PWD: pwd}
	e.Decision = proto.NewDecision(235, "Authentication successful", 535, "Authentication failed")
	return e
}

// ExpnEvent carries an EXPN argument.
type ExpnEvent struct {
	proto.Decision
	Mailbox   string
	Mailboxes []string // set by the host on accept
}

func newExpnEvent(mailbox string) *ExpnEvent {
	e := &ExpnEvent{Mailbox: mailbox}
	e.Decision = proto.NewDecision(250, "", 550, "Access Denied!")
	return e
}

// VrfyEvent carries a VRFY argument.
type VrfyEvent struct {
	proto.Decision
	Mailbox   string
	Mailboxes []string
}

func newVrfyEvent(mailbox string) *VrfyEvent {
	e := &VrfyEvent{Mailbox: mailbox}
	e.Decision = proto.NewDecision(250, "", 550, "Access Denied!")
	return e
}

// MailFromEvent carries a parsed MAIL FROM address.
type MailFromEvent struct {
	proto.Decision
	MailFrom string
}

func newMailFromEvent(addr string) *MailFromEvent {
	e := &MailFromEvent{MailFrom: addr}
	e.Decision = proto.NewDecision(250, "OK", 550, "address rejected")
	return e
}

// RcptToEvent carries a parsed RCPT TO address.
type RcptToEvent struct {
	proto.Decision
	RcptTo string
}

func newRcptToEvent(addr string) *RcptToEvent {
	e := &RcptToEvent{RcptTo: addr}
	e.Decision = proto.NewDecision(250, "OK", 550, "address rejected")
	return e
}

// CompleteEvent carries the de-stuffed DATA payload lines for the host
// to accept (queue for delivery) or reject.
type CompleteEvent struct {
	proto.Decision
	Data [][]byte
}

func newCompleteEvent(data [][]byte) *CompleteEvent {
	e := &CompleteEvent{Data: data}
	e.Decision = proto.NewDecision(250, "Message accepted for delivery", 450, "Unable to accept message for delivery")
	return e
}
