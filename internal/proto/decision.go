package proto

import "strings"

// Decision is embedded by every AcceptReject-style event (greeting,
// HELO/EHLO, STARTTLS, AUTH, EXPN, VRFY, MAIL FROM, RCPT TO,
// DATA-complete, APOP, lock-maildrop, ...). A host callback must call
// Accept, AcceptText, or Reject exactly once before the driver steps
// the owning coroutine again; the coroutine reads back the outcome via
// Resolved.
type Decision struct {
	eventBase

	successCode    int
	successMessage string
	errorCode      int
	errorMessage   string

	resolved bool
	accepted bool
	code     int
	message  string
}

// NewDecision builds a Decision carrying the default success and
// failure code/text a verb's coroutine will use unless the host
// overrides them via Reject's arguments.
func NewDecision(successCode int, successMessage string, errorCode int, errorMessage string) Decision {
	return Decision{
		successCode:    successCode,
		successMessage: successMessage,
		errorCode:      errorCode,
		errorMessage:   errorMessage,
	}
}

// Accept resolves the decision as a success, using the default success
// code/text.
func (d *Decision) Accept() {
	d.resolved = true
	d.accepted = true
	d.code = d.successCode
	d.message = d.successMessage
}

// AcceptText resolves the decision as a success but lets the host
// override the reply text (used where the success reply must report
// live state, e.g. a mailbox message count).
func (d *Decision) AcceptText(message string) {
	d.Accept()
	d.message = message
}

// Reject resolves the decision as a failure. code and message override
// the default error code/text when valid: code must be in [400,599]
// and message must contain no CR or LF. Invalid overrides are ignored
// and the defaults are kept, per the error-handling design's rule that
// bad override arguments don't propagate malformed wire text.
func (d *Decision) Reject(code int, message string) {
	d.resolved = true
	d.accepted = false
	d.code = d.errorCode
	d.message = d.errorMessage
	if code != 0 && code >= 400 && code <= 599 {
		d.code = code
	}
	if message != "" && !strings.ContainsAny(message, "\r\n") {
		d.message = message
	}
}

// Resolved reports whether Accept/AcceptText/Reject has been called
// yet, and if so, the outcome plus the code/text to send.
func (d *Decision) Resolved() (ok bool, accepted bool, code int, message string) {
	return d.resolved, d.accepted, d.code, d.message
}

// IsAccepted reports the decision's outcome; callers must only use it
// after Resolved reports ok == true.
func (d *Decision) IsAccepted() bool { return d.accepted }
