package smtp

import (
	"regexp"
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// mailFromPattern and rcptToPattern mirror the original's permissive
// "FROM:<addr>" / "TO:<addr>" parsing, tolerating stray whitespace and
// an address with or without angle brackets.
var mailFromPattern = regexp.MustCompile(`(?i)^\s*FROM\s*:\s*<?([^>]*)>?\s*$`)
var rcptToPattern = regexp.MustCompile(`(?i)^\s*TO\s*:\s*<?([^>]*)>?\s*$`)

type mailFromServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *MailFromEvent
}

func newMailFromServerRequest(sess *Session, arg string) *mailFromServerRequest {
	return &mailFromServerRequest{sess: sess, arg: arg}
}

func (r *mailFromServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if !r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(550, "Authentication required")}
		}
		if r.sess.MailFrom != "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "sender already specified")}
		}
		m := mailFromPattern.FindStringSubmatch(r.arg)
		if m == nil {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: MAIL FROM:<address>")}
		}
		r.event = newMailFromEvent(strings.TrimSpace(m[1]))
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: MailFromEvent not resolved")}
		}
		if accepted {
			r.sess.MailFrom = r.event.MailFrom
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

type rcptToServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *RcptToEvent
}

func newRcptToServerRequest(sess *Session, arg string) *rcptToServerRequest {
	return &rcptToServerRequest{sess: sess, arg: arg}
}

func (r *rcptToServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if !r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(550, "Authentication required")}
		}
		if r.sess.MailFrom == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "need MAIL FROM before RCPT TO")}
		}
		m := rcptToPattern.FindStringSubmatch(r.arg)
		if m == nil {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: RCPT TO:<address>")}
		}
		r.event = newRcptToEvent(strings.TrimSpace(m[1]))
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: RcptToEvent not resolved")}
		}
		if accepted {
			r.sess.RcptTo = append(r.sess.RcptTo, r.event.RcptTo)
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// MailFromClient builds the client-side MAIL FROM exchange.
func MailFromClient(addr string) *lineExchangeClient {
	return newLineExchangeClient("MAIL FROM:<" + addr + ">\r\n")
}

// RcptToClient builds the client-side RCPT TO exchange.
func RcptToClient(addr string) *lineExchangeClient {
	return newLineExchangeClient("RCPT TO:<" + addr + ">\r\n")
}
