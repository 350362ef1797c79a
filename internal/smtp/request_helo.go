package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type heloServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *HeloEvent
}

func newHeloServerRequest(sess *Session, arg string) *heloServerRequest {
	return &heloServerRequest{sess: sess, arg: arg}
}

func (r *heloServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: HELO hostname")}
		}
		if r.sess.Pedantic && r.sess.ClientHostname != "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "you already said HELO RFC1869#4.2")}
		}
		r.event = newHeloEvent(r.arg)
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: HeloEvent not resolved")}
		}
		if accepted {
			r.sess.ClientHostname = r.arg
			if message == "" {
				message = r.sess.Hostname + " Hello " + r.arg
			}
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// HeloClient builds the client-side HELO exchange.
func HeloClient(domain string) *lineExchangeClient {
	return newLineExchangeClient("HELO " + domain + "\r\n")
}
