package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type rsetServerRequest struct {
	sess  *Session
	arg   string
	state int
}

func newRsetServerRequest(sess *Session, arg string) *rsetServerRequest {
	return &rsetServerRequest{sess: sess, arg: arg}
}

func (r *rsetServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	if r.sess.Pedantic && strings.TrimSpace(r.arg) != "" {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax error (no parameters allowed)")}
	}
	r.sess.ResetMailTransaction()
	return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(250, "OK")}
}

type noopServerRequest struct {
	sess  *Session
	arg   string
	state int
}

func newNoopServerRequest(sess *Session, arg string) *noopServerRequest {
	return &noopServerRequest{sess: sess, arg: arg}
}

// Step ignores any argument per RFC 5321 §4.1.1.9.
func (r *noopServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(250, "OK")}
}

type quitServerRequest struct {
	sess  *Session
	arg   string
	state int
}

func newQuitServerRequest(sess *Session, arg string) *quitServerRequest {
	return &quitServerRequest{sess: sess, arg: arg}
}

func (r *quitServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: sendLine(221, r.sess.Hostname+" closing connection")}
	case 1:
		return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("QUIT")}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// RsetClient builds the client-side RSET exchange.
func RsetClient() *lineExchangeClient { return newLineExchangeClient("RSET\r\n") }

// NoopClient builds the client-side NOOP exchange.
func NoopClient() *lineExchangeClient { return newLineExchangeClient("NOOP\r\n") }

// QuitClient builds the client-side QUIT exchange.
func QuitClient() *lineExchangeClient { return newLineExchangeClient("QUIT\r\n") }
