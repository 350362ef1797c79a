package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type startTlsServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *StartTlsEvent
}

func newStartTlsServerRequest(sess *Session, arg string) *startTlsServerRequest {
	return &startTlsServerRequest{sess: sess, arg: arg}
}

func (r *startTlsServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) != "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax error (no parameters allowed)")}
		}
		r.event = newStartTlsEvent()
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: StartTlsEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
		}
		r.state = 2
		return proto.Step{Outcome: proto.Yield, Event: sendLine(code, message)}
	case 2:
		r.state = 3
		return proto.Step{Outcome: proto.Yield, Event: proto.StartTlsBegin{}}
	case 3:
		r.sess.CompleteStartTLS()
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(220, r.sess.Hostname+" ESMTP service ready")}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// startTlsClientRequest mirrors the server coroutine on the client
// side: send STARTTLS, read the reply, and if successful yield
// StartTlsBegin so the driver's caller performs the handshake before
// the connection is used again. After the handshake the server emits a
// fresh 220 greeting (RFC 3207 requires the peer to re-issue
// EHLO/HELO), which the client reads and discards here so the
// connection is left idle rather than mid-exchange.
type startTlsClientRequest struct {
	state    int
	Response Response
}

func newStartTlsClientRequest() *startTlsClientRequest { return &startTlsClientRequest{} }

func (r *startTlsClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("STARTTLS\r\n")}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		if !resp.IsSuccess() {
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 3
		return proto.Step{Outcome: proto.Yield, Event: proto.StartTlsBegin{}}
	case 3:
		r.state = 4
		return proto.Step{Outcome: proto.NeedData}
	case 4:
		// The post-handshake fresh greeting; nothing in it changes
		// Response, which already reflects the STARTTLS go-ahead reply.
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
