package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type stlsServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *StartTlsAcceptEvent
}

func newStlsServerRequest(sess *Session, arg string) *stlsServerRequest {
	return &stlsServerRequest{sess: sess, arg: arg}
}

func (r *stlsServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) != "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("no parameters allowed")}
		}
		if r.sess.TLS {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("already using TLS")}
		}
		r.event = newStartTlsAcceptEvent()
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, _, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: StartTlsAcceptEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		r.state = 2
		return proto.Step{Outcome: proto.Yield, Event: okLine("Begin TLS negotiation")}
	case 2:
		r.state = 3
		return proto.Step{Outcome: proto.Yield, Event: proto.StartTlsBegin{}}
	case 3:
		r.sess.CompleteStartTLS()
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// stlsClientRequest mirrors the server side: send STLS, read the
// reply, and on success yield StartTlsBegin before completing.
type stlsClientRequest struct {
	state    int
	Response Response
}

func newStlsClientRequest() *stlsClientRequest { return &stlsClientRequest{} }

func (r *stlsClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("STLS\r\n")}}}
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
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
