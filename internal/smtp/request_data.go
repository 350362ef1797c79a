package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
	"github.com/infodancer/mailproto/internal/wire"
)

type dataServerRequest struct {
	sess  *Session
	arg   string
	state int
	lines [][]byte
	event *CompleteEvent
}

func newDataServerRequest(sess *Session, arg string) *dataServerRequest {
	return &dataServerRequest{sess: sess, arg: arg}
}

func (r *dataServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) != "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax error (no parameters allowed)")}
		}
		if !r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(550, "Authentication required")}
		}
		if r.sess.MailFrom == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "need MAIL command")}
		}
		if len(r.sess.RcptTo) == 0 {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "need RCPT command")}
		}
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: sendLine(354, "Start mail input; end with <CRLF>.<CRLF>")}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		if wire.IsDataTerminator(in.Line) {
			r.sess.DataLines = r.lines
			r.event = newCompleteEvent(r.lines)
			r.state = 3
			return proto.Step{Outcome: proto.Yield, Event: r.event}
		}
		r.lines = append(r.lines, wire.DestuffLine(in.Line))
		return proto.Step{Outcome: proto.NeedData}
	case 3:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: CompleteEvent not resolved")}
		}
		if accepted {
			r.sess.ResetMailTransaction()
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// dataClientRequest drives DATA from the client side: send "DATA\r\n",
// read the 354 intermediate go-ahead (a distinct "service ready"
// signal, not a normal success/error reply), stream the stuffed
// payload plus terminator, then read the final response.
type dataClientRequest struct {
	payload []byte
	state   int
	Response Response
}

// NewDataClient builds the client-side DATA exchange for the given raw
// (unstuffed) message payload.
func NewDataClient(payload []byte) *dataClientRequest {
	return &dataClientRequest{payload: payload}
}

func (r *dataClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("DATA\r\n")}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		code, _, text, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code != 354 {
			r.Response = newSimpleResponse(code, []string{text})
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 3
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{wire.StuffData(r.payload)}}}
	case 3:
		r.state = 4
		return proto.Step{Outcome: proto.NeedData}
	case 4:
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
