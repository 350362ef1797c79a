package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
	"github.com/infodancer/mailproto/internal/wire"
)

// capaServerRequest replies to CAPA with the always-present
// capabilities plus whatever the session's Capabilities field adds and
// STLS when available, per RFC 2449.
type capaServerRequest struct {
	sess  *Session
	state int
}

func newCapaServerRequest(sess *Session, arg string) *capaServerRequest {
	return &capaServerRequest{sess: sess}
}

func (r *capaServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	lines := []string{"USER", "RESP-CODES"}
	lines = append(lines, r.sess.Capabilities...)
	if !r.sess.TLS {
		lines = append(lines, "STLS")
	}
	return proto.Step{Outcome: proto.SendTerminal, Event: multilineBody("Capability list follows", lines)}
}

// capaClientRequest reads the dot-terminated CAPA body.
type capaClientRequest struct {
	state int
	Lines []string
}

func newCapaClientRequest() *capaClientRequest { return &capaClientRequest{} }

func (r *capaClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("CAPA\r\n")}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		ok, _, err := parseStatusLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if !ok {
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 3
		return proto.Step{Outcome: proto.NeedData}
	case 3:
		if wire.IsDataTerminator(in.Line) {
			return proto.Step{Outcome: proto.Done}
		}
		r.Lines = append(r.Lines, strings.TrimRight(string(wire.DestuffLine(in.Line)), "\r\n"))
		return proto.Step{Outcome: proto.NeedData}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
