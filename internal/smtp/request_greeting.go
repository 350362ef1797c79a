package smtp

import "github.com/infodancer/mailproto/internal/proto"

// greetingServerRequest is the synthetic request the server facade
// starts at connection open, mirroring ServerProtocol.startup()
// queuing a GREETING before any line has been read.
type greetingServerRequest struct {
	sess  *Session
	state int
	event *GreetingEvent
}

func newGreetingServerRequest(sess *Session) *greetingServerRequest {
	return &greetingServerRequest{sess: sess}
}

func (r *greetingServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.event = newGreetingEvent()
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: GreetingEvent not resolved")}
		}
		text := message
		if accepted && text == "" {
			text = r.sess.Hostname + " ESMTP service ready"
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, text)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// GreetingAccepted reports whether the resolved GreetingEvent accepted
// the connection, for the server facade to decide whether to keep
// reading after the initial reply.
func (r *greetingServerRequest) GreetingAccepted() bool {
	_, accepted, _, _ := r.event.Resolved()
	return accepted
}

// greetingClientRequest is the client-side half: just read and parse
// the initial reply.
type greetingClientRequest struct {
	state    int
	Response Response
}

func newGreetingClientRequest() *greetingClientRequest { return &greetingClientRequest{} }

func (r *greetingClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.NeedData}
	case 1:
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
