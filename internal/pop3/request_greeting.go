package pop3

import "github.com/infodancer/mailproto/internal/proto"

// greetingServerRequest is the synthetic request the server facade
// starts at connection open: first an ApopChallengeEvent lets the host
// supply the challenge string, then a GreetingAcceptEvent decides
// whether the connection is accepted at all.
type greetingServerRequest struct {
	sess      *Session
	state     int
	challenge *ApopChallengeEvent
	accept    *GreetingAcceptEvent
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
		r.challenge = newApopChallengeEvent()
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.challenge}
	case 1:
		ok, _, _, challenge := r.challenge.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: ApopChallengeEvent not resolved")}
		}
		r.sess.Challenge = challenge
		r.accept = newGreetingAcceptEvent()
		r.state = 2
		return proto.Step{Outcome: proto.Yield, Event: r.accept}
	case 2:
		ok, accepted, _, message := r.accept.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: GreetingAcceptEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		text := "POP3 server ready"
		if r.sess.Challenge != "" {
			text = text + " " + r.sess.Challenge
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: okLine(text)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// GreetingAccepted reports whether the resolved GreetingAcceptEvent
// accepted the connection.
func (r *greetingServerRequest) GreetingAccepted() bool {
	_, accepted, _, _ := r.accept.Resolved()
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
