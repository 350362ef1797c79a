package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
	"github.com/infodancer/mailproto/internal/wire"
)

type authServerRequest struct {
	sess  *Session
	arg   string
	state int
	mech  Mechanism
	event *AuthEvent
}

func newAuthServerRequest(sess *Session, arg string) *authServerRequest {
	return &authServerRequest{sess: sess, arg: arg}
}

// malformedAuthReply is spec.md §4.G's verbatim error text for any
// AUTH decode failure, preserved from smtp_proto.py.
const malformedAuthReply = "malformed auth input RFC4616#2"

func (r *authServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		return r.start()
	case 3:
		r.state = 1
		return proto.Step{Outcome: proto.NeedData}
	case 1:
		step := r.mech.ReceiveLine(in.Line)
		return r.applyMechanismStep(step)
	case 2:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: AuthEvent not resolved")}
		}
		if accepted {
			r.sess.AuthUID = r.event.UID
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

func (r *authServerRequest) start() proto.Step {
	fields := strings.SplitN(strings.TrimSpace(r.arg), " ", 2)
	if fields[0] == "" {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: AUTH mechanism")}
	}
	if r.sess.ClientHostname == "" {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "Say HELO first")}
	}
	if r.sess.IsAuthenticated() {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(503, "already authenticated")}
	}
	mechName := strings.ToUpper(fields[0])
	mech := LookupMechanism(mechName)
	if mech == nil {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(504, "Unrecognized authentication mechanism")}
	}
	// Both PLAIN and LOGIN are tls_required per spec.md §4.G; since
	// the mechanism registry only ever holds tls_required mechanisms,
	// this check applies uniformly to every registered mechanism.
	if !r.sess.TLS {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(535, "SSL/TLS connection required")}
	}
	r.mech = mech
	extra := ""
	if len(fields) > 1 {
		extra = fields[1]
	}
	return r.applyMechanismStep(mech.FirstLine(extra))
}

func (r *authServerRequest) applyMechanismStep(step MechanismStep) proto.Step {
	if step.Malformed {
		return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, malformedAuthReply)}
	}
	if step.Done {
		r.event = newAuthEvent(step.UID, step.PWD)
		r.state = 2
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	}
	r.state = 3
	return proto.Step{Outcome: proto.Yield, Event: sendLine(334, step.Reply)}
}

// authPlainClientRequest sends the single-line inline form of AUTH
// PLAIN: "AUTH PLAIN <base64(\0uid\0pwd)>".
type authPlainClientRequest struct {
	uid, pwd string
	state    int
	Response Response
}

// NewAuthPlainClient builds the inline single-line AUTH PLAIN client
// exchange (spec.md §4.G "PLAIN (inline)").
func NewAuthPlainClient(uid, pwd string) *authPlainClientRequest {
	return &authPlainClientRequest{uid: uid, pwd: pwd}
}

func (r *authPlainClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		blob := "\x00" + r.uid + "\x00" + r.pwd
		line := "AUTH PLAIN " + wire.B64Encode(blob) + "\r\n"
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte(line)}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// authLoginClientRequest implements the historical two-step LOGIN
// exchange: AUTH LOGIN, then base64 username, then base64 password.
type authLoginClientRequest struct {
	uid, pwd string
	state    int
	Response Response
}

// NewAuthLoginClient builds the two-step AUTH LOGIN client exchange.
func NewAuthLoginClient(uid, pwd string) *authLoginClientRequest {
	return &authLoginClientRequest{uid: uid, pwd: pwd}
}

func (r *authLoginClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("AUTH LOGIN\r\n")}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		code, final, _, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code >= 400 {
			r.Response = newSimpleResponse(code, []string{"rejected"})
			return proto.Step{Outcome: proto.Done}
		}
		_ = final
		r.state = 3
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte(wire.B64Encode(r.uid) + "\r\n")}}}
	case 3:
		r.state = 4
		return proto.Step{Outcome: proto.NeedData}
	case 4:
		code, _, _, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code >= 400 {
			r.Response = newSimpleResponse(code, []string{"rejected"})
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 5
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte(wire.B64Encode(r.pwd) + "\r\n")}}}
	case 5:
		r.state = 6
		return proto.Step{Outcome: proto.NeedData}
	case 6:
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
