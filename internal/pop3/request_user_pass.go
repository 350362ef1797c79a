package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// userServerRequest and passServerRequest implement the classic
// USER/PASS exchange, server-side only: spec.md's client facade
// exposes just Apop, so these coroutines exist for a host that wants
// to support USER/PASS without a corresponding client helper.
type userServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *UserEvent
}

func newUserServerRequest(sess *Session, arg string) *userServerRequest {
	return &userServerRequest{sess: sess, arg: arg}
}

func (r *userServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("missing username")}
		}
		r.event = newUserEvent(r.arg)
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, _, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: UserEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		r.sess.PendingUser = r.event.User
		return proto.Step{Outcome: proto.SendTerminal, Event: okLine("send PASS")}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

type passServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *PassEvent
	lock  *LockMaildropEvent
}

func newPassServerRequest(sess *Session, arg string) *passServerRequest {
	return &passServerRequest{sess: sess, arg: arg}
}

func (r *passServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if r.sess.PendingUser == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("USER required first")}
		}
		r.event = newPassEvent(r.sess.PendingUser, r.arg)
		r.sess.PendingUser = ""
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, _, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: PassEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		r.sess.AuthUID = r.event.User
		r.lock = newLockMaildropEvent(r.event.User)
		r.state = 2
		return proto.Step{Outcome: proto.Yield, Event: r.lock}
	case 2:
		ok, accepted, _, message := r.lock.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: LockMaildropEvent not resolved")}
		}
		if !accepted {
			r.sess.AuthUID = ""
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: okLine(maildropStatsText(r.lock.Count, r.lock.Octets))}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
