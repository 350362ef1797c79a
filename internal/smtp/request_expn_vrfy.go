package smtp

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type expnServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *ExpnEvent
}

func newExpnServerRequest(sess *Session, arg string) *expnServerRequest {
	return &expnServerRequest{sess: sess, arg: arg}
}

func (r *expnServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: EXPN mailing-list")}
		}
		if !r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(550, "Access Denied!")}
		}
		r.event = newExpnEvent(r.arg)
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: ExpnEvent not resolved")}
		}
		if !accepted || len(r.event.Mailboxes) == 0 {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: replyMultiline(code, r.event.Mailboxes)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

type vrfyServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *VrfyEvent
}

func newVrfyServerRequest(sess *Session, arg string) *vrfyServerRequest {
	return &vrfyServerRequest{sess: sess, arg: arg}
}

func (r *vrfyServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: VRFY mailbox")}
		}
		if !r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(550, "Access Denied!")}
		}
		r.event = newVrfyEvent(r.arg)
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: VrfyEvent not resolved")}
		}
		if !accepted || len(r.event.Mailboxes) == 0 {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: replyMultiline(code, r.event.Mailboxes)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// multilineClient drives any verb whose reply may span several
// continuation lines before the final one, collecting every line's
// text into Lines.
type multilineClient struct {
	line  string
	state int
	code  int
	Lines []string
}

func newMultilineClient(line string) *multilineClient {
	return &multilineClient{line: line}
}

func (r *multilineClient) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte(r.line)}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		code, final, text, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.code = code
		r.Lines = append(r.Lines, text)
		if final {
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 3
		return proto.Step{Outcome: proto.NeedData}
	case 3:
		code, final, text, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code != r.code {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("malformed response: code mismatch in multiline reply")}
		}
		r.Lines = append(r.Lines, text)
		if final {
			return proto.Step{Outcome: proto.Done}
		}
		return proto.Step{Outcome: proto.NeedData}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// ExpnClient builds the client-side EXPN exchange.
func ExpnClient(mailbox string) *multilineClient {
	return newMultilineClient("EXPN " + mailbox + "\r\n")
}

// VrfyClient builds the client-side VRFY exchange.
func VrfyClient(mailbox string) *multilineClient {
	return newMultilineClient("VRFY " + mailbox + "\r\n")
}
