package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

type rsetServerRequest struct {
	sess *Session
	arg  string
}

func newRsetServerRequest(sess *Session, arg string) *rsetServerRequest {
	return &rsetServerRequest{sess: sess, arg: arg}
}

func (r *rsetServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	if r.sess.Pedantic && strings.TrimSpace(r.arg) != "" {
		return proto.Step{Outcome: proto.SendTerminal, Event: errLine("no parameters allowed")}
	}
	return proto.Step{Outcome: proto.SendTerminal, Event: okLine("")}
}

type noopServerRequest struct {
	sess *Session
	arg  string
}

func newNoopServerRequest(sess *Session, arg string) *noopServerRequest {
	return &noopServerRequest{sess: sess, arg: arg}
}

func (r *noopServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	if r.sess.Pedantic && strings.TrimSpace(r.arg) != "" {
		return proto.Step{Outcome: proto.SendTerminal, Event: errLine("no parameters allowed")}
	}
	return proto.Step{Outcome: proto.SendTerminal, Event: okLine("")}
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
		return proto.Step{Outcome: proto.Yield, Event: okLine(r.sess.Hostname + " closing connection")}
	case 1:
		return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("QUIT")}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// lineExchangeClient is the shared client-side shape for any exchange
// that is simply send-one-line/read-one-status-line (RSET/NOOP/QUIT).
type lineExchangeClient struct {
	line     string
	state    int
	Response Response
}

func newLineExchangeClient(line string) *lineExchangeClient {
	return &lineExchangeClient{line: line}
}

func (r *lineExchangeClient) Step(in proto.Input) proto.Step {
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
		resp, err := ParseSingle(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		r.Response = resp
		return proto.Step{Outcome: proto.Done}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// RsetClient builds the client-side RSET exchange.
func RsetClient() *lineExchangeClient { return newLineExchangeClient("RSET\r\n") }

// NoopClient builds the client-side NOOP exchange.
func NoopClient() *lineExchangeClient { return newLineExchangeClient("NOOP\r\n") }

// QuitClient builds the client-side QUIT exchange.
func QuitClient() *lineExchangeClient { return newLineExchangeClient("QUIT\r\n") }
