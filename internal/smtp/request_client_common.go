package smtp

import "github.com/infodancer/mailproto/internal/proto"

// lineExchangeClient is the shared client-side shape for every verb
// whose protocol is simply send_recv_done: write one CRLF-terminated
// command line, then read and parse exactly one reply line, which
// terminates the request whether it succeeded or not.
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
