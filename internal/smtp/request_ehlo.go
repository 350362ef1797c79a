package smtp

import (
	"sort"
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// defaultEsmtpFeatureOrder fixes 8BITMIME before PIPELINING in the
// default feature map, matching the original's insertion order rather
// than Go's randomized map iteration.
var defaultEsmtpFeatureOrder = []string{"8BITMIME", "PIPELINING"}

type ehloServerRequest struct {
	sess  *Session
	arg   string
	state int
	event *EhloEvent
}

func newEhloServerRequest(sess *Session, arg string) *ehloServerRequest {
	return &ehloServerRequest{sess: sess, arg: arg}
}

func (r *ehloServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if strings.TrimSpace(r.arg) == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(501, "Syntax: EHLO hostname")}
		}
		features := map[string]string{}
		for _, name := range defaultEsmtpFeatureOrder {
			features[name] = ""
		}
		for _, name := range r.sess.EsmtpFeatures {
			features[strings.ToUpper(name)] = ""
		}
		if !r.sess.TLS {
			features["STARTTLS"] = ""
		}
		r.event = newEhloEvent(r.arg, features)
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.event}
	case 1:
		ok, accepted, code, message := r.event.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: EhloEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: sendLine(code, message)}
		}
		r.sess.ClientHostname = r.arg
		greeting := message
		if greeting == "" {
			greeting = r.sess.Hostname + " Hello " + r.arg
		}
		lines := []string{greeting}
		lines = append(lines, orderedFeatureLines(r.event.Features)...)
		if r.sess.TLS {
			mechs := availableMechanismNames()
			if len(mechs) > 0 {
				lines = append(lines, "AUTH "+strings.Join(mechs, " "))
			}
		}
		return proto.Step{Outcome: proto.SendTerminal, Event: replyMultiline(code, lines)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

// orderedFeatureLines renders the feature map with the fixed default
// order first (8BITMIME, PIPELINING), STARTTLS next if present, and
// everything else sorted for determinism.
func orderedFeatureLines(features map[string]string) []string {
	remaining := make(map[string]string, len(features))
	for k, v := range features {
		remaining[k] = v
	}
	var lines []string
	emit := func(name string) {
		if v, ok := remaining[name]; ok {
			lines = append(lines, featureLine(name, v))
			delete(remaining, name)
		}
	}
	for _, name := range defaultEsmtpFeatureOrder {
		emit(name)
	}
	emit("STARTTLS")
	rest := make([]string, 0, len(remaining))
	for k := range remaining {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, name := range rest {
		lines = append(lines, featureLine(name, remaining[name]))
	}
	return lines
}

func featureLine(name, params string) string {
	if params == "" {
		return name
	}
	return name + " " + params
}

func availableMechanismNames() []string {
	names := make([]string, 0, len(mechanisms))
	for name := range mechanisms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ehloClientRequest drives the client side of EHLO: send the line,
// then accumulate continuation lines until the final one.
type ehloClientRequest struct {
	domain   string
	state    int
	ehlo     *EhloResponse
	Response Response
}

func newEhloClientRequest(domain string) *ehloClientRequest {
	return &ehloClientRequest{domain: domain}
}

func (r *ehloClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: proto.SendData{Chunks: [][]byte{[]byte("EHLO " + r.domain + "\r\n")}}}
	case 1:
		r.state = 2
		return proto.Step{Outcome: proto.NeedData}
	case 2:
		code, final, text, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code >= 400 {
			r.Response = newSimpleResponse(code, []string{text})
			return proto.Step{Outcome: proto.Done}
		}
		r.ehlo = &EhloResponse{
			baseResponse:   baseResponse{code: code, lines: []string{text}},
			Greeting:       text,
			Features:       map[string]string{},
			AuthMechanisms: map[string]bool{},
		}
		if final {
			r.Response = *r.ehlo
			return proto.Step{Outcome: proto.Done}
		}
		r.state = 3
		return proto.Step{Outcome: proto.NeedData}
	case 3:
		code, final, text, err := parseLine(in.Line)
		if err != nil {
			return proto.Step{Outcome: proto.Fail, Err: err}
		}
		if code != r.ehlo.code {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("malformed response: code mismatch in multiline EHLO")}
		}
		r.ehlo.lines = append(r.ehlo.lines, text)
		parseEhloTextLine(text, r.ehlo)
		if final {
			r.Response = *r.ehlo
			return proto.Step{Outcome: proto.Done}
		}
		return proto.Step{Outcome: proto.NeedData}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}
