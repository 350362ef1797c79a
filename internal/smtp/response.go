package smtp

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
	"github.com/infodancer/mailproto/internal/wire"
)

// Response is the contract every SMTP reply type satisfies: a 3-digit
// code and the text of its final line, plus any continuation lines
// that preceded it.
type Response interface {
	proto.Response
	Code() int
	Lines() []string
	Text() string
}

type baseResponse struct {
	code  int
	lines []string
}

func (r baseResponse) Code() int        { return r.code }
func (r baseResponse) Lines() []string  { return append([]string(nil), r.lines...) }
func (r baseResponse) Text() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// SuccessResponse is any SMTP reply with code < 400.
type SuccessResponse struct{ baseResponse }

func (SuccessResponse) IsSuccess() bool { return true }

// IntermediateResponse is a non-final continuation line (fourth byte
// '-'); SMTP replies are never terminal on an IntermediateResponse —
// it only appears mid-aggregation.
type IntermediateResponse struct{ baseResponse }

func (IntermediateResponse) IsSuccess() bool { return true }

// ErrorResponse is any SMTP reply with code in [400,599]; it also
// satisfies the error interface so client coroutines can raise it.
type ErrorResponse struct{ baseResponse }

func (ErrorResponse) IsSuccess() bool { return false }

func (e ErrorResponse) Error() string {
	return strconv.Itoa(e.code) + " " + e.Text()
}

// EhloResponse aggregates a multi-line EHLO reply: Features holds
// every "NAME [params]" continuation line keyed by NAME (uppercased),
// AuthMechanisms holds every advertised "AUTH ..." line's mechanism
// names.
type EhloResponse struct {
	baseResponse
	Greeting       string
	Features       map[string]string
	AuthMechanisms map[string]bool
}

func (EhloResponse) IsSuccess() bool { return true }

// ExpnResponse/VrfyResponse carry the mailbox list an accepted
// EXPN/VRFY reply enumerates, one per continuation line.
type ExpnResponse struct {
	baseResponse
	Mailboxes []string
}

func (ExpnResponse) IsSuccess() bool { return true }

type VrfyResponse struct {
	baseResponse
	Mailboxes []string
}

func (VrfyResponse) IsSuccess() bool { return true }

func newSimpleResponse(code int, lines []string) Response {
	base := baseResponse{code: code, lines: lines}
	switch {
	case code < 400:
		return SuccessResponse{base}
	default:
		return ErrorResponse{base}
	}
}

// parseLine splits one wire line into its numeric code, final/
// continuation discriminator, and text, per spec.md §4.C. Malformed
// input (non-numeric prefix, out-of-range code, bad separator) always
// returns a *proto.Closed, never a partial result.
func parseLine(line []byte) (code int, final bool, text string, err error) {
	trimmed := bytes.TrimRight(line, "\r\n")
	s, derr := wire.DecodeASCII(trimmed)
	if derr != nil {
		return 0, false, "", proto.NewClosed("malformed response: non-ASCII bytes")
	}
	if len(s) < 3 {
		return 0, false, "", proto.NewClosed("malformed response: too short")
	}
	n, cerr := strconv.Atoi(s[:3])
	if cerr != nil || n < 200 || n > 599 {
		return 0, false, "", proto.NewClosed("malformed response: bad code")
	}
	if len(s) == 3 {
		return n, true, "", nil
	}
	switch s[3] {
	case ' ':
		return n, true, s[4:], nil
	case '-':
		return n, false, s[4:], nil
	default:
		return 0, false, "", proto.NewClosed("malformed response: bad separator")
	}
}

// ParseSingle parses a single-line (non-EHLO) reply.
func ParseSingle(line []byte) (Response, error) {
	code, final, text, err := parseLine(line)
	if err != nil {
		return nil, err
	}
	if !final {
		return nil, proto.NewClosed("malformed response: unexpected continuation")
	}
	return newSimpleResponse(code, []string{text}), nil
}

// parseEhloTextLine classifies one EHLO continuation line's text as
// either an AUTH mechanism list or a NAME [params] feature.
func parseEhloTextLine(text string, ehlo *EhloResponse) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if strings.HasPrefix(upper, "AUTH") {
		rest := strings.TrimSpace(upper[len("AUTH"):])
		for _, mech := range strings.Fields(rest) {
			ehlo.AuthMechanisms[mech] = true
		}
		return
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	name := strings.ToUpper(fields[0])
	params := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), fields[0]))
	ehlo.Features[name] = params
}
