package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
	"github.com/infodancer/mailproto/internal/wire"
)

// Response is the contract every POP3 reply satisfies: a success/error
// discriminator (the "+OK"/"-ERR" prefix) and its text, plus any
// dot-terminated multi-line body that followed it.
type Response interface {
	proto.Response
	Text() string
	Lines() []string
}

type baseResponse struct {
	ok    bool
	text  string
	lines []string
}

func (r baseResponse) IsSuccess() bool  { return r.ok }
func (r baseResponse) Text() string     { return r.text }
func (r baseResponse) Lines() []string  { return append([]string(nil), r.lines...) }

func (r baseResponse) Error() string {
	if r.ok {
		return ""
	}
	return "-ERR " + r.text
}

// parseStatusLine splits one wire line into the +OK/-ERR status and
// its remainder text, per spec.md §4.C's POP3 parse rule.
func parseStatusLine(line []byte) (ok bool, text string, err error) {
	trimmed := strings.TrimRight(string(line), "\r\n")
	s, derr := wire.DecodeASCII([]byte(trimmed))
	if derr != nil {
		return false, "", proto.NewClosed("malformed response: non-ASCII bytes")
	}
	switch {
	case s == "+OK" || strings.HasPrefix(s, "+OK "):
		return true, strings.TrimSpace(strings.TrimPrefix(s, "+OK")), nil
	case s == "-ERR" || strings.HasPrefix(s, "-ERR "):
		return false, strings.TrimSpace(strings.TrimPrefix(s, "-ERR")), nil
	default:
		return false, "", proto.NewClosed("malformed response: missing +OK/-ERR prefix")
	}
}

// ParseSingle parses one single-line POP3 reply.
func ParseSingle(line []byte) (Response, error) {
	ok, text, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}
	return baseResponse{ok: ok, text: text, lines: []string{text}}, nil
}
