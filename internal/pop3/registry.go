package pop3

import (
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// verbSpec describes one registered POP3 verb: whether it requires or
// excludes an active TLS session, and how to build its server-side
// coroutine from the session and the line's remainder text.
type verbSpec struct {
	tlsExcluded bool
	build       func(sess *Session, argtext string) proto.Coroutine
}

var verbRegistry = map[string]verbSpec{}

func registerVerb(name string, spec verbSpec) {
	verbRegistry[strings.ToUpper(name)] = spec
}

func init() {
	registerVerb("CAPA", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newCapaServerRequest(sess, arg) }})
	registerVerb("STLS", verbSpec{tlsExcluded: true, build: func(sess *Session, arg string) proto.Coroutine { return newStlsServerRequest(sess, arg) }})
	registerVerb("APOP", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newApopServerRequest(sess, arg) }})
	registerVerb("USER", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newUserServerRequest(sess, arg) }})
	registerVerb("PASS", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newPassServerRequest(sess, arg) }})
	registerVerb("RSET", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newRsetServerRequest(sess, arg) }})
	registerVerb("NOOP", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newNoopServerRequest(sess, arg) }})
	registerVerb("QUIT", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newQuitServerRequest(sess, arg) }})
}

// parseCommandLine splits a raw wire line into its uppercase verb and
// the remainder text (CRLF stripped, leading space dropped).
func parseCommandLine(line []byte) (verb string, argtext string) {
	trimmed := strings.TrimRight(string(line), "\r\n")
	trimmed = strings.TrimRight(trimmed, "\n")
	idx := strings.IndexByte(trimmed, ' ')
	if idx < 0 {
		return strings.ToUpper(trimmed), ""
	}
	return strings.ToUpper(trimmed[:idx]), strings.TrimLeft(trimmed[idx+1:], " ")
}

func okLine(text string) proto.Event {
	return proto.SendData{Chunks: [][]byte{[]byte("+OK " + text + "\r\n")}}
}

func errLine(text string) proto.Event {
	return proto.SendData{Chunks: [][]byte{[]byte("-ERR " + text + "\r\n")}}
}

// dotStuffLine applies the one-leading-dot stuffing rule to a single
// multi-line-body line (CAPA, future LIST/UIDL bodies).
func dotStuffLine(line string) string {
	if strings.HasPrefix(line, ".") {
		return "." + line
	}
	return line
}

// multilineBody renders a dot-terminated multi-line body: the intro
// +OK line, one stuffed line per entry, then the ".\r\n" terminator.
func multilineBody(intro string, lines []string) proto.Event {
	chunks := make([][]byte, 0, len(lines)+2)
	chunks = append(chunks, []byte("+OK "+intro+"\r\n"))
	for _, l := range lines {
		chunks = append(chunks, []byte(dotStuffLine(l)+"\r\n"))
	}
	chunks = append(chunks, []byte(".\r\n"))
	return proto.SendData{Chunks: chunks}
}
