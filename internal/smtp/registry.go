package smtp

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// verbSpec describes one registered SMTP verb: whether it requires or
// excludes an active TLS session, and how to build its server-side
// coroutine from the session and the line's remainder text.
type verbSpec struct {
	tlsRequired bool
	tlsExcluded bool
	build       func(sess *Session, argtext string) proto.Coroutine
}

var verbRegistry = map[string]verbSpec{}

func registerVerb(name string, spec verbSpec) {
	verbRegistry[strings.ToUpper(name)] = spec
}

func init() {
	registerVerb("HELO", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newHeloServerRequest(sess, arg) }})
	registerVerb("EHLO", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newEhloServerRequest(sess, arg) }})
	registerVerb("STARTTLS", verbSpec{tlsExcluded: true, build: func(sess *Session, arg string) proto.Coroutine { return newStartTlsServerRequest(sess, arg) }})
	registerVerb("AUTH", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newAuthServerRequest(sess, arg) }})
	registerVerb("EXPN", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newExpnServerRequest(sess, arg) }})
	registerVerb("VRFY", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newVrfyServerRequest(sess, arg) }})
	registerVerb("MAIL", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newMailFromServerRequest(sess, arg) }})
	registerVerb("RCPT", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newRcptToServerRequest(sess, arg) }})
	registerVerb("DATA", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newDataServerRequest(sess, arg) }})
	registerVerb("RSET", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newRsetServerRequest(sess, arg) }})
	registerVerb("NOOP", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newNoopServerRequest(sess, arg) }})
	registerVerb("QUIT", verbSpec{build: func(sess *Session, arg string) proto.Coroutine { return newQuitServerRequest(sess, arg) }})
}

// parseCommandLine splits a raw wire line into its uppercase verb and
// the remainder text (CRLF stripped, leading space dropped).
func parseCommandLine(line []byte) (verb string, argtext string) {
	trimmed := strings.TrimRight(string(line), "\r\n")
	trimmed = strings.TrimRight(trimmed, "\n")
	idx := bytes.IndexByte([]byte(trimmed), ' ')
	if idx < 0 {
		return strings.ToUpper(trimmed), ""
	}
	return strings.ToUpper(trimmed[:idx]), strings.TrimLeft(trimmed[idx+1:], " ")
}

func sendLine(code int, text string) proto.Event {
	return proto.SendData{Chunks: [][]byte{[]byte(reply(code, text))}}
}

func reply(code int, text string) string {
	return strconv.Itoa(code) + " " + text + "\r\n"
}

// replyMultiline builds a multi-line SMTP reply: every line but the
// last uses the '-' continuation separator, the last uses ' '.
func replyMultiline(code int, lines []string) proto.Event {
	chunks := make([][]byte, 0, len(lines))
	for i, l := range lines {
		sep := byte('-')
		if i == len(lines)-1 {
			sep = ' '
		}
		chunks = append(chunks, []byte(strconv.Itoa(code)+string(sep)+l+"\r\n"))
	}
	return proto.SendData{Chunks: chunks}
}
