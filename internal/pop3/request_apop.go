package pop3

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"github.com/infodancer/mailproto/internal/proto"
)

// apopPattern matches "uid digest", where digest is exactly 32 lowercase
// or uppercase hex characters per spec.md §4.D's POP3 APOP row.
var apopPattern = regexp.MustCompile(`^(\S+)\s+([0-9a-fA-F]{32})$`)

type apopServerRequest struct {
	sess    *Session
	arg     string
	state   int
	auth    *ApopAuthEvent
	lock    *LockMaildropEvent
}

func newApopServerRequest(sess *Session, arg string) *apopServerRequest {
	return &apopServerRequest{sess: sess, arg: arg}
}

func (r *apopServerRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		if r.sess.IsAuthenticated() {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("already authenticated")}
		}
		if r.sess.Challenge == "" {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("APOP not supported this session")}
		}
		m := apopPattern.FindStringSubmatch(strings.TrimSpace(r.arg))
		if m == nil {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine("malformed APOP command")}
		}
		r.auth = newApopAuthEvent(m[1], strings.ToLower(m[2]))
		r.state = 1
		return proto.Step{Outcome: proto.Yield, Event: r.auth}
	case 1:
		ok, accepted, _, message := r.auth.Resolved()
		if !ok {
			return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR: ApopAuthEvent not resolved")}
		}
		if !accepted {
			return proto.Step{Outcome: proto.SendTerminal, Event: errLine(message)}
		}
		r.sess.AuthUID = r.auth.UID
		r.lock = newLockMaildropEvent(r.auth.UID)
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
		text := maildropStatsText(r.lock.Count, r.lock.Octets)
		return proto.Step{Outcome: proto.SendTerminal, Event: okLine(text)}
	}
	return proto.Step{Outcome: proto.Fail, Err: proto.NewClosed("INTERNAL ERROR")}
}

func maildropStatsText(count, octets int) string {
	return "maildrop has " + strconv.Itoa(count) + " messages (" + strconv.Itoa(octets) + " octets)"
}

// ApopDigest computes the lowercase hex MD5 digest the client sends:
// md5(challenge + password).
func ApopDigest(challenge, password string) string {
	sum := md5.Sum([]byte(challenge + password))
	return hex.EncodeToString(sum[:])
}

// apopClientRequest sends "APOP uid digest" using the challenge read
// from the greeting.
type apopClientRequest struct {
	uid, pwd, challenge string
	state               int
	Response             Response
}

// NewApopClient builds the client-side APOP exchange given the
// challenge string observed in the server's greeting.
func NewApopClient(uid, pwd, challenge string) *apopClientRequest {
	return &apopClientRequest{uid: uid, pwd: pwd, challenge: challenge}
}

func (r *apopClientRequest) Step(in proto.Input) proto.Step {
	if in.Err != nil {
		return proto.Step{Outcome: proto.Fail, Err: in.Err}
	}
	switch r.state {
	case 0:
		digest := ApopDigest(r.challenge, r.pwd)
		line := "APOP " + r.uid + " " + digest + "\r\n"
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
