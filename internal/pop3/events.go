package pop3

import "github.com/infodancer/mailproto/internal/proto"

// ApopChallengeEvent lets the host supply the APOP challenge string to
// issue with the greeting; AcceptText(challenge) supplies one,
// Accept() with no text means no APOP support this session. POP3 has
// no numeric reply code, so the embedded Decision's code fields are
// unused here — only the resolved message carries meaning.
type ApopChallengeEvent struct {
	proto.Decision
}

func newApopChallengeEvent() *ApopChallengeEvent {
	e := &ApopChallengeEvent{}
	e.Decision = proto.NewDecision(0, "", 0, "")
	return e
}

// GreetingAcceptEvent lets the host accept or reject a new connection
// before the "+OK POP3 server ready" banner is sent.
type GreetingAcceptEvent struct {
	proto.Decision
}

func newGreetingAcceptEvent() *GreetingAcceptEvent {
	e := &GreetingAcceptEvent{}
	e.Decision = proto.NewDecision(0, "POP3 server ready", 0, "service unavailable")
	return e
}

// StartTlsAcceptEvent lets the host refuse a STLS upgrade.
type StartTlsAcceptEvent struct {
	proto.Decision
}

func newStartTlsAcceptEvent() *StartTlsAcceptEvent {
	e := &StartTlsAcceptEvent{}
	e.Decision = proto.NewDecision(0, "", 0, "TLS not available")
	return e
}

// ApopAuthEvent carries the uid and computed digest an APOP command
// decoded; the host's accept/reject decides whether auth_uid is set.
type ApopAuthEvent struct {
	proto.Decision
	UID    string
	Digest string
}

func newApopAuthEvent(uid, digest string) *ApopAuthEvent {
	e := &ApopAuthEvent{UID: uid, Digest: digest}
	e.Decision = proto.NewDecision(0, "", 0, "authentication failed")
	return e
}

// LockMaildropEvent asks the host to lock the authenticated user's
// maildrop and report its stats; AcceptStats supplies the message
// count and total octet count the success reply reports.
type LockMaildropEvent struct {
	proto.Decision
	UID      string
	Count    int
	Octets   int
}

func newLockMaildropEvent(uid string) *LockMaildropEvent {
	e := &LockMaildropEvent{UID: uid}
	e.Decision = proto.NewDecision(0, "", 0, "unable to lock maildrop")
	return e
}

// AcceptStats resolves the decision as a success, storing the message
// count/octet total the reply text will report.
func (e *LockMaildropEvent) AcceptStats(count, octets int) {
	e.Count, e.Octets = count, octets
	e.Accept()
}

// UnlockMaildropEvent would signal session teardown releasing a locked
// maildrop. Nothing in this package currently instantiates it: without
// a wired mailbox-content layer (spec.md's Non-goals exclude
// STAT/LIST/RETR/DELE/UIDL), there is no lock to release by the time a
// session ends. Kept so a future mailbox-content layer has the event
// shape ready to raise on QUIT-from-TRANSACTION.
type UnlockMaildropEvent struct {
	proto.Decision
	UID string
}

func newUnlockMaildropEvent(uid string) *UnlockMaildropEvent {
	e := &UnlockMaildropEvent{UID: uid}
	e.Decision = proto.NewDecision(0, "", 0, "")
	return e
}

// UserEvent and PassEvent carry the server-only USER/PASS exchange
// (spec.md's "client-side USER/PASS path is scaffolded but not
// wired"): the server coroutines and these events exist so a host can
// support USER/PASS, but Client exposes only Apop.
type UserEvent struct {
	proto.Decision
	User string
}

func newUserEvent(user string) *UserEvent {
	e := &UserEvent{User: user}
	e.Decision = proto.NewDecision(0, "", 0, "never heard of mailbox")
	return e
}

type PassEvent struct {
	proto.Decision
	User string
	Pass string
}

func newPassEvent(user, pass string) *PassEvent {
	e := &PassEvent{User: user, Pass: pass}
	e.Decision = proto.NewDecision(0, "", 0, "authentication failed")
	return e
}
