package smtp

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/infodancer/mailproto/internal/wire"
)

// MechanismStep is what a Mechanism's FirstLine/ReceiveLine produces:
// either a continuation reply to send (a "334 <text>" line), a
// malformed-input signal, or the final decoded credentials.
type MechanismStep struct {
	Reply     string
	Done      bool
	Malformed bool
	UID       string
	PWD       string
}

// Mechanism implements one AUTH mechanism's challenge/response
// exchange with the peer. Registered mechanisms are uppercase, contain
// no spaces, and are at most 71 characters — per spec.md §4.G,
// duplicate or invalid registration is a startup-time bug, not a
// runtime error.
type Mechanism interface {
	Name() string
	FirstLine(extra string) MechanismStep
	ReceiveLine(line []byte) MechanismStep
}

var mechanisms = map[string]func() Mechanism{}

// RegisterMechanism adds a mechanism factory to the process-wide
// registry. It panics on an invalid or duplicate name, matching the
// original's auth_plugin registrar assertions.
func RegisterMechanism(name string, factory func() Mechanism) {
	if name == "" || name != strings.ToUpper(name) || strings.Contains(name, " ") || len(name) > 71 {
		panic(fmt.Sprintf("smtp: invalid AUTH mechanism name %q", name))
	}
	if _, dup := mechanisms[name]; dup {
		panic(fmt.Sprintf("smtp: duplicate AUTH mechanism registration %q", name))
	}
	mechanisms[name] = factory
}

// LookupMechanism returns a fresh Mechanism instance for name, or nil
// if no such mechanism is registered.
func LookupMechanism(name string) Mechanism {
	factory, ok := mechanisms[strings.ToUpper(name)]
	if !ok {
		return nil
	}
	return factory()
}

func init() {
	RegisterMechanism("PLAIN", func() Mechanism { return newPlainMechanism() })
	RegisterMechanism("LOGIN", func() Mechanism { return newLoginMechanism() })
}

// plainMechanism wraps go-sasl's server-side PLAIN state machine. The
// callback it supplies never itself decides accept/reject — it only
// captures the decoded identity for the AUTH coroutine to hand to the
// host as an AuthEvent, keeping the credential decision a host concern
// as spec.md §4.G requires.
type plainMechanism struct {
	server   sasl.Server
	uid, pwd string
}

func newPlainMechanism() *plainMechanism {
	m := &plainMechanism{}
	m.server = sasl.NewPlainServer(func(identity, username, password string) error {
		m.uid, m.pwd = username, password
		return nil
	})
	return m
}

func (m *plainMechanism) Name() string { return "PLAIN" }

func (m *plainMechanism) FirstLine(extra string) MechanismStep {
	if extra == "" {
		return MechanismStep{Reply: ""}
	}
	return m.ReceiveLine([]byte(extra))
}

func (m *plainMechanism) ReceiveLine(b64 []byte) MechanismStep {
	raw, err := wire.B64Decode(string(b64))
	if err != nil {
		return MechanismStep{Malformed: true}
	}
	_, done, err := m.server.Next(raw)
	if err != nil {
		return MechanismStep{Malformed: true}
	}
	if done {
		return MechanismStep{Done: true, UID: m.uid, PWD: m.pwd}
	}
	return MechanismStep{Reply: ""}
}

// loginMechanism is a hand-rolled two-step challenge/response: go-sasl
// has no LOGIN server implementation, so this mirrors the original's
// AuthPlugin_Login directly.
type loginMechanism struct {
	haveUID bool
	uid     string
}

func newLoginMechanism() *loginMechanism { return &loginMechanism{} }

func (m *loginMechanism) Name() string { return "LOGIN" }

func (m *loginMechanism) FirstLine(extra string) MechanismStep {
	return MechanismStep{Reply: wire.B64Encode("Username:")}
}

func (m *loginMechanism) ReceiveLine(b64 []byte) MechanismStep {
	raw, err := wire.B64Decode(string(b64))
	if err != nil {
		return MechanismStep{Malformed: true}
	}
	if !m.haveUID {
		m.haveUID = true
		m.uid = raw
		return MechanismStep{Reply: wire.B64Encode("Password:")}
	}
	return MechanismStep{Done: true, UID: m.uid, PWD: raw}
}
