package pop3

import "github.com/infodancer/mailproto/internal/proto"

// Handlers lets a host override the accept/reject decision for every
// AcceptReject event this package raises. Methods left nil fall back
// to rejecting, except the greeting/challenge pair which default to
// accepting with no APOP support, matching spec.md §6's defaults.
type Handlers struct {
	OnApopChallenge func(*ApopChallengeEvent)
	OnGreeting      func(*GreetingAcceptEvent)
	OnStartTls      func(*StartTlsAcceptEvent)
	OnApopAuth      func(*ApopAuthEvent)
	OnLockMaildrop  func(*LockMaildropEvent)
	OnUser          func(*UserEvent)
	OnPass          func(*PassEvent)
	OnStartTlsBegin func() error

	// OnCommand, if set, is called once per dispatched command line
	// with its verb, before the verb is looked up or validated. It
	// never affects the reply; it exists for hosts that want to
	// observe command traffic (e.g. for metrics).
	OnCommand func(verb string)
}

// Server drives one POP3 session's worth of Dispatch-routed coroutines
// against a Handlers set.
type Server struct {
	Session  *Session
	Handlers Handlers
	driver   *proto.Driver
	write    func([]byte) error
}

// NewServer builds a Server bound to sess and a write function the
// EventSink uses to flush SendData chunks to the transport.
func NewServer(sess *Session, handlers Handlers, write func([]byte) error) *Server {
	s := &Server{Session: sess, Handlers: handlers, write: write}
	s.driver = proto.NewDriver(newDispatch(sess, handlers.OnCommand))
	return s
}

// SendGreeting starts the connection by driving the GREETING
// coroutine.
func (s *Server) SendGreeting() error {
	return s.driver.StartClient(newGreetingServerRequest(s.Session), s.sink)
}

// Receive feeds newly read bytes into the driver.
func (s *Server) Receive(data []byte) error {
	return s.driver.Receive(data, s.sink)
}

func (s *Server) sink(ev proto.Event) error {
	switch e := ev.(type) {
	case proto.SendData:
		for _, chunk := range e.Chunks {
			if err := s.write(chunk); err != nil {
				return err
			}
		}
		return nil
	case proto.StartTlsBegin:
		if s.Handlers.OnStartTlsBegin != nil {
			return s.Handlers.OnStartTlsBegin()
		}
		return nil
	case *ApopChallengeEvent:
		if s.Handlers.OnApopChallenge != nil {
			s.Handlers.OnApopChallenge(e)
		} else {
			e.Accept()
		}
	case *GreetingAcceptEvent:
		if s.Handlers.OnGreeting != nil {
			s.Handlers.OnGreeting(e)
		} else {
			e.Accept()
		}
	case *StartTlsAcceptEvent:
		if s.Handlers.OnStartTls != nil {
			s.Handlers.OnStartTls(e)
		} else {
			e.Reject(0, "")
		}
	case *ApopAuthEvent:
		if s.Handlers.OnApopAuth != nil {
			s.Handlers.OnApopAuth(e)
		} else {
			e.Reject(0, "")
		}
	case *LockMaildropEvent:
		if s.Handlers.OnLockMaildrop != nil {
			s.Handlers.OnLockMaildrop(e)
		} else {
			e.Reject(0, "")
		}
	case *UserEvent:
		if s.Handlers.OnUser != nil {
			s.Handlers.OnUser(e)
		} else {
			e.Reject(0, "")
		}
	case *PassEvent:
		if s.Handlers.OnPass != nil {
			s.Handlers.OnPass(e)
		} else {
			e.Reject(0, "")
		}
	}
	return nil
}
