package smtp

import "github.com/infodancer/mailproto/internal/proto"

// Handlers lets a host override the accept/reject decision for every
// AcceptReject event this package raises. Methods left nil fall back
// to the package's defaults: greeting/HELO/EHLO auto-accept, EXPN/VRFY
// auto-reject, and AUTH/MAIL FROM/RCPT TO/DATA/STARTTLS-accept require
// an explicit implementation since there is no safe default for them.
type Handlers struct {
	OnGreeting  func(*GreetingEvent)
	OnHelo      func(*HeloEvent)
	OnEhlo      func(*EhloEvent)
	OnStartTls  func(*StartTlsEvent)
	OnAuth      func(*AuthEvent)
	OnExpn      func(*ExpnEvent)
	OnVrfy      func(*VrfyEvent)
	OnMailFrom  func(*MailFromEvent)
	OnRcptTo    func(*RcptToEvent)
	OnComplete  func(*CompleteEvent)
	OnStartTlsBegin func() error

	// OnCommand, if set, is called once per dispatched command line
	// with its verb, before the verb is looked up or validated. It
	// never affects the reply; it exists for hosts that want to
	// observe command traffic (e.g. for metrics).
	OnCommand func(verb string)
}

func defaultGreeting(e *GreetingEvent)  { e.Accept() }
func defaultHelo(e *HeloEvent)          { e.Accept() }
func defaultEhlo(e *EhloEvent)          { e.Accept() }
func defaultExpn(e *ExpnEvent)          { e.Reject(0, "") }
func defaultVrfy(e *VrfyEvent)          { e.Reject(0, "") }

// Server drives one SMTP session's worth of Dispatch-routed coroutines
// against a Handlers set. The caller owns the transport: it feeds
// Server.Receive with bytes read off the wire and writes whatever
// Server's EventSink callback hands it back out.
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
// coroutine, the one exchange the server initiates rather than the
// client.
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
	case *GreetingEvent:
		if s.Handlers.OnGreeting != nil {
			s.Handlers.OnGreeting(e)
		} else {
			defaultGreeting(e)
		}
	case *HeloEvent:
		if s.Handlers.OnHelo != nil {
			s.Handlers.OnHelo(e)
		} else {
			defaultHelo(e)
		}
	case *EhloEvent:
		if s.Handlers.OnEhlo != nil {
			s.Handlers.OnEhlo(e)
		} else {
			defaultEhlo(e)
		}
	case *StartTlsEvent:
		if s.Handlers.OnStartTls != nil {
			s.Handlers.OnStartTls(e)
		} else {
			e.Reject(0, "")
		}
	case *AuthEvent:
		if s.Handlers.OnAuth != nil {
			s.Handlers.OnAuth(e)
		} else {
			e.Reject(0, "")
		}
	case *ExpnEvent:
		if s.Handlers.OnExpn != nil {
			s.Handlers.OnExpn(e)
		} else {
			defaultExpn(e)
		}
	case *VrfyEvent:
		if s.Handlers.OnVrfy != nil {
			s.Handlers.OnVrfy(e)
		} else {
			defaultVrfy(e)
		}
	case *MailFromEvent:
		if s.Handlers.OnMailFrom != nil {
			s.Handlers.OnMailFrom(e)
		} else {
			e.Reject(0, "")
		}
	case *RcptToEvent:
		if s.Handlers.OnRcptTo != nil {
			s.Handlers.OnRcptTo(e)
		} else {
			e.Reject(0, "")
		}
	case *CompleteEvent:
		if s.Handlers.OnComplete != nil {
			s.Handlers.OnComplete(e)
		} else {
			e.Reject(0, "")
		}
	}
	return nil
}
