// Package proto implements the protocol-agnostic core shared by the
// SMTP and POP3 engines: the tagged event model, the AcceptReject
// decision type, the Closed fatal-signal error, and the driver that
// pumps a verb's hand-rolled state machine. Nothing in this package
// knows about any specific verb, wire format, or transport.
package proto

// Event is the tagged-variant marker every value a coroutine yields
// must satisfy: outbound bytes, a TLS upgrade signal, or a semantic
// AcceptReject decision point. A request for more input is not an
// Event; a coroutine signals it with the NeedData Step outcome.
type Event interface {
	// eventTag is unexported so Event stays closed to this package's
	// variants plus whatever AcceptReject-derived events the smtp and
	// pop3 packages define by embedding Decision.
	eventTag()
}

// SendData carries outbound bytes a transport must write, in order.
type SendData struct {
	Chunks [][]byte
}

func (SendData) eventTag() {}

// StartTlsBegin signals the transport that the next bytes exchanged on
// the connection must be wrapped in TLS. It is yielded after the
// server's go-ahead reply (or the client's acknowledgement) has been
// flushed to the wire.
type StartTlsBegin struct{}

func (StartTlsBegin) eventTag() {}

// eventBase lets concrete AcceptReject event types embed Decision and
// satisfy Event without repeating the marker method; smtp/pop3 package
// event types get it by embedding Decision, which embeds eventBase.
type eventBase struct{}

func (eventBase) eventTag() {}
