package smtp

import "github.com/infodancer/mailproto/internal/proto"

// newDispatch builds the proto.Dispatch the driver uses to start a new
// server-side coroutine whenever no request is in progress: parse the
// verb, look it up, apply the TLS policy checks spec.md §4.E assigns
// to the driver, then hand off to the verb's own coroutine
// constructor. onCommand, if non-nil, is called once per dispatched
// line with its verb, letting a host observe command traffic (e.g.
// for metrics) without the core importing a metrics package itself.
func newDispatch(sess *Session, onCommand func(string)) proto.Dispatch {
	return func(line []byte) (proto.Coroutine, proto.Event, error) {
		verb, argtext := parseCommandLine(line)
		if onCommand != nil {
			onCommand(verb)
		}
		spec, ok := verbRegistry[verb]
		if !ok {
			return nil, sendLine(500, "Command not recognized"), nil
		}
		if spec.tlsRequired && !sess.TLS {
			return nil, sendLine(530, "Must issue a STARTTLS command first"), nil
		}
		if spec.tlsExcluded && sess.TLS {
			return nil, sendLine(503, "Command not permitted when TLS active"), nil
		}
		return spec.build(sess, argtext), nil, nil
	}
}
