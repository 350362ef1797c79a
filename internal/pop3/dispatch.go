package pop3

import "github.com/infodancer/mailproto/internal/proto"

// newDispatch builds the POP3-specific Dispatch closure: unknown verbs
// and TLS-policy violations get an immediate reply without installing
// a coroutine, exactly mirroring the SMTP dispatcher's shape.
// onCommand, if non-nil, is called once per dispatched line with its
// verb, letting a host observe command traffic (e.g. for metrics)
// without the core importing a metrics package itself.
func newDispatch(sess *Session, onCommand func(string)) proto.Dispatch {
	return func(line []byte) (proto.Coroutine, proto.Event, error) {
		verb, argtext := parseCommandLine(line)
		if onCommand != nil {
			onCommand(verb)
		}
		spec, ok := verbRegistry[verb]
		if !ok {
			return nil, errLine("command not recognized"), nil
		}
		if spec.tlsExcluded && sess.TLS {
			return nil, errLine("command not permitted when TLS active"), nil
		}
		return spec.build(sess, argtext), nil, nil
	}
}
