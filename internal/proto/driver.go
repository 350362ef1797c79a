package proto

import "github.com/infodancer/mailproto/internal/wire"

// Outcome tags what a single Step call produced, the Go analogue of
// resuming a Python generator past a yield, a raised Response, or an
// uncaught exception.
type Outcome int

const (
	// NeedData suspends the coroutine until the driver supplies the
	// next line.
	NeedData Outcome = iota
	// Yield hands an Event upward through the driver to the facade's
	// handler before the coroutine is stepped again.
	Yield
	// Done terminates the coroutine successfully; any Response it
	// produced has already been recorded on the concrete Request type
	// the caller holds a reference to.
	Done
	// SendTerminal terminates a server-side coroutine with one last
	// outbound SendData event (the final wire reply) that must be
	// delivered before the connection accepts its next command.
	SendTerminal
	// Fail terminates the coroutine with a fatal error.
	Fail
)

// Input is what the driver feeds into a coroutine's next Step call: a
// newly received line when resuming from NeedData, or a re-injected
// handler failure (the Go analogue of the original's `error_info`
// re-raise at the coroutine's next resumption point).
type Input struct {
	Line []byte
	Err  error
}

// Step is what a single state-machine transition returns.
type Step struct {
	Outcome Outcome
	Event   Event // set when Outcome is Yield or SendTerminal
	Err     error // set when Outcome is Fail
}

// Coroutine is a hand-rolled state machine implementing one verb's
// client-side or server-side logic, per spec.md §9's "Result-style
// Step" design note. Step must be called repeatedly — first with a
// zero Input to start it running — until it returns Done,
// SendTerminal, or Fail.
type Coroutine interface {
	Step(in Input) Step
}

// Dispatch constructs the server-side coroutine to drive for a freshly
// received command line when no request is currently in progress. It
// returns either a coroutine to run, or a terminal Event the dispatcher
// wants sent immediately without starting one (an unknown verb or a
// TLS-policy violation reply), or a fatal error.
type Dispatch func(line []byte) (co Coroutine, immediate Event, err error)

// EventSink receives one Event at a time, synchronously, so the caller
// can resolve an AcceptReject Decision or forward SendData bytes before
// the coroutine is stepped again. Returning a non-nil error simulates a
// host callback failure and is re-injected into the coroutine at its
// very next Step call, matching the original's error_info semantics.
type EventSink func(Event) error

// Driver is the protocol-agnostic pump described by component E: it
// frames incoming bytes into lines and steps whichever coroutine is
// active, translating outcomes into calls on an EventSink. The same
// Driver type drives both client and server roles and both SMTP and
// POP3, parameterized only by the Dispatch function (nil on the client
// side, which always starts its own coroutine via StartClient).
type Driver struct {
	framer   wire.Framer
	dispatch Dispatch
	current  Coroutine
}

// NewDriver builds a Driver. Pass a nil dispatch for a client-role
// driver; StartClient installs the coroutine for each request instead.
func NewDriver(dispatch Dispatch) *Driver {
	return &Driver{dispatch: dispatch}
}

// Busy reports whether a coroutine is currently in progress (waiting
// on NeedData or mid-pump); callers must not start a new client
// request while true.
func (d *Driver) Busy() bool { return d.current != nil }

// StartClient installs a client-side coroutine and begins pumping it.
func (d *Driver) StartClient(co Coroutine, sink EventSink) error {
	if d.current != nil {
		return NewClosed("internal error: request already in progress")
	}
	d.current = co
	return d.pump(Input{}, sink)
}

// Receive feeds newly read transport bytes into the driver, routing
// each complete line to the active coroutine or, on the server side,
// to a freshly dispatched one. An empty/nil data slice signals EOF.
func (d *Driver) Receive(data []byte, sink EventSink) error {
	lines, ferr := d.framer.Feed(data)
	for _, line := range lines {
		if err := d.receiveLine(line, sink); err != nil {
			return err
		}
	}
	if ferr != nil {
		if ferr == wire.ErrClosed {
			return NewClosed("EOF")
		}
		return WrapClosed(ferr)
	}
	return nil
}

func (d *Driver) receiveLine(line []byte, sink EventSink) error {
	if d.current != nil {
		return d.pump(Input{Line: line}, sink)
	}
	if d.dispatch == nil {
		return NewClosed("internal error: no active request and no dispatcher")
	}
	co, immediate, err := d.dispatch(line)
	if err != nil {
		return err
	}
	if co == nil {
		if immediate != nil {
			return sink(immediate)
		}
		return nil
	}
	d.current = co
	return d.pump(Input{}, sink)
}

func (d *Driver) pump(in Input, sink EventSink) error {
	for {
		step := d.current.Step(in)
		in = Input{}
		switch step.Outcome {
		case NeedData:
			return nil
		case Yield:
			if err := sink(step.Event); err != nil {
				in = Input{Err: err}
				continue
			}
			continue
		case Done:
			d.current = nil
			return nil
		case SendTerminal:
			d.current = nil
			return sink(step.Event)
		case Fail:
			d.current = nil
			return WrapClosed(step.Err)
		default:
			d.current = nil
			return NewClosed("INTERNAL ERROR")
		}
	}
}
