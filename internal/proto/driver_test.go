package proto

import (
	"reflect"
	"testing"
)

// recorder is a tiny scripted Coroutine used to exercise the Driver pump
// without any real SMTP/POP3 verb logic.
type recorder struct {
	steps []Step
	calls []Input
}

func (r *recorder) Step(in Input) Step {
	r.calls = append(r.calls, in)
	s := r.steps[0]
	r.steps = r.steps[1:]
	return s
}

func TestDriverPumpsUntilNeedData(t *testing.T) {
	var sunk []Event
	co := &recorder{steps: []Step{
		{Outcome: Yield, Event: SendData{Chunks: [][]byte{[]byte("220 hi\r\n")}}},
		{Outcome: NeedData},
	}}
	d := NewDriver(nil)
	err := d.StartClient(co, func(e Event) error {
		sunk = append(sunk, e)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sunk) != 1 {
		t.Fatalf("want 1 sunk event, got %d", len(sunk))
	}
	if !d.Busy() {
		t.Fatal("driver should still be busy awaiting NeedData")
	}
}

func TestDriverResumesOnReceivedLine(t *testing.T) {
	co := &recorder{steps: []Step{
		{Outcome: NeedData},
		{Outcome: Done},
	}}
	d := NewDriver(nil)
	if err := d.StartClient(co, func(Event) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Receive([]byte("250 OK\r\n"), func(Event) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Busy() {
		t.Fatal("driver should be idle after Done")
	}
	if len(co.calls) != 2 || string(co.calls[1].Line) != "250 OK\r\n" {
		t.Fatalf("unexpected calls: %+v", co.calls)
	}
}

func TestDriverSendTerminalEndsCoroutine(t *testing.T) {
	term := SendData{Chunks: [][]byte{[]byte("221 bye\r\n")}}
	co := &recorder{steps: []Step{{Outcome: SendTerminal, Event: term}}}
	d := NewDriver(func(line []byte) (Coroutine, Event, error) { return co, nil, nil })
	var got Event
	if err := d.Receive([]byte("QUIT\r\n"), func(e Event) error {
		got = e
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, term) {
		t.Fatalf("expected terminal event delivered, got %v", got)
	}
	if d.Busy() {
		t.Fatal("driver should be idle after SendTerminal")
	}
}

func TestDriverFailWrapsClosed(t *testing.T) {
	co := &recorder{steps: []Step{{Outcome: Fail, Err: NewClosed("boom")}}}
	d := NewDriver(nil)
	err := d.StartClient(co, func(Event) error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*Closed); !ok {
		t.Fatalf("expected *Closed, got %T: %v", err, err)
	}
}

func TestDriverReinjectsHandlerError(t *testing.T) {
	co := &recorder{steps: []Step{
		{Outcome: Yield, Event: StartTlsBegin{}},
		{Outcome: Done},
	}}
	d := NewDriver(nil)
	handlerErr := NewClosed("tls failed")
	calls := 0
	err := d.StartClient(co, func(Event) error {
		calls++
		if calls == 1 {
			return handlerErr
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(co.calls) != 2 || co.calls[1].Err != handlerErr {
		t.Fatalf("handler error was not re-injected: %+v", co.calls)
	}
}

func TestDriverEOFWithNoBufferClosesConnection(t *testing.T) {
	d := NewDriver(nil)
	err := d.Receive(nil, func(Event) error { return nil })
	if err == nil {
		t.Fatal("expected error on EOF with nothing buffered")
	}
	if _, ok := err.(*Closed); !ok {
		t.Fatalf("expected *Closed, got %T", err)
	}
}

func TestDriverUnknownDispatchEmitsImmediateEvent(t *testing.T) {
	immediate := SendData{Chunks: [][]byte{[]byte("500 unknown command\r\n")}}
	d := NewDriver(func(line []byte) (Coroutine, Event, error) { return nil, immediate, nil })
	var got Event
	if err := d.Receive([]byte("BOGUS\r\n"), func(e Event) error {
		got = e
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, immediate) {
		t.Fatalf("expected immediate event, got %v", got)
	}
	if d.Busy() {
		t.Fatal("driver should stay idle for an immediate reply")
	}
}
