package wire

import (
	"bytes"
	"testing"
)

// TestStuffDataS3 replays spec §8 scenario S3. The payload's final
// line is itself a bare "." with no trailing CRLF; per the normative
// algorithm that line is matched by the same "CRLF "." -> CRLF ".."
// scan as the earlier "." line, so it comes out doubled too, and only
// then does the missing-trailing-CRLF step append one more CRLF
// before the terminator. Destuffing recovers it as the single-dot
// line b".\r\n" (see TestDotStuffingRoundTrip), matching spec's
// recovered-lines assertion for this scenario.
func TestStuffDataS3(t *testing.T) {
	payload := []byte("Blah\r\n.<<< Evil\r\nLast\r\n.")
	got := StuffData(payload)
	want := []byte("Blah\r\n..<<< Evil\r\nLast\r\n..\r\n.\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStuffDataAppendsMissingTrailingCRLF(t *testing.T) {
	got := StuffData([]byte("no terminator"))
	want := []byte("no terminator\r\n.\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStuffDataAlreadyTerminated(t *testing.T) {
	got := StuffData([]byte("already there\r\n"))
	want := []byte("already there\r\n.\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStuffDataEmptyPayload(t *testing.T) {
	got := StuffData(nil)
	want := []byte("\r\n.\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

// TestDotStuffingRoundTrip is the bijection property from spec §8.3:
// server-side de-stuffing of the client-side stuffed form recovers the
// original payload's lines.
func TestDotStuffingRoundTrip(t *testing.T) {
	payload := []byte("Blah\r\n.<<< Evil\r\nLast\r\n.")
	stuffed := StuffData(payload)

	var f Framer
	lines, err := f.Feed(stuffed)
	if err != nil {
		t.Fatalf("unexpected framing error: %v", err)
	}

	var body [][]byte
	for _, l := range lines {
		if IsDataTerminator(l) {
			break
		}
		body = append(body, DestuffLine(l))
	}

	want := [][]byte{
		[]byte("Blah\r\n"),
		[]byte(".<<< Evil\r\n"),
		[]byte("Last\r\n"),
		[]byte(".\r\n"),
	}
	if len(body) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(body), len(want), body)
	}
	for i := range want {
		if !bytes.Equal(body[i], want[i]) {
			t.Fatalf("line %d: got %q want %q", i, body[i], want[i])
		}
	}
}

func TestIsDataTerminator(t *testing.T) {
	if !IsDataTerminator([]byte(".\r\n")) {
		t.Fatal("expected terminator to match")
	}
	if IsDataTerminator([]byte("..\r\n")) {
		t.Fatal("stuffed line must not match terminator")
	}
}

func TestDestuffLine(t *testing.T) {
	if got := DestuffLine([]byte("..stuffed\r\n")); string(got) != ".stuffed\r\n" {
		t.Fatalf("got %q", got)
	}
	if got := DestuffLine([]byte("plain\r\n")); string(got) != "plain\r\n" {
		t.Fatalf("got %q", got)
	}
}
