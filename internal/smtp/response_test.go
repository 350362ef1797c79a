package smtp

import (
	"testing"
)

func TestParseLineFinalAndIntermediate(t *testing.T) {
	code, final, text, err := parseLine([]byte("250 OK\r\n"))
	if err != nil || code != 250 || !final || text != "OK" {
		t.Fatalf("got %d %v %q err=%v", code, final, text, err)
	}
	code, final, text, err = parseLine([]byte("250-PIPELINING\r\n"))
	if err != nil || code != 250 || final || text != "PIPELINING" {
		t.Fatalf("got %d %v %q err=%v", code, final, text, err)
	}
}

func TestParseLineMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte("2X0 bad\r\n"),
		[]byte("199 too low\r\n"),
		[]byte("600 too high\r\n"),
		[]byte("250xOK\r\n"),
		[]byte("25\r\n"),
	}
	for _, c := range cases {
		if _, _, _, err := parseLine(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestParseSingleRejectsContinuation(t *testing.T) {
	if _, err := ParseSingle([]byte("250-more to come\r\n")); err == nil {
		t.Fatal("expected error for unexpected continuation line")
	}
}

func TestParseEhloTextLineFeaturesAndAuth(t *testing.T) {
	ehlo := &EhloResponse{Features: map[string]string{}, AuthMechanisms: map[string]bool{}}
	parseEhloTextLine("SIZE 1048576", ehlo)
	parseEhloTextLine("PIPELINING", ehlo)
	parseEhloTextLine("AUTH PLAIN LOGIN", ehlo)

	if ehlo.Features["SIZE"] != "1048576" {
		t.Fatalf("got %q", ehlo.Features["SIZE"])
	}
	if _, ok := ehlo.Features["PIPELINING"]; !ok {
		t.Fatal("expected PIPELINING feature recorded")
	}
	if !ehlo.AuthMechanisms["PLAIN"] || !ehlo.AuthMechanisms["LOGIN"] {
		t.Fatalf("got %v", ehlo.AuthMechanisms)
	}
}

func TestErrorResponseErrorString(t *testing.T) {
	e := ErrorResponse{baseResponse{code: 550, lines: []string{"No such user here"}}}
	if e.Error() != "550 No such user here" {
		t.Fatalf("got %q", e.Error())
	}
	if e.IsSuccess() {
		t.Fatal("ErrorResponse must not report success")
	}
}
