package pop3

import "testing"

func TestParseStatusLineOK(t *testing.T) {
	ok, text, err := parseStatusLine([]byte("+OK maildrop has 2 messages\r\n"))
	if err != nil || !ok || text != "maildrop has 2 messages" {
		t.Fatalf("got ok=%v text=%q err=%v", ok, text, err)
	}
}

func TestParseStatusLineErr(t *testing.T) {
	ok, text, err := parseStatusLine([]byte("-ERR permission denied\r\n"))
	if err != nil || ok || text != "permission denied" {
		t.Fatalf("got ok=%v text=%q err=%v", ok, text, err)
	}
}

func TestParseStatusLineBareStatus(t *testing.T) {
	ok, text, err := parseStatusLine([]byte("+OK\r\n"))
	if err != nil || !ok || text != "" {
		t.Fatalf("got ok=%v text=%q err=%v", ok, text, err)
	}
}

func TestParseStatusLineMalformed(t *testing.T) {
	if _, _, err := parseStatusLine([]byte("HELLO\r\n")); err == nil {
		t.Fatal("expected error for missing +OK/-ERR prefix")
	}
}

func TestApopDigestMatchesRFCExample(t *testing.T) {
	got := ApopDigest("<1896.697170952@dbc.mtview.ca.us>", "tanstaaf")
	want := "c4c9334bac560ecc979e58001b3e22fb"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExtractChallenge(t *testing.T) {
	got := extractChallenge("POP3 server ready <1896.697170952@dbc.mtview.ca.us>")
	if got != "<1896.697170952@dbc.mtview.ca.us>" {
		t.Fatalf("got %q", got)
	}
	if extractChallenge("POP3 server ready") != "" {
		t.Fatal("expected empty challenge when none present")
	}
}
