package wire

import "testing"

func TestEncodeDecodeASCIIRoundTrip(t *testing.T) {
	b, err := EncodeASCII("EHLO bar.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := DecodeASCII(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "EHLO bar.com" {
		t.Fatalf("got %q", s)
	}
}

func TestEncodeASCIIRejectsHighBit(t *testing.T) {
	if _, err := EncodeASCII("caf\xe9"); err != ErrNonASCII {
		t.Fatalf("want ErrNonASCII, got %v", err)
	}
}

func TestDecodeASCIIRejectsHighBit(t *testing.T) {
	if _, err := DecodeASCII([]byte{0x80}); err != ErrNonASCII {
		t.Fatalf("want ErrNonASCII, got %v", err)
	}
}

func TestB64RoundTrip(t *testing.T) {
	enc := B64Encode("\x00Zaphod\x00Beeblebrox")
	if enc != "AFphcGhvZABCZWVibGVicm94" {
		t.Fatalf("got %q", enc)
	}
	dec, err := B64Decode(enc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec != "\x00Zaphod\x00Beeblebrox" {
		t.Fatalf("got %q", dec)
	}
}

func TestB64DecodeInvalid(t *testing.T) {
	if _, err := B64Decode("not valid base64!!"); err == nil {
		t.Fatal("expected error")
	}
}
