package smtp

import (
	"testing"

	"github.com/infodancer/mailproto/internal/wire"
)

func TestPlainMechanismInline(t *testing.T) {
	m := LookupMechanism("PLAIN")
	blob := wire.B64Encode("\x00Zaphod\x00Beeblebrox")
	step := m.FirstLine(blob)
	if !step.Done || step.UID != "Zaphod" || step.PWD != "Beeblebrox" {
		t.Fatalf("unexpected step: %+v", step)
	}
}

func TestPlainMechanismTwoStep(t *testing.T) {
	m := LookupMechanism("PLAIN")
	first := m.FirstLine("")
	if first.Done || first.Malformed {
		t.Fatalf("expected a continuation prompt, got %+v", first)
	}
	blob := wire.B64Encode("\x00Zaphod\x00Beeblebrox")
	second := m.ReceiveLine([]byte(blob))
	if !second.Done || second.UID != "Zaphod" || second.PWD != "Beeblebrox" {
		t.Fatalf("unexpected step: %+v", second)
	}
}

func TestPlainMechanismMalformedBase64(t *testing.T) {
	m := LookupMechanism("PLAIN")
	step := m.FirstLine("not valid base64!!")
	if !step.Malformed {
		t.Fatal("expected malformed step for invalid base64")
	}
}

func TestLoginMechanism(t *testing.T) {
	m := LookupMechanism("LOGIN")
	first := m.FirstLine("")
	if first.Reply != wire.B64Encode("Username:") {
		t.Fatalf("unexpected first prompt: %q", first.Reply)
	}
	second := m.ReceiveLine([]byte(wire.B64Encode("Zaphod")))
	if second.Done || second.Reply != wire.B64Encode("Password:") {
		t.Fatalf("unexpected second step: %+v", second)
	}
	third := m.ReceiveLine([]byte(wire.B64Encode("Beeblebrox")))
	if !third.Done || third.UID != "Zaphod" || third.PWD != "Beeblebrox" {
		t.Fatalf("unexpected third step: %+v", third)
	}
}

func TestLoginMechanismMalformedBase64(t *testing.T) {
	m := LookupMechanism("LOGIN")
	m.FirstLine("")
	step := m.ReceiveLine([]byte("not valid base64!!"))
	if !step.Malformed {
		t.Fatal("expected malformed step for invalid base64 username")
	}
}

func TestLookupMechanismUnknown(t *testing.T) {
	if LookupMechanism("CRAM-MD5") != nil {
		t.Fatal("expected nil for an unregistered mechanism")
	}
}

func TestRegisterMechanismRejectsInvalidNames(t *testing.T) {
	cases := []string{"", "plain", "WITH SPACE", string(make([]byte, 72))}
	for _, name := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic registering %q", name)
				}
			}()
			RegisterMechanism(name, func() Mechanism { return newPlainMechanism() })
		}()
	}
}
