package wire

import "bytes"

// dataTerminator is the line that ends an SMTP DATA body (and any
// dot-terminated POP3 multi-line response, such as CAPA's).
var dataTerminator = []byte(".\r\n")

// StuffData applies SMTP DATA dot-stuffing to an outbound payload,
// returning the exact bytes to place on the wire after the initial
// "DATA\r\n"/354 exchange, terminator included. Per the normative
// algorithm: every occurrence of CRLF "." is replaced with CRLF "..";
// if the payload doesn't already end in CRLF one is appended; then the
// terminator ".\r\n" is appended.
func StuffData(payload []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(payload) + 8)

	rest := payload
	for {
		idx := bytes.Index(rest, []byte("\r\n."))
		if idx < 0 {
			out.Write(rest)
			break
		}
		out.Write(rest[:idx+2]) // up to and including CRLF
		out.WriteByte('.')      // stuffed extra dot
		out.WriteByte('.')      // the original dot
		rest = rest[idx+3:]
	}

	if out.Len() < 2 || !bytes.HasSuffix(out.Bytes(), []byte("\r\n")) {
		out.WriteString("\r\n")
	}
	out.Write(dataTerminator)
	return out.Bytes()
}

// IsDataTerminator reports whether line is the bare ".\r\n" that ends a
// DATA body (or any other dot-terminated multi-line POP3 response).
func IsDataTerminator(line []byte) bool {
	return bytes.Equal(line, dataTerminator)
}

// DestuffLine removes a single leading stuffed '.' from an inbound DATA
// (or multi-line response) line, per the inbound half of dot-stuffing:
// a line whose first byte is '.' has that byte removed before storage.
// Lines not starting with '.' are returned unchanged.
func DestuffLine(line []byte) []byte {
	if len(line) > 0 && line[0] == '.' {
		return line[1:]
	}
	return line
}
