package smtp

import "github.com/infodancer/mailproto/internal/proto"

// Client drives one SMTP session's worth of client-side coroutines
// against a transport the caller owns. Each exported method runs its
// coroutine to completion, returning the parsed Response or an error.
type Client struct {
	driver *proto.Driver
	read   func() ([]byte, error)
	write  func([]byte) error
	onTls  func() error
}

// NewClient builds a Client. read must block for the next wire line
// (CRLF-terminated bytes); write sends outbound bytes; onTls performs
// the TLS handshake when a StartTls exchange succeeds.
func NewClient(read func() ([]byte, error), write func([]byte) error, onTls func() error) *Client {
	return &Client{driver: proto.NewDriver(nil), read: read, write: write, onTls: onTls}
}

// asError converts a terminal Response into the error a Client method
// should return: non-nil only when the peer rejected the command, so
// callers get the typed ErrorResponse (spec.md §7's "error reply from
// peer raised to caller"). ErrorResponse is the only Response that
// also satisfies the error interface, so the type assertion alone
// distinguishes it from the success-shaped reply types.
func asError(resp Response) error {
	if resp == nil {
		return nil
	}
	if err, ok := resp.(error); ok {
		return err
	}
	return nil
}

func (c *Client) run(co proto.Coroutine) error {
	sink := func(ev proto.Event) error {
		switch e := ev.(type) {
		case proto.SendData:
			for _, chunk := range e.Chunks {
				if err := c.write(chunk); err != nil {
					return err
				}
			}
			return nil
		case proto.StartTlsBegin:
			if c.onTls != nil {
				return c.onTls()
			}
			return nil
		}
		return nil
	}
	if err := c.driver.StartClient(co, sink); err != nil {
		return err
	}
	for c.driver.Busy() {
		line, err := c.read()
		if err != nil {
			return err
		}
		if err := c.driver.Receive(line, sink); err != nil {
			return err
		}
	}
	return nil
}

// Greeting reads and parses the server's initial 220/554 reply.
func (c *Client) Greeting() (Response, error) {
	req := newGreetingClientRequest()
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Helo sends HELO and returns the parsed reply.
func (c *Client) Helo(domain string) (Response, error) {
	req := HeloClient(domain)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Ehlo sends EHLO and returns the aggregated multi-line reply.
func (c *Client) Ehlo(domain string) (Response, error) {
	req := newEhloClientRequest(domain)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// StartTls sends STARTTLS and, on success, performs the handshake via
// the Client's configured onTls callback before returning.
func (c *Client) StartTls() (Response, error) {
	req := newStartTlsClientRequest()
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// AuthPlain authenticates with the inline single-line AUTH PLAIN form.
func (c *Client) AuthPlain(uid, pwd string) (Response, error) {
	req := NewAuthPlainClient(uid, pwd)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// AuthLogin authenticates with the two-step AUTH LOGIN exchange.
func (c *Client) AuthLogin(uid, pwd string) (Response, error) {
	req := NewAuthLoginClient(uid, pwd)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Expn sends EXPN and returns the aggregated mailbox-enumeration
// reply; on success the concrete type is *ExpnResponse.
func (c *Client) Expn(mailbox string) (Response, error) {
	req := ExpnClient(mailbox)
	if err := c.run(req); err != nil {
		return nil, err
	}
	if req.code >= 400 {
		resp := newSimpleResponse(req.code, req.Lines)
		return resp, asError(resp)
	}
	return &ExpnResponse{baseResponse: baseResponse{code: req.code, lines: req.Lines}, Mailboxes: req.Lines}, nil
}

// Vrfy sends VRFY and returns the aggregated mailbox-enumeration
// reply; on success the concrete type is *VrfyResponse.
func (c *Client) Vrfy(mailbox string) (Response, error) {
	req := VrfyClient(mailbox)
	if err := c.run(req); err != nil {
		return nil, err
	}
	if req.code >= 400 {
		resp := newSimpleResponse(req.code, req.Lines)
		return resp, asError(resp)
	}
	return &VrfyResponse{baseResponse: baseResponse{code: req.code, lines: req.Lines}, Mailboxes: req.Lines}, nil
}

// MailFrom sends MAIL FROM:<addr>.
func (c *Client) MailFrom(addr string) (Response, error) {
	req := MailFromClient(addr)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// RcptTo sends RCPT TO:<addr>.
func (c *Client) RcptTo(addr string) (Response, error) {
	req := RcptToClient(addr)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Data sends DATA followed by the dot-stuffed payload.
func (c *Client) Data(payload []byte) (Response, error) {
	req := NewDataClient(payload)
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Rset sends RSET.
func (c *Client) Rset() (Response, error) {
	req := RsetClient()
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Noop sends NOOP.
func (c *Client) Noop() (Response, error) {
	req := NoopClient()
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}

// Quit sends QUIT and returns the server's single reply line. The
// server closes the connection right after that reply; Quit does not
// read past it.
func (c *Client) Quit() (Response, error) {
	req := QuitClient()
	if err := c.run(req); err != nil {
		return nil, err
	}
	return req.Response, asError(req.Response)
}
