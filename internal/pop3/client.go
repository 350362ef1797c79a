package pop3

import "github.com/infodancer/mailproto/internal/proto"

// Client drives one POP3 session's worth of client-side coroutines
// against a transport the caller owns. Only Apop is exposed among the
// authentication exchanges: USER/PASS is implemented server-side for
// hosts that need it, but spec.md scopes the client facade to APOP.
type Client struct {
	driver *proto.Driver
	read   func() ([]byte, error)
	write  func([]byte) error
	onTls  func() error

	// Challenge is the APOP challenge string observed in the last
	// Greeting call, if any.
	Challenge string
}

// NewClient builds a Client. read must block for the next wire line;
// write sends outbound bytes; onTls performs the TLS handshake when a
// StartTls exchange succeeds.
func NewClient(read func() ([]byte, error), write func([]byte) error, onTls func() error) *Client {
	return &Client{driver: proto.NewDriver(nil), read: read, write: write, onTls: onTls}
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

// Greeting reads and parses the server's initial +OK/-ERR reply,
// extracting the APOP challenge from the greeting text if present.
func (c *Client) Greeting() (Response, error) {
	req := newGreetingClientRequest()
	if err := c.run(req); err != nil {
		return nil, err
	}
	c.Challenge = extractChallenge(req.Response.Text())
	return req.Response, nil
}

// Capa sends CAPA and returns the advertised capability lines.
func (c *Client) Capa() ([]string, error) {
	req := newCapaClientRequest()
	err := c.run(req)
	return req.Lines, err
}

// Stls sends STLS and, on success, performs the handshake via the
// Client's configured onTls callback.
func (c *Client) Stls() (Response, error) {
	req := newStlsClientRequest()
	err := c.run(req)
	return req.Response, err
}

// Apop authenticates with APOP using the challenge observed at
// Greeting time.
func (c *Client) Apop(uid, pwd string) (Response, error) {
	req := NewApopClient(uid, pwd, c.Challenge)
	err := c.run(req)
	return req.Response, err
}

// Rset sends RSET.
func (c *Client) Rset() (Response, error) {
	req := RsetClient()
	err := c.run(req)
	return req.Response, err
}

// Noop sends NOOP.
func (c *Client) Noop() (Response, error) {
	req := NoopClient()
	err := c.run(req)
	return req.Response, err
}

// Quit sends QUIT; the server closes the connection immediately after
// its reply.
func (c *Client) Quit() (Response, error) {
	req := QuitClient()
	err := c.run(req)
	return req.Response, err
}

// extractChallenge pulls the trailing "<...@...>" token out of a
// greeting's text, or returns "" if none is present.
func extractChallenge(text string) string {
	start := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '<' {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := -1
	for i := start; i < len(text); i++ {
		if text[i] == '>' {
			end = i
			break
		}
	}
	if end < 0 {
		return ""
	}
	return text[start : end+1]
}
