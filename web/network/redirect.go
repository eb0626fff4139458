// Package network wraps the TLS listener so plain HTTP requests sent to the
// HTTPS port are answered with a redirect instead of a handshake error.
package network

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"sync"
)

// tlsHandshake is the first byte of a TLS record carrying a handshake.
const tlsHandshake = 0x16

// RedirectListener hands out connections that redirect plain HTTP to HTTPS.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(l net.Listener) net.Listener {
	return &RedirectListener{Listener: l}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &redirectConn{Conn: conn}, nil
}

// redirectConn peeks at the first read. A TLS client hello passes through
// untouched; anything that parses as an HTTP request gets a 307 and the
// connection is closed.
type redirectConn struct {
	net.Conn

	once    sync.Once
	pending []byte
	err     error
}

func (c *redirectConn) peek() {
	buf := make([]byte, 2048)
	n, err := c.Conn.Read(buf)
	c.pending = buf[:n]
	if err != nil {
		c.err = err
		return
	}
	if n == 0 || buf[0] == tlsHandshake {
		return
	}

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(c.pending)))
	if err != nil {
		return
	}
	resp := http.Response{
		StatusCode: http.StatusTemporaryRedirect,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
	}
	resp.Header.Set("Location", fmt.Sprintf("https://%s%s", req.Host, req.RequestURI))
	resp.Header.Set("Connection", "close")
	_ = resp.Write(c.Conn)
	_ = c.Conn.Close()
	c.pending = nil
	c.err = net.ErrClosed
}

func (c *redirectConn) Read(b []byte) (int, error) {
	c.once.Do(c.peek)

	if len(c.pending) > 0 {
		n := copy(b, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	if c.err != nil {
		return 0, c.err
	}
	return c.Conn.Read(b)
}
