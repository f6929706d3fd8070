/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package transport

import (
	"crypto/tls"
	"net"
	"sync"
	"time"

	liberr "github.com/anyks/netcore/errors"
	"github.com/anyks/netcore/socket"
)

// tlsContext is the TCP realization of Context: a *tls.Conn layered over the
// net.Conn the caller handed to WrapServer/WrapClient.
type tlsContext struct {
	mu sync.Mutex

	raw  net.Conn
	conn *tls.Conn

	role      Role
	wanted    Proto
	negotiated Proto
	status    Status
	encrypted bool
	blocking  bool
	corked    bool
}

func newTLSContext(raw net.Conn, conn *tls.Conn, role Role, proto Proto) *tlsContext {
	return &tlsContext{
		raw:       raw,
		conn:      conn,
		role:      role,
		wanted:    proto,
		status:    StatusConnected,
		encrypted: true,
		blocking:  true,
	}
}

func (c *tlsContext) WaitHandshake() (bool, liberr.Error) {
	if err := c.conn.Handshake(); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		c.status = StatusDisconnected
		return false, ErrorHandshake.Error(err)
	}

	c.negotiated = resolveNegotiated(c.wanted, c.conn.ConnectionState().NegotiatedProtocol)
	return true, nil
}

func (c *tlsContext) Read(buf []byte) (int, liberr.Error) {
	n, fatal, err := ioOutcome(c.conn.Read(buf))
	if fatal {
		c.status = StatusDisconnected
		return 0, ErrorFatal.Error(err)
	}
	return n, nil
}

func (c *tlsContext) Write(buf []byte) (int, liberr.Error) {
	n, fatal, err := ioOutcome(c.conn.Write(buf))
	if fatal {
		c.status = StatusDisconnected
		return 0, ErrorFatal.Error(err)
	}
	return n, nil
}

func (c *tlsContext) SetBlocking(on bool) liberr.Error {
	c.blocking = on
	if on {
		_ = c.raw.SetDeadline(time.Time{})
		return nil
	}
	// A deadline 1ms ahead gives every subsequent Read/Write a
	// near-immediate WANT_READ/WANT_WRITE-style timeout, the Go
	// analogue of BIO_set_nbio plus the session auto-retry flag.
	_ = c.raw.SetDeadline(time.Now().Add(time.Millisecond))
	return nil
}

func (c *tlsContext) SetCork(on bool) liberr.Error {
	c.corked = on
	if on {
		_ = c.conn.SetWriteDeadline(time.Time{})
	}
	return withFd(c.raw, func(fd socket.Fd) error { return socket.SetCork(fd, on) })
}

func (c *tlsContext) SetNodelay(on bool) liberr.Error {
	return withFd(c.raw, func(fd socket.Fd) error { return socket.SetNodelay(fd, on) })
}

func (c *tlsContext) SetTimeout(side socket.Side, ms int) liberr.Error {
	d := time.Duration(ms) * time.Millisecond
	var err error
	switch side {
	case socket.SideRead:
		err = c.raw.SetReadDeadline(time.Now().Add(d))
	case socket.SideWrite:
		err = c.raw.SetWriteDeadline(time.Now().Add(d))
	}
	if err != nil {
		return ErrorSocketOption.Error(err)
	}
	return nil
}

func (c *tlsContext) SetBuffer(readBytes, writeBytes int) liberr.Error {
	if e := withFd(c.raw, func(fd socket.Fd) error { return socket.SetBufferSize(fd, socket.SideRead, readBytes) }); e != nil {
		return e
	}
	return withFd(c.raw, func(fd socket.Fd) error { return socket.SetBufferSize(fd, socket.SideWrite, writeBytes) })
}

func (c *tlsContext) GetBuffer(side socket.Side) (int, liberr.Error) {
	var out int
	e := withFd(c.raw, func(fd socket.Fd) error {
		n, err := socket.GetBufferSize(fd, side)
		out = n
		return err
	})
	return out, e
}

func (c *tlsContext) GetPending(side socket.Side) (int, liberr.Error) {
	var out int
	e := withFd(c.raw, func(fd socket.Fd) error {
		n, err := socket.GetPending(fd, side)
		out = n
		return err
	})
	return out, e
}

func (c *tlsContext) IsEncrypted() bool   { return c.encrypted }
func (c *tlsContext) SetEncrypted(on bool) { c.encrypted = on }

func (c *tlsContext) SetProto(p Proto)      { c.wanted = p }
func (c *tlsContext) NegotiatedProto() Proto { return c.negotiated }

func (c *tlsContext) Status() Status { return c.status }

func (c *tlsContext) Close() error {
	return c.conn.Close()
}
