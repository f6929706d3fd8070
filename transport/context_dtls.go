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
	"net"
	"time"

	"github.com/pion/dtls/v2"

	liberr "github.com/anyks/netcore/errors"
	"github.com/anyks/netcore/socket"
)

// dtlsListenContext is the RoleServerListenDTLS realization: it owns the
// shared listening UDP socket and admits peers one at a time via Attach,
// and stays open across however many peers it admits.
type dtlsListenContext struct {
	ln   net.Listener
	addr string
}

func (c *dtlsListenContext) WaitHandshake() (bool, liberr.Error) { return true, nil }
func (c *dtlsListenContext) Read([]byte) (int, liberr.Error)     { return 0, ErrorClosed.Error(nil) }
func (c *dtlsListenContext) Write([]byte) (int, liberr.Error)    { return 0, ErrorClosed.Error(nil) }
func (c *dtlsListenContext) SetBlocking(bool) liberr.Error       { return nil }
func (c *dtlsListenContext) SetCork(bool) liberr.Error           { return nil }
func (c *dtlsListenContext) SetNodelay(bool) liberr.Error        { return nil }
func (c *dtlsListenContext) SetTimeout(socket.Side, int) liberr.Error { return nil }
func (c *dtlsListenContext) SetBuffer(int, int) liberr.Error     { return nil }
func (c *dtlsListenContext) GetBuffer(socket.Side) (int, liberr.Error)  { return 0, nil }
func (c *dtlsListenContext) GetPending(socket.Side) (int, liberr.Error) { return 0, nil }
func (c *dtlsListenContext) IsEncrypted() bool                  { return true }
func (c *dtlsListenContext) SetEncrypted(bool)                  {}
func (c *dtlsListenContext) SetProto(Proto)                     {}
func (c *dtlsListenContext) NegotiatedProto() Proto              { return ProtoNone }
func (c *dtlsListenContext) Status() Status                      { return StatusConnected }
func (c *dtlsListenContext) Close() error                        { return c.ln.Close() }

// dtlsContext is a single admitted DTLS peer, produced by Attach.
type dtlsContext struct {
	conn   *dtls.Conn
	wanted Proto
	negotiated Proto
	status Status
}

func (c *dtlsContext) WaitHandshake() (bool, liberr.Error) {
	// pion/dtls completes its handshake inside Listen's Accept/Client
	// call; by the time a dtlsContext exists the session is already
	// established, so WaitHandshake only needs to record ALPN outcome.
	c.negotiated = resolveNegotiated(c.wanted, c.conn.ConnectionState().NegotiatedProtocol)
	return true, nil
}

func (c *dtlsContext) Read(buf []byte) (int, liberr.Error) {
	n, fatal, err := ioOutcome(c.conn.Read(buf))
	if fatal {
		c.status = StatusDisconnected
		return 0, ErrorFatal.Error(err)
	}
	return n, nil
}

func (c *dtlsContext) Write(buf []byte) (int, liberr.Error) {
	n, fatal, err := ioOutcome(c.conn.Write(buf))
	if fatal {
		c.status = StatusDisconnected
		return 0, ErrorFatal.Error(err)
	}
	return n, nil
}

func (c *dtlsContext) SetBlocking(on bool) liberr.Error {
	if on {
		return dtlsErr(c.conn.SetDeadline(time.Time{}))
	}
	return dtlsErr(c.conn.SetDeadline(time.Now().Add(time.Millisecond)))
}

// DTLS rides over a datagram socket: cork/nodelay have no Nagle-style
// counterpart there, so both are no-ops.
func (c *dtlsContext) SetCork(bool) liberr.Error    { return nil }
func (c *dtlsContext) SetNodelay(bool) liberr.Error { return nil }

func (c *dtlsContext) SetTimeout(side socket.Side, ms int) liberr.Error {
	d := time.Duration(ms) * time.Millisecond
	switch side {
	case socket.SideRead:
		return dtlsErr(c.conn.SetReadDeadline(time.Now().Add(d)))
	case socket.SideWrite:
		return dtlsErr(c.conn.SetWriteDeadline(time.Now().Add(d)))
	}
	return nil
}

func (c *dtlsContext) SetBuffer(int, int) liberr.Error            { return nil }
func (c *dtlsContext) GetBuffer(socket.Side) (int, liberr.Error)  { return 0, nil }
func (c *dtlsContext) GetPending(socket.Side) (int, liberr.Error) { return 0, nil }

func (c *dtlsContext) IsEncrypted() bool    { return true }
func (c *dtlsContext) SetEncrypted(on bool) {}

func (c *dtlsContext) SetProto(p Proto)      { c.wanted = p }
func (c *dtlsContext) NegotiatedProto() Proto { return c.negotiated }

func (c *dtlsContext) Status() Status { return c.status }
func (c *dtlsContext) Close() error   { return c.conn.Close() }

func dtlsErr(err error) liberr.Error {
	if err == nil {
		return nil
	}
	return ErrorSocketOption.Error(err)
}
