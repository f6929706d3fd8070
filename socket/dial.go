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

package socket

import (
	"context"
	"net"
	"syscall"

	"github.com/anyks/netcore/network/protocol"
)

// Options carries the facility settings Listen/Dial apply to every
// descriptor they create, through a net.ListenConfig/net.Dialer Control
// hook -- this is how the package gets SO_REUSEADDR and friends onto a
// net.Listener/net.Conn's fd without hand-rolling bind/listen/connect, while
// still reusing the same option functions the raw Fd-based API exposes.
type Options struct {
	ReuseAddr bool
	IPv6Only  bool
	NoDelay   bool
	KeepAlive KeepAliveOptions
}

type KeepAliveOptions struct {
	Enabled  bool
	Count    int
	IdleSec  int
	Interval int
}

func (o Options) control(_ string, _ string, c syscall.RawConn) error {
	var setupErr error
	err := c.Control(func(fd uintptr) {
		sysfd := Fd(fd)
		if o.ReuseAddr {
			if e := SetReuseAddr(sysfd, true); e != nil {
				setupErr = e
			}
		}
		if o.IPv6Only {
			_ = SetIPv6Only(sysfd, true)
		}
		if o.NoDelay {
			_ = SetNodelay(sysfd, true)
		}
		if o.KeepAlive.Enabled {
			_ = SetKeepAlive(sysfd, o.KeepAlive.Count, o.KeepAlive.IdleSec, o.KeepAlive.Interval)
		}
	})
	if err != nil {
		return err
	}
	return setupErr
}

// Listen creates a listener for network (per protocol.NetworkProtocol's
// net-package-compatible name) at addr, applying opts to the underlying
// descriptor before it starts accepting.
func Listen(ctx context.Context, network protocol.NetworkProtocol, addr string, opts Options) (net.Listener, error) {
	lc := net.ListenConfig{Control: opts.control}
	return lc.Listen(ctx, network.String(), addr)
}

// ListenPacket is Listen's datagram counterpart, used for UDP and the DTLS
// transport's listening socket.
func ListenPacket(ctx context.Context, network protocol.NetworkProtocol, addr string, opts Options) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: opts.control}
	return lc.ListenPacket(ctx, network.String(), addr)
}

// Dial connects to addr over network, applying opts to the descriptor
// before the connection attempt begins.
func Dial(ctx context.Context, network protocol.NetworkProtocol, addr string, opts Options) (net.Conn, error) {
	d := net.Dialer{Control: opts.control}
	return d.DialContext(ctx, network.String(), addr)
}
