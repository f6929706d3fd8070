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

// Package socket hides the platform differences of raw descriptor options
// behind a uniform surface: non-blocking mode, SO_REUSEADDR, IPv6-only,
// keepalive tuning, cork/nodelay, buffer sizing, pending-byte introspection,
// SIGPIPE suppression and peer/interface introspection. Every operation
// reports failure through an error instead of aborting; the caller decides
// whether a failed option call is fatal to the descriptor it targets.
package socket

import "github.com/anyks/netcore/network/protocol"

// Side selects which direction of a full-duplex descriptor an operation
// targets.
type Side uint8

const (
	SideRead Side = iota
	SideWrite
)

// Fd is a raw OS socket descriptor, shared with the reactor package's own Fd
// type in spirit (both are thin aliases of the kernel's int/HANDLE) but kept
// distinct so socket has no import-time dependency on reactor.
type Fd int

// PeerInfo is the result of PeerOf: the remote endpoint of a connected
// descriptor. PeerOf fills IP and Port; it never fills MAC, which is empty
// on every platform.
type PeerInfo struct {
	IP   string
	Port int
	MAC  string
}

// New creates a socket for the given network (as returned by
// protocol.NetworkProtocol.String, e.g. "tcp4", "udp6", "unix") and returns
// its raw descriptor. Callers that only need a net.Conn/net.Listener should
// prefer Dial/Listen, which apply these same options through a
// net.ListenConfig.Control hook instead of hand-rolling bind/listen.
func New(network protocol.NetworkProtocol) (Fd, error) {
	return newSocket(network)
}

// Close releases fd.
func Close(fd Fd) error {
	return closeSocket(fd)
}

func SetNonblocking(fd Fd, on bool) error { return setNonblocking(fd, on) }
func SetReuseAddr(fd Fd, on bool) error   { return setReuseAddr(fd, on) }
func SetIPv6Only(fd Fd, on bool) error    { return setIPv6Only(fd, on) }

// SetKeepAlive enables TCP keepalive with the given probe count, idle time
// before the first probe, and interval between probes (all in seconds).
func SetKeepAlive(fd Fd, count int, idleSec, intervalSec int) error {
	return setKeepAlive(fd, count, idleSec, intervalSec)
}

func SetCork(fd Fd, on bool) error     { return setCork(fd, on) }
func SetNodelay(fd Fd, on bool) error  { return setNodelay(fd, on) }

func SetBufferSize(fd Fd, side Side, bytes int) error { return setBufferSize(fd, side, bytes) }
func GetBufferSize(fd Fd, side Side) (int, error)     { return getBufferSize(fd, side) }

// GetPending reports the number of bytes currently queued on side without
// consuming them (SO_NREAD-equivalent on the read side via FIONREAD; the
// write side always reports 0).
func GetPending(fd Fd, side Side) (int, error) { return getPending(fd, side) }

// SetTimeout sets a read or write deadline in milliseconds, 0 meaning no
// timeout (SO_RCVTIMEO/SO_SNDTIMEO).
func SetTimeout(fd Fd, side Side, ms int) error { return setTimeout(fd, side, ms) }

// SuppressSIGPIPE installs the process-wide SIGPIPE-ignoring disposition
// exactly once; Go's runtime already ignores SIGPIPE for regular writes; on
// Unix this is therefore a documented no-op kept for contract parity with
// platforms (and languages) where it genuinely matters, and so callers
// porting code from such a platform have a symmetrical call to make.
func SuppressSIGPIPE() { suppressSIGPIPEOnce() }

// SuppressSIGPIPEOn sets SO_NOSIGPIPE on fd where the platform supports it
// (Darwin, FreeBSD, NetBSD, DragonFly); it returns ErrorUnsupported on
// OpenBSD and is a no-op everywhere else.
func SuppressSIGPIPEOn(fd Fd) error { return suppressSIGPIPEOn(fd) }

// LastErrorText formats err the way the platform's strerror would.
func LastErrorText(err error) string { return lastErrorText(err) }

// Errno extracts the platform errno carried by err, or 0 if err does not
// wrap one.
func Errno(err error) int { return errnoOf(err) }

// PeerOf reports the remote endpoint of a connected descriptor.
func PeerOf(fd Fd) (PeerInfo, error) { return peerOf(fd) }

// IfaceIP returns the first non-loopback address bound to any interface
// matching family (the tcp6/udp6/ip6 families narrow the search to IPv6,
// protocol.NetworkEmpty accepts either family, and every other family
// narrows it to IPv4).
func IfaceIP(family protocol.NetworkProtocol) (string, error) { return ifaceIP(family) }
