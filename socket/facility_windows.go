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

//go:build windows

package socket

import (
	"fmt"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/windows"

	"github.com/anyks/netcore/network/protocol"
)

func domainAndType(network protocol.NetworkProtocol) (domain, typ, proto int, err error) {
	switch network {
	case protocol.NetworkTCP, protocol.NetworkTCP4:
		return windows.AF_INET, windows.SOCK_STREAM, 0, nil
	case protocol.NetworkTCP6:
		return windows.AF_INET6, windows.SOCK_STREAM, 0, nil
	case protocol.NetworkUDP, protocol.NetworkUDP4:
		return windows.AF_INET, windows.SOCK_DGRAM, 0, nil
	case protocol.NetworkUDP6:
		return windows.AF_INET6, windows.SOCK_DGRAM, 0, nil
	default:
		return 0, 0, 0, fmt.Errorf("socket: unsupported network %q on windows", network.String())
	}
}

func newSocket(network protocol.NetworkProtocol) (Fd, error) {
	domain, typ, proto, err := domainAndType(network)
	if err != nil {
		return -1, err
	}

	h, err := windows.Socket(domain, typ, proto)
	if err != nil {
		return -1, err
	}

	return Fd(h), nil
}

func closeSocket(fd Fd) error {
	return windows.Closesocket(windows.Handle(fd))
}

func setNonblocking(fd Fd, on bool) error {
	var arg uint32
	if on {
		arg = 1
	}
	return windows.IoctlSocket(windows.Handle(fd), windows.FIONBIO, &arg)
}

func setReuseAddr(fd Fd, on bool) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, boolToInt(on))
}

func setIPv6Only(fd Fd, on bool) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_V6ONLY, boolToInt(on))
}

func setKeepAlive(fd Fd, count int, idleSec, intervalSec int) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_KEEPALIVE, 1)
}

// setCork has no Winsock equivalent; Nagle's algorithm is the only knob and
// it is controlled through SetNodelay.
func setCork(fd Fd, on bool) error {
	return nil
}

func setNodelay(fd Fd, on bool) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_TCP, windows.TCP_NODELAY, boolToInt(on))
}

func setBufferSize(fd Fd, side Side, bytes int) error {
	opt := windows.SO_RCVBUF
	if side == SideWrite {
		opt = windows.SO_SNDBUF
	}
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, opt, bytes)
}

func getBufferSize(fd Fd, side Side) (int, error) {
	opt := windows.SO_RCVBUF
	if side == SideWrite {
		opt = windows.SO_SNDBUF
	}
	return windows.GetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, opt)
}

func getPending(fd Fd, side Side) (int, error) {
	if side == SideWrite {
		return 0, nil
	}
	var n uint32
	if err := windows.IoctlSocket(windows.Handle(fd), windows.FIONREAD, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func setTimeout(fd Fd, side Side, ms int) error {
	opt := windows.SO_RCVTIMEO
	if side == SideWrite {
		opt = windows.SO_SNDTIMEO
	}
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, opt, ms)
}

var sigpipeOnce sync.Once

func suppressSIGPIPEOnce() {
	// Winsock has no SIGPIPE concept at all; this exists purely for
	// contract parity with the Unix build.
	sigpipeOnce.Do(func() {})
}

func suppressSIGPIPEOn(fd Fd) error { return nil }

func lastErrorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func errnoOf(err error) int {
	if errno, ok := err.(windows.Errno); ok {
		return int(errno)
	}
	return 0
}

func peerOf(fd Fd) (PeerInfo, error) {
	sa, err := windows.Getpeername(windows.Handle(fd))
	if err != nil {
		return PeerInfo{}, err
	}

	switch v := sa.(type) {
	case *windows.SockaddrInet4:
		return PeerInfo{IP: net.IP(v.Addr[:]).String(), Port: v.Port}, nil
	case *windows.SockaddrInet6:
		return PeerInfo{IP: net.IP(v.Addr[:]).String(), Port: v.Port}, nil
	default:
		return PeerInfo{}, fmt.Errorf("socket: unsupported sockaddr type %T", sa)
	}
}

func ifaceIP(family protocol.NetworkProtocol) (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	wantV6 := family == protocol.NetworkTCP6 || family == protocol.NetworkUDP6 || family == protocol.NetworkIP6

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}

		isV4 := ipNet.IP.To4() != nil
		if family == protocol.NetworkEmpty {
			return ipNet.IP.String(), nil
		}
		if wantV6 && !isV4 {
			return ipNet.IP.String(), nil
		}
		if !wantV6 && isV4 {
			return ipNet.IP.String(), nil
		}
	}

	return "", os.ErrNotExist
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
