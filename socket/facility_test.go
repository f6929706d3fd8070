/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package socket_test

import (
	"context"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anyks/netcore/network/protocol"
	"github.com/anyks/netcore/socket"
)

var _ = Describe("Socket Facilities", func() {
	Context("raw fd lifecycle", func() {
		It("creates and closes a TCP4 socket", func() {
			fd, err := socket.New(protocol.NetworkTCP4)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = socket.Close(fd) }()

			Expect(socket.SetNonblocking(fd, true)).To(Succeed())
			Expect(socket.SetReuseAddr(fd, true)).To(Succeed())
		})

		It("rejects an unsupported network", func() {
			_, err := socket.New(protocol.NetworkIP)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("buffer sizing", func() {
		It("round-trips a send buffer size close to what was requested", func() {
			fd, err := socket.New(protocol.NetworkTCP4)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = socket.Close(fd) }()

			Expect(socket.SetBufferSize(fd, socket.SideWrite, 65536)).To(Succeed())

			got, err := socket.GetBufferSize(fd, socket.SideWrite)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(BeNumerically(">=", 65536))
		})
	})

	Context("peer introspection", func() {
		It("reports the remote endpoint of a connected socket", func() {
			ln, err := net.Listen("tcp4", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = ln.Close() }()

			accepted := make(chan net.Conn, 1)
			go func() {
				c, _ := ln.Accept()
				accepted <- c
			}()

			conn, err := net.Dial("tcp4", ln.Addr().String())
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = conn.Close() }()

			server := <-accepted
			defer func() { _ = server.Close() }()

			tcpConn, ok := conn.(*net.TCPConn)
			Expect(ok).To(BeTrue())

			raw, err := tcpConn.SyscallConn()
			Expect(err).ToNot(HaveOccurred())

			var peer socket.PeerInfo
			var peerErr error
			Expect(raw.Control(func(fd uintptr) {
				peer, peerErr = socket.PeerOf(socket.Fd(fd))
			})).To(Succeed())
			Expect(peerErr).ToNot(HaveOccurred())
			Expect(peer.Port).To(BeNumerically(">", 0))
		})
	})

	Context("Dial/Listen helpers", func() {
		It("applies facility options through a ListenConfig.Control hook", func() {
			ln, err := socket.Listen(context.Background(), protocol.NetworkTCP4, "127.0.0.1:0", socket.Options{ReuseAddr: true})
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = ln.Close() }()

			conn, err := socket.Dial(context.Background(), protocol.NetworkTCP4, ln.Addr().String(), socket.Options{NoDelay: true})
			Expect(err).ToNot(HaveOccurred())
			_ = conn.Close()
		})
	})
})
