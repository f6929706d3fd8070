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

package reactor_test

import (
	"net"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anyks/netcore/reactor"
)

func rawFd(c net.Conn) reactor.Fd {
	sc, ok := c.(interface {
		SyscallConn() (interface {
			Control(f func(fd uintptr)) error
		}, error)
	})
	Expect(ok).To(BeTrue())

	raw, err := sc.SyscallConn()
	Expect(err).ToNot(HaveOccurred())

	var fd reactor.Fd
	Expect(raw.Control(func(p uintptr) { fd = reactor.Fd(p) })).To(Succeed())
	return fd
}

var _ = Describe("Reactor", func() {
	var r reactor.Reactor

	BeforeEach(func() {
		var e error
		r, e = reactor.New(&reactor.Config{MaxFds: 64}, nil)
		Expect(e).To(BeNil())
	})

	AfterEach(func() {
		Expect(r.Close()).To(Succeed())
	})

	Context("echo server scenario", func() {
		It("delivers Read events for bytes written by the peer", func() {
			ln, err := net.Listen("tcp4", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = ln.Close() }()

			accepted := make(chan net.Conn, 1)
			go func() {
				c, _ := ln.Accept()
				accepted <- c
			}()

			client, err := net.Dial("tcp4", ln.Addr().String())
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = client.Close() }()

			server := <-accepted
			defer func() { _ = server.Close() }()

			var reads atomic.Int32
			fd := rawFd(server)
			ok := r.Add(1, &fd, func(id uint64, fd reactor.Fd, kind reactor.EventKind) {
				if kind == reactor.Read {
					reads.Add(1)
				}
			}, 0, false, reactor.Read, reactor.Close)
			Expect(ok).To(BeTrue())

			go func() { _ = r.Start() }()
			defer r.Stop()

			_, err = client.Write([]byte("ping"))
			Expect(err).ToNot(HaveOccurred())

			Eventually(func() int32 { return reads.Load() }, "2s", "10ms").Should(BeNumerically(">=", 1))
		})
	})

	Context("one-shot timer", func() {
		It("fires exactly once", func() {
			var fires atomic.Int32
			var fd reactor.Fd

			ok := r.Add(2, &fd, func(id uint64, fd reactor.Fd, kind reactor.EventKind) {
				if kind == reactor.Timer {
					fires.Add(1)
				}
			}, uint64(20*time.Millisecond), false, reactor.Timer)
			Expect(ok).To(BeTrue())

			go func() { _ = r.Start() }()
			defer r.Stop()

			Eventually(func() int32 { return fires.Load() }, "1s", "10ms").Should(Equal(int32(1)))
			Consistently(func() int32 { return fires.Load() }, "200ms", "20ms").Should(Equal(int32(1)))
		})
	})

	Context("repeating timer with later disable", func() {
		It("stops firing once Timer interest is disabled", func() {
			var fires atomic.Int32
			var fd reactor.Fd

			ok := r.Add(3, &fd, func(id uint64, fd reactor.Fd, kind reactor.EventKind) {
				if kind == reactor.Timer {
					fires.Add(1)
				}
			}, uint64(15*time.Millisecond), true, reactor.Timer)
			Expect(ok).To(BeTrue())

			go func() { _ = r.Start() }()
			defer r.Stop()

			Eventually(func() int32 { return fires.Load() }, "1s", "10ms").Should(BeNumerically(">=", 2))

			r.DelKind(3, fd, reactor.Timer)
			stopped := fires.Load()

			Consistently(func() int32 { return fires.Load() }, "150ms", "20ms").Should(Equal(stopped))
		})
	})

	Context("Kick from another goroutine", func() {
		It("wakes the dispatch loop without error", func() {
			go func() { _ = r.Start() }()
			defer r.Stop()

			Eventually(func() bool { return r.IsRunning() }, "1s", "10ms").Should(BeTrue())

			Expect(func() { r.Kick() }).ToNot(Panic())
		})
	})
})
