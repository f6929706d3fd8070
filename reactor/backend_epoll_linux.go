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

//go:build linux

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// epollBackend wraps a single epoll instance. Each event carries the fd in
// unix.EpollEvent's Fd field and the low 32 bits of the registration token
// in its Pad field (together they are the C epoll_data union) -- see
// packToken/unpackToken.
type epollBackend struct {
	mu   sync.Mutex
	epfd int
}

func newBackend(maxFds uint32) (backend, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollBackend{epfd: fd}, nil
}

func epollEvents(in backendInterest) uint32 {
	var ev uint32 = unix.EPOLLRDHUP
	if in.read {
		ev |= unix.EPOLLIN
	}
	if in.write {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (b *epollBackend) register(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := &unix.EpollEvent{Events: epollEvents(in)}
	packToken(ev, fd, token)
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, int(fd), ev)
}

func (b *epollBackend) modify(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := &unix.EpollEvent{Events: epollEvents(in)}
	packToken(ev, fd, token)
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, int(fd), ev)
}

func (b *epollBackend) unregister(fd Fd) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (b *epollBackend) wait(timeout time.Duration, dst []ready) ([]ready, error) {
	events := make([]unix.EpollEvent, 256)

	ms := -1
	if timeout > 0 {
		ms = int(timeout.Milliseconds())
		if ms <= 0 {
			ms = 1
		}
	}

	n, err := unix.EpollWait(b.epfd, events, ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, err
	}

	for i := 0; i < n; i++ {
		e := events[i]
		token := unpackToken(&e)
		r := ready{token: token, fd: Fd(e.Fd)}
		r.readOK = e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0
		r.writeOK = e.Events&unix.EPOLLOUT != 0
		r.closeOK = e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0
		dst = append(dst, r)
	}

	return dst, nil
}

func (b *epollBackend) close() error {
	return unix.Close(b.epfd)
}

func (b *epollBackend) name() string { return "epoll" }

// packToken/unpackToken store the descriptor in the EpollEvent's Fd (int32)
// and the low 32 bits of the registration token in Pad (int32). The dispatch
// loop looks entries up by fd; neither field is a pointer into the
// descriptor table, so rehashing the table never invalidates an in-flight
// event.
func packToken(ev *unix.EpollEvent, fd Fd, token uint64) {
	ev.Fd = int32(fd)
	ev.Pad = int32(uint32(token))
}

func unpackToken(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Pad))
}
