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

//go:build solaris || illumos

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// eventPortBackend multiplexes over a single event port. Unlike epoll/kqueue,
// PORT_SOURCE_FD associations are one-shot: the kernel drops the association
// the instant it fires, so every successful Wait must re-associate any fd it
// still cares about before the next call. The backend tracks each fd's
// last-registered interest so it can redo the PortAssociate call
// transparently.
type eventPortBackend struct {
	mu   sync.Mutex
	port int

	interest map[Fd]backendInterest
	tokens   map[Fd]uint64
}

func newBackend(maxFds uint32) (backend, error) {
	fd, err := unix.PortCreate()
	if err != nil {
		return nil, err
	}
	return &eventPortBackend{
		port:     fd,
		interest: make(map[Fd]backendInterest, maxFds),
		tokens:   make(map[Fd]uint64, maxFds),
	}, nil
}

func portEvents(in backendInterest) int {
	var ev int
	if in.read {
		ev |= unix.POLLIN
	}
	if in.write {
		ev |= unix.POLLOUT
	}
	return ev
}

func (b *eventPortBackend) associate(fd Fd, token uint64, in backendInterest) error {
	if in.read || in.write {
		if err := unix.PortAssociate(b.port, unix.PORT_SOURCE_FD, int(fd), portEvents(in), nil); err != nil {
			return err
		}
	}
	b.interest[fd] = in
	b.tokens[fd] = token
	return nil
}

func (b *eventPortBackend) register(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.associate(fd, token, in)
}

func (b *eventPortBackend) modify(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A previously armed association that has not fired yet must be
	// dissociated before it can be re-armed with a different event mask.
	_ = unix.PortDissociate(b.port, unix.PORT_SOURCE_FD, int(fd))
	return b.associate(fd, token, in)
}

func (b *eventPortBackend) unregister(fd Fd) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.interest, fd)
	delete(b.tokens, fd)

	err := unix.PortDissociate(b.port, unix.PORT_SOURCE_FD, int(fd))
	if err == unix.ENOENT {
		return nil
	}
	return err
}

// registerTimer posts a PORT_SOURCE_USER event keyed by userID. Its
// signature is not the reactor's nativeTimerBackend one, so the reactor never
// calls it: on this backend every timer goes through the portable
// reactor/timer source, each with its own descriptor.
func (b *eventPortBackend) registerTimer(userID uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return unix.PortSend(b.port, unix.PORT_SOURCE_USER, int(userID))
}

func (b *eventPortBackend) wait(timeout time.Duration, dst []ready) ([]ready, error) {
	events := make([]unix.PortEvent, 256)

	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	n := 1
	err := unix.PortGetn(b.port, events, uint32(len(events)), &n, ts)
	if err != nil {
		if err == unix.ETIME || err == unix.EINTR {
			return dst, nil
		}
		return dst, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < n; i++ {
		e := events[i]

		switch e.Source {
		case unix.PORT_SOURCE_USER:
			dst = append(dst, ready{token: uint64(e.Events), fd: -1, readOK: true})

		case unix.PORT_SOURCE_FD:
			fd := Fd(e.Object)
			r := ready{fd: fd, token: b.tokens[fd]}
			r.readOK = e.Events&unix.POLLIN != 0
			r.writeOK = e.Events&unix.POLLOUT != 0
			r.closeOK = e.Events&(unix.POLLHUP|unix.POLLERR) != 0
			dst = append(dst, r)

			// Re-arm the one-shot association for whatever interest the
			// caller last asked for, unless it was explicitly dropped.
			if in, ok := b.interest[fd]; ok && (in.read || in.write) {
				_ = unix.PortAssociate(b.port, unix.PORT_SOURCE_FD, int(fd), portEvents(in), nil)
			}
		}
	}

	return dst, nil
}

func (b *eventPortBackend) close() error {
	return unix.Close(b.port)
}

func (b *eventPortBackend) name() string { return "eventport" }
