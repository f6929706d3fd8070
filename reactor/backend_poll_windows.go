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

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/windows"
)

// pollBackend is the Windows fallback, built on WSAPoll. Windows gets no
// edge-triggered native multiplexer in this package (IOCP would require a
// fundamentally different completion-based dispatch loop than the
// readiness-based one this package is built around), so it shares the
// "rebuild the poll set every wait" tradeoff with the generic POSIX
// fallback.
type pollBackend struct {
	mu       sync.Mutex
	interest map[Fd]backendInterest
	tokens   map[Fd]uint64
}

func newBackend(maxFds uint32) (backend, error) {
	return &pollBackend{
		interest: make(map[Fd]backendInterest, maxFds),
		tokens:   make(map[Fd]uint64, maxFds),
	}, nil
}

func (b *pollBackend) register(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.interest[fd] = in
	b.tokens[fd] = token
	return nil
}

func (b *pollBackend) modify(token uint64, fd Fd, in backendInterest) error {
	return b.register(token, fd, in)
}

func (b *pollBackend) unregister(fd Fd) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.interest, fd)
	delete(b.tokens, fd)
	return nil
}

func (b *pollBackend) wait(timeout time.Duration, dst []ready) ([]ready, error) {
	b.mu.Lock()
	fds := make([]windows.WSAPollFd, 0, len(b.interest))
	for fd, in := range b.interest {
		var events int16
		if in.read {
			events |= windows.POLLIN
		}
		if in.write {
			events |= windows.POLLOUT
		}
		fds = append(fds, windows.WSAPollFd{Fd: windows.Handle(fd), Events: events})
	}
	b.mu.Unlock()

	if len(fds) == 0 {
		time.Sleep(timeout)
		return dst, nil
	}

	ms := int32(-1)
	if timeout > 0 {
		ms = int32(timeout.Milliseconds())
		if ms <= 0 {
			ms = 1
		}
	}

	n, err := windows.WSAPoll(fds, ms)
	if err != nil {
		return dst, err
	}
	if n == 0 {
		return dst, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range fds {
		if p.REvents == 0 {
			continue
		}
		fd := Fd(p.Fd)
		r := ready{fd: fd, token: b.tokens[fd]}
		r.readOK = p.REvents&windows.POLLIN != 0
		r.writeOK = p.REvents&windows.POLLOUT != 0
		r.closeOK = p.REvents&(windows.POLLHUP|windows.POLLERR) != 0
		dst = append(dst, r)
	}

	return dst, nil
}

func (b *pollBackend) close() error {
	return nil
}

func (b *pollBackend) name() string { return "wsapoll" }
