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

//go:build !linux && !windows && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !solaris && !illumos

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// pollBackend is the portable fallback used on platforms with none of the
// richer multiplexers wired above. It rebuilds the unix.PollFd slice on
// every wait call, which is O(n) per call rather than O(ready) like the
// other three backends; that cost is accepted for this fallback tier in
// exchange for working everywhere unix.Poll is available.
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
	fds := make([]unix.PollFd, 0, len(b.interest))
	for fd, in := range b.interest {
		var events int16
		if in.read {
			events |= unix.POLLIN
		}
		if in.write {
			events |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
	}
	b.mu.Unlock()

	if len(fds) == 0 {
		time.Sleep(timeout)
		return dst, nil
	}

	ms := -1
	if timeout > 0 {
		ms = int(timeout.Milliseconds())
		if ms <= 0 {
			ms = 1
		}
	}

	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, err
	}
	if n == 0 {
		return dst, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range fds {
		if p.Revents == 0 {
			continue
		}
		fd := Fd(p.Fd)
		r := ready{fd: fd, token: b.tokens[fd]}
		r.readOK = p.Revents&(unix.POLLIN|unix.POLLPRI) != 0
		r.writeOK = p.Revents&unix.POLLOUT != 0
		r.closeOK = p.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0
		dst = append(dst, r)
	}

	return dst, nil
}

func (b *pollBackend) close() error {
	return nil
}

func (b *pollBackend) name() string { return "poll" }
