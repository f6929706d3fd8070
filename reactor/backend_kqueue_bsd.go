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

//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// kqueueBackend multiplexes over a single kqueue descriptor. Read and write
// interest are tracked as independent filters (EVFILT_READ / EVFILT_WRITE)
// since kqueue has no single combined-interest call like epoll_ctl MOD; a
// toggle from {read} to {read,write} is expressed as one EV_ADD per filter
// plus one EV_DELETE for the filter being dropped.
//
// Timer entries also ride this same kqueue instance via EVFILT_TIMER, keyed
// by the entry's timerUser identifier, which is the native timer realization
// this backend uses for all timer delivery on BSD family kernels.
type kqueueBackend struct {
	mu  sync.Mutex
	kfd int

	interest map[Fd]backendInterest
}

func newBackend(maxFds uint32) (backend, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	if _, err = unix.Kevent(fd, nil, nil, nil); err != nil && err != unix.EINTR {
		// harmless probe; some kqueue(2) implementations want at least one
		// call before Wait to settle kernel-side state.
	}
	return &kqueueBackend{kfd: fd, interest: make(map[Fd]backendInterest, maxFds)}, nil
}

func (b *kqueueBackend) apply(fd Fd, want backendInterest) error {
	have := b.interest[fd]

	var changes []unix.Kevent_t

	if want.read && !have.read {
		changes = append(changes, mkEvent(fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE))
	} else if !want.read && have.read {
		changes = append(changes, mkEvent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	}

	if want.write && !have.write {
		changes = append(changes, mkEvent(fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_ENABLE))
	} else if !want.write && have.write {
		changes = append(changes, mkEvent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}

	if len(changes) == 0 {
		b.interest[fd] = want
		return nil
	}

	if _, err := unix.Kevent(b.kfd, changes, nil, nil); err != nil {
		return err
	}

	b.interest[fd] = want
	return nil
}

func mkEvent(fd Fd, filter int16, flags uint16) unix.Kevent_t {
	return unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: flags}
}

func (b *kqueueBackend) register(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// token is intentionally unused here: kqueue reports back the raw fd
	// (Ident), not a user-data token, so the dispatch loop maps fd -> entry
	// directly instead of token -> entry on this backend.
	_ = token
	return b.apply(fd, in)
}

func (b *kqueueBackend) modify(token uint64, fd Fd, in backendInterest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = token
	return b.apply(fd, in)
}

func (b *kqueueBackend) unregister(fd Fd) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.interest, fd)

	changes := []unix.Kevent_t{
		mkEvent(fd, unix.EVFILT_READ, unix.EV_DELETE),
		mkEvent(fd, unix.EVFILT_WRITE, unix.EV_DELETE),
	}
	// EV_DELETE on a filter that was never added returns ENOENT; kqueue(2)
	// aborts the whole changelist batch on the first error, so issue them
	// one at a time and swallow ENOENT/EBADF so a double unregister of the
	// same fd is harmless.
	for _, c := range changes {
		if _, err := unix.Kevent(b.kfd, []unix.Kevent_t{c}, nil, nil); err != nil {
			if err == unix.ENOENT || err == unix.EBADF {
				continue
			}
			return err
		}
	}
	return nil
}

// registerTimer arms a one-shot or repeating EVFILT_TIMER event keyed by
// userID, expressed in milliseconds as kqueue's native unit.
func (b *kqueueBackend) registerTimer(userID uint64, delayMS uint64, repeat bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if !repeat {
		flags |= unix.EV_ONESHOT
	}

	ev := unix.Kevent_t{
		Ident:  userID,
		Filter: unix.EVFILT_TIMER,
		Flags:  flags,
		Data:   int64(delayMS),
	}

	_, err := unix.Kevent(b.kfd, []unix.Kevent_t{ev}, nil, nil)
	return err
}

func (b *kqueueBackend) unregisterTimer(userID uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := unix.Kevent_t{Ident: userID, Filter: unix.EVFILT_TIMER, Flags: unix.EV_DELETE}
	if _, err := unix.Kevent(b.kfd, []unix.Kevent_t{ev}, nil, nil); err != nil {
		if err == unix.ENOENT {
			return nil
		}
		return err
	}
	return nil
}

func (b *kqueueBackend) wait(timeout time.Duration, dst []ready) ([]ready, error) {
	events := make([]unix.Kevent_t, 256)

	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	n, err := unix.Kevent(b.kfd, nil, events, ts)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, err
	}

	for i := 0; i < n; i++ {
		e := events[i]

		if e.Filter == unix.EVFILT_TIMER {
			dst = append(dst, ready{token: e.Ident, fd: -1, readOK: true})
			continue
		}

		r := ready{fd: Fd(e.Ident)}
		switch e.Filter {
		case unix.EVFILT_READ:
			r.readOK = true
		case unix.EVFILT_WRITE:
			r.writeOK = true
		}
		if e.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0 {
			r.closeOK = true
		}
		dst = append(dst, r)
	}

	return dst, nil
}

func (b *kqueueBackend) close() error {
	return unix.Close(b.kfd)
}

func (b *kqueueBackend) name() string { return "kqueue" }
