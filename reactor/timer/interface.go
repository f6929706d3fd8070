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

// Package timer provides the two portable timer realizations the reactor
// package wires into a backend as an ordinary readable descriptor: a native
// timerfd on Linux, and a self-pipe fed by a sleeper goroutine everywhere
// else. The kqueue backend does not use this package at all -- it realizes
// timers natively via EVFILT_TIMER (see reactor's backend_kqueue_bsd.go).
package timer

import "time"

// Source is one timer realized as a file descriptor the caller can hand to
// a readiness backend like any other fd. A single expiry (or a burst of
// coalesced expiries, for repeating timers serviced late) is signaled by the
// fd becoming readable; Consume drains the pending count so the descriptor
// is ready to report the next expiry under edge-triggered semantics.
type Source interface {
	// Fd is the descriptor to register with a reactor backend for Read
	// interest.
	Fd() int

	// Arm schedules the first expiry after delay, repeating every delay
	// thereafter when repeat is true; a zero delay is rejected by the
	// caller before Arm is ever reached.
	Arm(delay time.Duration, repeat bool) error

	// Disarm cancels any pending expiry without closing the descriptor.
	Disarm() error

	// Consume reads and returns the number of expiries coalesced since the
	// last call, clearing the fd's readiness.
	Consume() (uint64, error)

	// Close releases the descriptor and any goroutine backing it.
	Close() error
}

// New creates the platform-appropriate Source: a timerfd on Linux, a
// self-pipe-backed sleeper everywhere else.
func New() (Source, error) {
	return newSource()
}
