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

// Package reactor implements a single-thread-owned, edge-triggered event loop
// that multiplexes sockets, timers and cross-thread wake-ups on top of one of
// four kernel readiness backends (epoll, kqueue, event ports, or a portable
// poll/select fallback).
//
// A Reactor is created with New, populated with Add, mutated with
// SetInterest and Del, and driven by Start on whichever goroutine is meant to
// become its owner. Every other method except Kick is only safe to call from
// that owner goroutine; Kick is the sole cross-thread entry point.
package reactor

import (
	"io"

	liberr "github.com/anyks/netcore/errors"
)

// EventKind identifies the kind of readiness being reported to a callback.
type EventKind uint8

const (
	// Read is reported when a stream fd has bytes to consume or a timer fd
	// has fired.
	Read EventKind = iota
	// Write is reported when a stream fd can accept more bytes without
	// blocking.
	Write
	// Close is reported on peer hangup or a fatal socket error, provided
	// Close interest is Enabled for the entry; otherwise the Reactor
	// unregisters the entry silently.
	Close
	// Timer is reported for a timer entry whose Timer interest is Enabled,
	// once per expiry (or once per coalesced expiry count).
	Timer
)

func (k EventKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case Close:
		return "close"
	case Timer:
		return "timer"
	default:
		return "unknown"
	}
}

// Mode toggles one interest bit of an entry on or off.
type Mode uint8

const (
	Disabled Mode = iota
	Enabled
)

// Kind distinguishes the three flavors of descriptor an entry can wrap.
type Kind uint8

const (
	KindStream Kind = iota
	KindTimer
	KindPipe
)

// Fd is a raw OS file descriptor. On Windows it is a socket handle cast to
// an int; the backends that run there (poll/select) treat it the same way
// the unix backends treat a Berkeley socket fd.
type Fd int

// CallbackFunc is invoked on the reactor's owner goroutine whenever a
// registered interest fires. id is the registration token captured at Add
// time so a callback can tell whether it is still looking at the entry it
// was registered for after a reentrant Del/Add pair.
type CallbackFunc func(id uint64, fd Fd, kind EventKind)

// Reactor is the public contract of the event loop.
type Reactor interface {
	io.Closer

	// Add registers fd with the given callback and interest set. For Timer
	// entries (delayNS > 0), fd is ignored on input and overwritten with the
	// backend's newly created timer descriptor. Re-adding an id that is
	// already registered only updates its callback and is idempotent.
	Add(id uint64, fd *Fd, cb CallbackFunc, delayNS uint64, repeating bool, interest ...EventKind) bool

	// Del removes the entry for (id, fd) entirely. A timer entry's descriptor
	// is closed; a stream or pipe descriptor is unregistered from the backend
	// but left open for its owner to close.
	Del(id uint64, fd Fd) bool

	// DelKind disables a single interest kind; the entry is fully removed
	// once its remaining interest set is empty (or only a disabled Close).
	DelKind(id uint64, fd Fd, kind EventKind) bool

	// SetInterest toggles a single interest bit for (id, fd).
	SetInterest(id uint64, fd Fd, kind EventKind, mode Mode) bool

	// Start runs the dispatch loop on the calling goroutine until Stop is
	// observed. It blocks until the loop exits.
	Start() liberr.Error

	// Stop requests the dispatch loop to exit after its next wake and
	// releases every registered descriptor.
	Stop()

	// Kick is the only method safe to call from a goroutine other than the
	// owner: it wakes the dispatch loop out of a blocking backend wait via
	// the reactor's self-pipe, so a cross-thread Add/Del/SetInterest call
	// (itself forbidden off the owner goroutine) takes effect without
	// waiting for the next natural readiness event.
	Kick()

	// Rebase tears down and recreates the backend in place (e.g. after
	// fork), reinstalling every live entry's interest on the fresh backend.
	// Forbidden off the owner goroutine.
	Rebase() liberr.Error

	// Freeze pauses dispatch: while true, the loop skips the backend wait
	// and sleeps a fixed 100ms tick instead of polling.
	Freeze(on bool)

	// Easy enables or disables easy mode: while on, the backend wait is
	// capped at Frequency (10ms when none is set) and the loop sleeps
	// Frequency after every iteration regardless of readiness, trading
	// latency for a predictable CPU cap.
	Easy(on bool)

	// SetFrequency sets the easy-mode pacing interval in milliseconds.
	SetFrequency(ms uint32)

	IsRunning() bool
	OnOwnerThread() bool

	// Len reports the number of live entries, mostly useful for tests and
	// metrics.
	Len() int
}
