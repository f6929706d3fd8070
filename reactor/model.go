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

package reactor

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/google/uuid"
)

// entry is one record of the descriptor table. It is never exposed outside
// the package; callers only ever see the Fd and the token they passed to
// Add.
type entry struct {
	id       uint64
	fd       Fd
	peerFd   Fd // companion fd for self-pipe timers; -1 when unused
	kind     Kind
	interest map[EventKind]Mode
	delayNS  uint64
	repeat   bool
	cb       CallbackFunc

	// timerUser is the random identifier minted for this timer
	// (randomCounterSeed); the kqueue backend keys its EVFILT_TIMER event by
	// it, so two concurrently active timers never share an identifier.
	timerUser uint64
}

func newInterestSet(kinds ...EventKind) map[EventKind]Mode {
	m := make(map[EventKind]Mode, 4)
	for _, k := range kinds {
		m[k] = Enabled
	}
	return m
}

// isEmptyInterest reports whether the interest set should cause the entry to
// be dropped: no Read/Write/Timer bits, and Close either absent or Disabled.
func isEmptyInterest(m map[EventKind]Mode) bool {
	for k, v := range m {
		if v != Enabled {
			continue
		}
		if k == Close {
			continue
		}
		return false
	}
	return true
}

// tokenSalt is a process-wide random value, drawn once from a UUID, that
// randomCounterSeed falls back to when the CSPRNG cannot be read.
// Registration ids are not derived from it: they are the ids callers pass
// to Add.
var tokenSalt = func() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}()

// randomCounterSeed returns a fresh CSPRNG-derived value on every call, used
// directly as a timer entry's timerUser identifier.
func randomCounterSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return tokenSalt
	}
	return binary.BigEndian.Uint64(b[:])
}
