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

//go:build !linux

package timer

import (
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// selfPipeSource realizes a Source without a native timer device: a
// background goroutine sleeps until the next expiry and writes one byte to
// the pipe's write end, which the caller registers for Read interest like
// any other fd. A repeating timer re-sleeps itself after every fire;
// coalescing is handled by an in-memory counter rather than relying on the
// pipe's own buffering, so Consume never has to interpret partial writes.
type selfPipeSource struct {
	r, w *os.File

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	pending atomic.Uint64
}

func newSource() (Source, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &selfPipeSource{r: r, w: w}, nil
}

func (s *selfPipeSource) Fd() int { return int(s.r.Fd()) }

func (s *selfPipeSource) Arm(delay time.Duration, repeat bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	var fire func()
	fire = func() {
		s.pending.Add(1)
		_, _ = s.w.Write([]byte{1})

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopped {
			return
		}
		if repeat {
			s.timer = time.AfterFunc(delay, fire)
		}
	}

	s.timer = time.AfterFunc(delay, fire)
	return nil
}

func (s *selfPipeSource) Disarm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return nil
}

func (s *selfPipeSource) Consume() (uint64, error) {
	buf := make([]byte, 64)
	n, err := s.r.Read(buf)
	if err != nil {
		return 0, err
	}
	_ = n
	return s.pending.Swap(0), nil
}

func (s *selfPipeSource) Close() error {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	_ = s.w.Close()
	return s.r.Close()
}
