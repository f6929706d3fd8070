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

package timer

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// timerfdSource realizes a Source on top of Linux's CLOCK_MONOTONIC timerfd,
// which the kernel itself coalesces and reports as an 8-byte expiry counter
// on read -- exactly the semantics Source.Consume exposes.
type timerfdSource struct {
	fd int
}

func newSource() (Source, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &timerfdSource{fd: fd}, nil
}

func (s *timerfdSource) Fd() int { return s.fd }

func (s *timerfdSource) Arm(delay time.Duration, repeat bool) error {
	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(delay.Nanoseconds()),
	}
	if repeat {
		spec.Interval = spec.Value
	}
	return unix.TimerfdSettime(s.fd, 0, &spec, nil)
}

func (s *timerfdSource) Disarm() error {
	return unix.TimerfdSettime(s.fd, 0, &unix.ItimerSpec{}, nil)
}

func (s *timerfdSource) Consume() (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(s.fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	if n < 8 {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (s *timerfdSource) Close() error {
	return unix.Close(s.fd)
}
