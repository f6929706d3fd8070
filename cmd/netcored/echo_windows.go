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

package main

import (
	"context"
	"io"
	"net"

	liblog "github.com/anyks/netcore/logger"
	loglvl "github.com/anyks/netcore/logger/level"
	"github.com/anyks/netcore/network/protocol"
	"github.com/anyks/netcore/socket"
)

// runEcho falls back to one goroutine per connection on Windows: the poll
// backend's socket handles aren't raw readable/writable fds the way Unix
// descriptors are, so the reactor.Add(fd, ...) plumbing echo_unix.go relies
// on has no Windows counterpart in this package yet -- see socket's own
// facility_windows.go split for the same divide.
func runEcho(ctx context.Context, log liblog.Logger, addr string, _ uint32) error {
	ln, err := socket.Listen(ctx, protocol.NetworkTCP, addr, socket.Options{ReuseAddr: true})
	if err != nil {
		return err
	}
	defer func() { _ = ln.Close() }()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Entry(loglvl.WarnLevel, "accept: %v", err).Log()
				continue
			}
		}

		go func(c net.Conn) {
			defer func() { _ = c.Close() }()
			_, _ = io.Copy(c, c)
		}(c)
	}
}
