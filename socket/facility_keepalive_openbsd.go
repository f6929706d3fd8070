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

//go:build openbsd

package socket

import "golang.org/x/sys/unix"

// OpenBSD exposes none of TCP_KEEPIDLE/TCP_KEEPALIVE/TCP_KEEPINTVL/
// TCP_KEEPCNT; SO_KEEPALIVE alone (already set by the shared SetKeepAlive)
// is all this platform offers.
func setKeepAliveIdle(fd Fd, idleSec int) error     { return nil }
func setKeepAliveInterval(fd Fd, intervalSec int) error { return nil }
func setKeepAliveCount(fd Fd, count int) error      { return nil }

func setCorkPlatform(fd Fd, on bool) error {
	return unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NOPUSH, boolToInt(on))
}

// OpenBSD has no SO_NOSIGPIPE; there is no per-socket suppression available.
func suppressSIGPIPEOn(fd Fd) error {
	return ErrorUnsupported.Error(nil)
}
