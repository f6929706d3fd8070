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

package transport

import (
	"errors"
	"io"
	"net"
	"syscall"

	liberr "github.com/anyks/netcore/errors"
	"github.com/anyks/netcore/socket"
)

// rawConn extracts the syscall.RawConn backing a net.Conn, so cork/nodelay/
// buffer/pending option calls can reach past whatever TLS/DTLS wrapper sits
// in front of it straight to the real descriptor.
func rawConn(c net.Conn) (syscall.RawConn, liberr.Error) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return nil, ErrorSocketOption.Error(nil)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, ErrorSocketOption.Error(err)
	}
	return raw, nil
}

// withFd runs fn against the raw fd behind conn, translating both the
// Control-dispatch error and fn's own error into a single liberr.Error.
func withFd(conn net.Conn, fn func(fd socket.Fd) error) liberr.Error {
	raw, e := rawConn(conn)
	if e != nil {
		return e
	}

	var inner error
	err := raw.Control(func(p uintptr) {
		inner = fn(socket.Fd(p))
	})
	if err != nil {
		return ErrorSocketOption.Error(err)
	}
	if inner != nil {
		return ErrorSocketOption.Error(inner)
	}
	return nil
}

// fatalErrno lists the OS-level errors treated as fatal rather than
// retryable or an orderly close.
var fatalErrno = map[error]bool{
	syscall.ECONNRESET:  true,
	syscall.EPIPE:       true,
	syscall.ENOTCONN:    true,
	syscall.ETIMEDOUT:   true,
	syscall.ENETDOWN:    true,
	syscall.ENETUNREACH: true,
}

// ioOutcome classifies the result of a Read/Write call against a net.Conn
// as (n, fatal, err): success (n, false, nil), orderly close on io.EOF
// (0, false, nil), retryable on a timeout (-1, false, nil), and fatal for
// every other error (0, true, err).
func ioOutcome(n int, err error) (int, bool, error) {
	if err == nil {
		return n, false, nil
	}
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return -1, false, nil
	}

	var se syscall.Errno
	if errors.As(err, &se) && fatalErrno[se] {
		return 0, true, err
	}

	return 0, true, err
}
