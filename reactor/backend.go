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

import "time"

// ready describes one fd the backend's Wait call found readable, writable,
// or hung up, tagged with the stable token that was registered alongside it.
// Backends never hand back a raw pointer into the descriptor table: they
// carry the integer token and the dispatch loop looks the entry up itself.
type ready struct {
	token   uint64
	fd      Fd
	readOK  bool
	writeOK bool
	closeOK bool
}

// backendInterest is the subset of interest bits a backend needs to know
// about when registering or modifying a descriptor; Close/Timer bits never
// reach the kernel call, they are tracked only in the entry.
type backendInterest struct {
	read  bool
	write bool
}

// backend is the OS-specific multiplexer the Reactor drives. Exactly one
// implementation is compiled in per platform: epoll (Linux), kqueue
// (Darwin/*BSD), event ports (Solaris/illumos), or a portable poll/select
// fallback everywhere else.
type backend interface {
	// register adds fd to the multiplexer with the given token and initial
	// interest.
	register(token uint64, fd Fd, in backendInterest) error
	// modify changes a previously registered fd's interest.
	modify(token uint64, fd Fd, in backendInterest) error
	// unregister removes fd from the multiplexer. Implementations tolerate
	// being asked to remove an fd that was already closed out from under
	// them.
	unregister(fd Fd) error
	// wait blocks up to timeout (0 = forever) and appends every ready fd to
	// dst, returning the extended slice.
	wait(timeout time.Duration, dst []ready) ([]ready, error)
	// close releases any backend-owned descriptor (e.g. the epoll or kqueue
	// fd itself). It does not touch registered fds.
	close() error
	// name identifies the backend for logging/metrics.
	name() string
}
