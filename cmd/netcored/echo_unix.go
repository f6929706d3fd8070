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

//go:build !windows

package main

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	liberr "github.com/anyks/netcore/errors"
	liblog "github.com/anyks/netcore/logger"
	loglvl "github.com/anyks/netcore/logger/level"
	"github.com/anyks/netcore/network/protocol"
	"github.com/anyks/netcore/reactor"
	"github.com/anyks/netcore/socket"
)

const readBufferSize = 4096

// conn tracks one accepted connection: its net.Conn (so Close releases the
// fd through the Go runtime's own bookkeeping) and the raw descriptor the
// reactor callback reads/writes directly.
type conn struct {
	id uint64
	c  net.Conn
	fd reactor.Fd
}

// runEcho listens on addr and echoes every byte it reads back to its peer,
// dispatched entirely through a single reactor instance: the listener's own
// descriptor is registered for Read (meaning "a connection is pending"),
// and every accepted connection is registered the same way (meaning "bytes
// are pending"). Close fires once a peer hangs up or errors out.
func runEcho(ctx context.Context, log liblog.Logger, addr string, maxFds uint32) error {
	ln, err := socket.Listen(ctx, protocol.NetworkTCP, addr, socket.Options{ReuseAddr: true})
	if err != nil {
		return err
	}
	defer func() { _ = ln.Close() }()

	r, rerr := reactor.New(&reactor.Config{MaxFds: maxFds}, func() liblog.Logger { return log })
	if rerr != nil {
		return rerr
	}

	var (
		mu     sync.Mutex
		conns  = make(map[uint64]*conn)
		nextID atomic.Uint64
		buf    = make([]byte, readBufferSize)
	)

	closeConn := func(id uint64) {
		mu.Lock()
		cn, ok := conns[id]
		if ok {
			delete(conns, id)
		}
		mu.Unlock()
		if !ok {
			return
		}
		r.Del(id, cn.fd)
		_ = cn.c.Close()
	}

	onConnEvent := func(id uint64, fd reactor.Fd, kind reactor.EventKind) {
		if kind == reactor.Close {
			closeConn(id)
			return
		}
		if kind != reactor.Read {
			return
		}

		n, e := unix.Read(int(fd), buf)
		if e == unix.EAGAIN || e == unix.EWOULDBLOCK {
			return
		}
		if n <= 0 || e != nil {
			closeConn(id)
			return
		}

		if _, e = unix.Write(int(fd), buf[:n]); e != nil {
			closeConn(id)
		}
	}

	listenerFd, err := rawFd(ln)
	if err != nil {
		return err
	}

	onAccept := func(id uint64, fd reactor.Fd, kind reactor.EventKind) {
		if kind != reactor.Read {
			return
		}

		c, e := ln.Accept()
		if e != nil {
			log.Entry(loglvl.WarnLevel, "accept: %v", e).Log()
			return
		}

		cfd, e := rawFd(c)
		if e != nil {
			log.Entry(loglvl.WarnLevel, "raw fd of accepted conn: %v", e).Log()
			_ = c.Close()
			return
		}

		cid := nextID.Add(1)
		mu.Lock()
		conns[cid] = &conn{id: cid, c: c, fd: cfd}
		mu.Unlock()

		r.Add(cid, &cfd, onConnEvent, 0, false, reactor.Read, reactor.Close)
	}

	r.Add(0, &listenerFd, onAccept, 0, false, reactor.Read)

	done := make(chan liberr.Error, 1)
	go func() { done <- r.Start() }()

	<-ctx.Done()
	r.Stop()

	mu.Lock()
	for _, cn := range conns {
		_ = cn.c.Close()
	}
	mu.Unlock()

	if e := <-done; e != nil {
		return e
	}
	return nil
}

// rawFd reads the kernel descriptor backing v (a net.Listener or net.Conn)
// without taking ownership of it -- Close still closes the real fd, this
// call only inspects it, the same pattern the reactor package's own
// echo-server test uses.
func rawFd(v any) (reactor.Fd, error) {
	sc, ok := v.(interface {
		SyscallConn() (interface {
			Control(f func(fd uintptr)) error
		}, error)
	})
	if !ok {
		return 0, fmt.Errorf("%T does not expose a raw descriptor", v)
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}

	var fd reactor.Fd
	if cerr := raw.Control(func(p uintptr) { fd = reactor.Fd(p) }); cerr != nil {
		return 0, cerr
	}
	return fd, nil
}
