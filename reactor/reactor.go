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
	"bytes"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	liberr "github.com/anyks/netcore/errors"
	liblog "github.com/anyks/netcore/logger"
	libtmr "github.com/anyks/netcore/reactor/timer"
)

// nativeTimerBackend is implemented only by backend_kqueue_bsd.go, whose
// EVFILT_TIMER filter realizes a timer without going through the portable
// reactor/timer package at all.
type nativeTimerBackend interface {
	registerTimer(userID uint64, delayMS uint64, repeat bool) error
	unregisterTimer(userID uint64) error
}

type reactorImpl struct {
	cfg Config
	log liblog.FuncLog

	back     backend
	natTimer nativeTimerBackend // non-nil only on kqueue

	// entries, byFd and timerSrc are only ever touched from the owner
	// goroutine (Add/Del/SetInterest/the dispatch loop itself) except
	// during the narrow Kick handoff, which is why they carry no mutex of
	// their own -- Kick takes ownerMu before touching anything shared.
	entries  map[uint64]*entry
	byFd     map[Fd]uint64
	timerSrc map[uint64]libtmr.Source // id -> portable timer source

	running    atomic.Bool
	frozen     atomic.Bool
	easy       atomic.Bool
	freqMS     atomic.Uint32
	ownerGoid  atomic.Uint64
	stopSignal chan struct{}

	// kickPipe is the self-pipe Kick writes to in order to wake the owner
	// goroutine out of a blocking backend.wait call from any other
	// goroutine (the only cross-thread entry point into this type).
	kickR, kickW *os.File
	kickFd       Fd

	ownerMu sync.Mutex
	metrics *metricsSet
}

// New builds a Reactor around whichever backend is compiled in for this
// platform. log may be nil, in which case dispatch errors are swallowed
// rather than logged.
func New(cfg *Config, log liblog.FuncLog) (Reactor, liberr.Error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b, e := newBackend(cfg.maxFds())
	if e != nil {
		return nil, ErrorBackendCreate.Error(e)
	}

	r, w, e := os.Pipe()
	if e != nil {
		_ = b.close()
		return nil, ErrorBackendCreate.Error(e)
	}

	o := &reactorImpl{
		cfg:        *cfg,
		log:        log,
		back:       b,
		entries:    make(map[uint64]*entry, cfg.maxFds()),
		byFd:       make(map[Fd]uint64, cfg.maxFds()),
		timerSrc:   make(map[uint64]libtmr.Source),
		stopSignal: make(chan struct{}),
		kickR:      r,
		kickW:      w,
		kickFd:     Fd(r.Fd()),
	}

	if nt, ok := b.(nativeTimerBackend); ok {
		o.natTimer = nt
	}

	o.freqMS.Store(cfg.frequencyMS())

	if e := o.back.register(0, o.kickFd, backendInterest{read: true}); e != nil {
		_ = b.close()
		_ = r.Close()
		_ = w.Close()
		return nil, ErrorBackendRegister.Error(e)
	}
	o.byFd[o.kickFd] = 0

	if cfg.Metrics {
		_ = o.enableMetrics(prometheus.DefaultRegisterer)
	}

	return o, nil
}

func (o *reactorImpl) logger() liblog.Logger {
	if o.log == nil {
		return nil
	}
	return o.log()
}

func currentGoid() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

func (o *reactorImpl) OnOwnerThread() bool {
	if !o.running.Load() {
		return true
	}
	return o.ownerGoid.Load() == currentGoid()
}

func (o *reactorImpl) IsRunning() bool {
	return o.running.Load()
}

func (o *reactorImpl) Len() int {
	return len(o.entries)
}

func (o *reactorImpl) Freeze(on bool) {
	o.frozen.Store(on)
}

func (o *reactorImpl) Easy(on bool) {
	o.easy.Store(on)
}

func (o *reactorImpl) SetFrequency(ms uint32) {
	if ms == 0 {
		ms = DefaultFrequencyMS
	}
	o.freqMS.Store(ms)
}

// Add registers a new stream, pipe or timer entry. For timer entries, fd is
// overwritten with the descriptor the timer realization allocates (the
// portable timer source's read fd, or -1 on kqueue where the timer rides
// entirely inside the backend).
func (o *reactorImpl) Add(id uint64, fd *Fd, cb CallbackFunc, delayNS uint64, repeating bool, interest ...EventKind) bool {
	if existing, ok := o.entries[id]; ok {
		existing.cb = cb
		return true
	}

	if uint32(len(o.entries)) >= o.cfg.maxFds() {
		return false
	}

	e := &entry{
		id:       id,
		interest: newInterestSet(interest...),
		cb:       cb,
		delayNS:  delayNS,
		repeat:   repeating,
	}

	if delayNS > 0 {
		e.kind = KindTimer
		e.timerUser = randomCounterSeed()

		if o.natTimer != nil {
			ms := delayNS / 1e6
			if ms == 0 {
				ms = 1
			}
			if err := o.natTimer.registerTimer(e.timerUser, ms, repeating); err != nil {
				return false
			}
			e.fd = -1
		} else {
			src, err := libtmr.New()
			if err != nil {
				return false
			}
			if err = src.Arm(time.Duration(delayNS), repeating); err != nil {
				_ = src.Close()
				return false
			}
			o.timerSrc[id] = src
			e.fd = Fd(src.Fd())
			if err := o.back.register(id, e.fd, backendInterest{read: true}); err != nil {
				_ = src.Close()
				delete(o.timerSrc, id)
				return false
			}
			o.byFd[e.fd] = id
		}

		if fd != nil {
			*fd = e.fd
		}
	} else {
		e.kind = KindStream
		if fd == nil {
			return false
		}
		e.fd = *fd

		in := backendInterest{
			read:  e.interest[Read] == Enabled,
			write: e.interest[Write] == Enabled,
		}
		if err := o.back.register(id, e.fd, in); err != nil {
			return false
		}
		o.byFd[e.fd] = id
	}

	o.entries[id] = e
	return true
}

func (o *reactorImpl) removeLocked(id uint64, e *entry) {
	if e.kind == KindTimer {
		if o.natTimer != nil {
			_ = o.natTimer.unregisterTimer(e.timerUser)
		} else if src, ok := o.timerSrc[id]; ok {
			_ = o.back.unregister(e.fd)
			_ = src.Close()
			delete(o.timerSrc, id)
			delete(o.byFd, e.fd)
		}
	} else {
		_ = o.back.unregister(e.fd)
		delete(o.byFd, e.fd)
	}

	delete(o.entries, id)
}

func (o *reactorImpl) Del(id uint64, fd Fd) bool {
	e, ok := o.entries[id]
	if !ok {
		return false
	}
	o.removeLocked(id, e)
	return true
}

func (o *reactorImpl) DelKind(id uint64, fd Fd, kind EventKind) bool {
	e, ok := o.entries[id]
	if !ok {
		return false
	}

	e.interest[kind] = Disabled

	if isEmptyInterest(e.interest) {
		o.removeLocked(id, e)
		return true
	}

	if e.kind == KindStream && (kind == Read || kind == Write) {
		in := backendInterest{
			read:  e.interest[Read] == Enabled,
			write: e.interest[Write] == Enabled,
		}
		_ = o.back.modify(id, e.fd, in)
	}

	return true
}

func (o *reactorImpl) SetInterest(id uint64, fd Fd, kind EventKind, mode Mode) bool {
	e, ok := o.entries[id]
	if !ok {
		return false
	}

	e.interest[kind] = mode

	if mode == Disabled && isEmptyInterest(e.interest) {
		o.removeLocked(id, e)
		return true
	}

	if e.kind == KindStream && (kind == Read || kind == Write) {
		in := backendInterest{
			read:  e.interest[Read] == Enabled,
			write: e.interest[Write] == Enabled,
		}
		_ = o.back.modify(id, e.fd, in)
	}

	return true
}

func (o *reactorImpl) dispatchReady(r ready) {
	// Timer readiness arrives two ways: kqueue tags it with token ==
	// timerUser and fd == -1; the portable path tags it with the fd the
	// timer source owns, looked up through byFd like any stream fd.
	var id uint64
	var e *entry

	if r.fd == -1 {
		for cid, ce := range o.entries {
			if ce.kind == KindTimer && ce.timerUser == r.token {
				id, e = cid, ce
				break
			}
		}
	} else if r.fd == o.kickFd {
		o.drainKick()
		return
	} else {
		cid, ok := o.byFd[r.fd]
		if !ok {
			return
		}
		e, ok = o.entries[cid]
		if !ok {
			return
		}
		id = cid
	}

	if e == nil {
		return
	}

	if e.kind == KindTimer {
		if src, ok := o.timerSrc[id]; ok {
			_, _ = src.Consume()
		}
		if e.interest[Timer] == Enabled {
			o.invoke(id, e, Timer)
		}
		if !e.repeat {
			o.removeLocked(id, e)
		}
		return
	}

	// Read-then-Write-then-Close ordering per descriptor, so a handler
	// that closes on read error never also sees a stale write callback
	// for the same readiness batch.
	if r.readOK && e.interest[Read] == Enabled {
		o.invoke(id, e, Read)
		if _, still := o.entries[id]; !still {
			return
		}
	}
	if r.writeOK && e.interest[Write] == Enabled {
		o.invoke(id, e, Write)
		if _, still := o.entries[id]; !still {
			return
		}
	}
	if r.closeOK {
		if e.interest[Close] == Enabled {
			o.invoke(id, e, Close)
		} else {
			o.removeLocked(id, e)
		}
	}
}

// invoke calls the entry's callback with a panic recovery boundary so one
// misbehaving handler cannot bring the whole dispatch loop down.
func (o *reactorImpl) invoke(id uint64, e *entry, kind EventKind) {
	defer func() {
		if p := recover(); p != nil {
			if o.metrics != nil {
				o.metrics.panics.Inc()
			}
			if l := o.logger(); l != nil {
				l.Error("reactor callback panicked", p, "id", id, "kind", kind.String())
			}
		}
	}()

	if e.cb != nil {
		e.cb(id, e.fd, kind)
	}

	if o.metrics != nil {
		o.metrics.dispatched.WithLabelValues(kind.String()).Inc()
	}
}

func (o *reactorImpl) drainKick() {
	buf := make([]byte, 64)
	for {
		n, err := o.kickR.Read(buf)
		if n == 0 || err != nil {
			return
		}
		if n < len(buf) {
			return
		}
	}
}

func (o *reactorImpl) Start() liberr.Error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrorAlreadyRunning.Error(nil)
	}

	o.ownerGoid.Store(currentGoid())
	defer o.running.Store(false)

	batch := make([]ready, 0, 256)

	for {
		select {
		case <-o.stopSignal:
			return nil
		default:
		}

		if o.frozen.Load() {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		timeout := time.Duration(0)
		if o.easy.Load() {
			timeout = time.Duration(o.freqMS.Load()) * time.Millisecond
		}

		batch = batch[:0]
		var err error
		batch, err = o.back.wait(timeout, batch)
		if err != nil {
			if l := o.logger(); l != nil {
				l.Error("reactor backend wait failed", err)
			}
			continue
		}

		if o.metrics != nil {
			o.metrics.wakeups.Inc()
		}

		for _, r := range batch {
			o.dispatchReady(r)
		}

		if o.easy.Load() {
			time.Sleep(time.Duration(o.freqMS.Load()) * time.Millisecond)
		}
	}
}

func (o *reactorImpl) Stop() {
	if !o.running.Load() {
		return
	}

	select {
	case <-o.stopSignal:
	default:
		close(o.stopSignal)
	}

	for id, e := range o.entries {
		o.removeLocked(id, e)
	}
}

// Kick is the sole method safe to call off the owner goroutine: it writes one
// byte to the reactor's self-pipe, so a blocking backend wait returns and the
// loop runs another iteration. It does not stop the loop, recreate the
// backend or reinstall entries; every registered entry stays as it is.
func (o *reactorImpl) Kick() {
	o.ownerMu.Lock()
	defer o.ownerMu.Unlock()

	_, _ = o.kickW.Write([]byte{1})
}

func (o *reactorImpl) Rebase() liberr.Error {
	if !o.OnOwnerThread() {
		return ErrorNotOwnerThread.Error(nil)
	}

	snapshot := make([]*entry, 0, len(o.entries))
	for _, e := range o.entries {
		snapshot = append(snapshot, e)
	}

	_ = o.back.close()

	b, err := newBackend(o.cfg.maxFds())
	if err != nil {
		return ErrorBackendCreate.Error(err)
	}
	o.back = b
	if nt, ok := b.(nativeTimerBackend); ok {
		o.natTimer = nt
	} else {
		o.natTimer = nil
	}

	o.byFd = make(map[Fd]uint64, o.cfg.maxFds())

	if e := o.back.register(0, o.kickFd, backendInterest{read: true}); e != nil {
		return ErrorBackendRegister.Error(e)
	}
	o.byFd[o.kickFd] = 0

	for _, e := range snapshot {
		if e.kind == KindStream {
			in := backendInterest{
				read:  e.interest[Read] == Enabled,
				write: e.interest[Write] == Enabled,
			}
			_ = o.back.register(e.id, e.fd, in)
			o.byFd[e.fd] = e.id
		} else if e.kind == KindTimer && o.natTimer != nil {
			ms := e.delayNS / 1e6
			if ms == 0 {
				ms = 1
			}
			_ = o.natTimer.registerTimer(e.timerUser, ms, e.repeat)
		} else if e.kind == KindTimer {
			// Portable timer: the source itself survives Rebase untouched,
			// only its read fd needs to be re-armed on the fresh backend.
			_ = o.back.register(e.id, e.fd, backendInterest{read: true})
			o.byFd[e.fd] = e.id
		}
	}

	return nil
}

func (o *reactorImpl) Close() error {
	o.Stop()

	for id, src := range o.timerSrc {
		_ = src.Close()
		delete(o.timerSrc, id)
	}

	_ = o.kickR.Close()
	_ = o.kickW.Close()

	return o.back.close()
}
