/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"context"
	"fmt"
	"runtime"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"

	"go.osspkg.com/netloop/epoll"
	"go.osspkg.com/netloop/errs"
	"go.osspkg.com/netloop/protocol"
)

// Engine multiplexes a listener and its connections on one goroutine. None
// of its methods are safe for concurrent use except Stats.
type Engine struct {
	cfg   Config
	mux   Multiplexer
	sys   Syscalls
	proto protocol.Handler
	conns *registry

	// dead holds fds torn down during the current batch, later events for
	// them in the same batch are stale.
	dead map[int32]struct{}

	scratch   []byte
	listener  int32
	listening bool
	stats     counters
}

func New(c Config, mux Multiplexer, sys Syscalls, proto protocol.Handler) (*Engine, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if mux == nil {
		return nil, fmt.Errorf("engine multiplexer is empty")
	}
	if sys == nil {
		return nil, fmt.Errorf("engine syscalls is empty")
	}
	if proto == nil {
		return nil, fmt.Errorf("engine protocol handler is empty")
	}
	return &Engine{
		cfg:      c,
		mux:      mux,
		sys:      sys,
		proto:    proto,
		conns:    newRegistry(mux),
		dead:     make(map[int32]struct{}, 16),
		scratch:  make([]byte, c.ReadBufferSize),
		listener: -1,
	}, nil
}

// Listen hands a bound, listening, non-blocking socket to the engine. The
// engine owns it from here on and closes it on shutdown.
func (e *Engine) Listen(fd int32) error {
	if e.listening {
		return fmt.Errorf("engine already has listener fd %d", e.listener)
	}
	if err := e.mux.Register(fd, epoll.Readable); err != nil {
		return fmt.Errorf("register listener: %w", err)
	}
	e.listener, e.listening = fd, true
	return nil
}

// Run is the event loop. It returns when ctx is done or the multiplexer
// fails, closing the listener and every live connection on the way out.
func (e *Engine) Run(ctx context.Context) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer func() {
		if err0 := e.shutdown(); err0 != nil {
			err = errors.Wrap(err, err0)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		batch, err0 := e.mux.Wait(e.cfg.WaitInterval)
		if err0 != nil {
			return err0
		}
		e.Dispatch(batch)
	}
}

// Dispatch processes one batch of ready events in order.
func (e *Engine) Dispatch(batch []epoll.Event) {
	clear(e.dead)

	for _, ev := range batch {
		if e.listening && ev.FD == e.listener {
			e.onListener(ev.Mask)
			continue
		}
		if _, gone := e.dead[ev.FD]; gone {
			e.stats.stale.Add(1)
			continue
		}
		c, ok := e.conns.get(ev.FD)
		if !ok {
			e.stats.stale.Add(1)
			continue
		}
		e.onConn(c, ev.Mask)
	}
}

func (e *Engine) onListener(mask epoll.Interest) {
	if mask.Any(epoll.Error | epoll.Hangup) {
		logx.Error("Listener event", "fd", e.listener, "mask", mask.String())
	}
	if mask.Has(epoll.Readable) {
		e.acceptAll()
	}
}

func (e *Engine) onConn(c *conn, mask epoll.Interest) {
	if mask.Any(epoll.Closing) {
		var reason error = errs.ErrPeerClosed
		if mask.Has(epoll.Error) {
			reason = fmt.Errorf("fd %d event %s: %w", c.fd, mask, errs.ErrSocket)
		}
		e.disconnect(c, reason) //nolint: errcheck
		return
	}
	if mask.Has(epoll.Readable) {
		e.read(c)
	}
	if c.alive && mask.Has(epoll.Writable) {
		e.drain(c)
	}
}

func (e *Engine) shutdown() (err error) {
	if e.listening {
		err = errors.Wrap(
			e.mux.Unregister(e.listener),
			e.sys.Close(e.listener),
		)
		e.listening = false
	}
	for _, fd := range e.conns.fds() {
		if c, ok := e.conns.get(fd); ok {
			err = errors.Wrap(err, e.disconnect(c, errs.ErrShutdown))
		}
	}
	return
}

// Len returns the number of live connections.
func (e *Engine) Len() int {
	return e.conns.len()
}

type State struct {
	Addr     string
	Interest epoll.Interest
	// Pending is the number of buffered, undelivered bytes. Zero means Idle.
	Pending int
	Offset  int
	Length  int
	Closing bool
}

func (s State) Idle() bool {
	return s.Length == 0
}

func (e *Engine) State(fd int32) (State, bool) {
	c, ok := e.conns.get(fd)
	if !ok {
		return State{}, false
	}
	s := State{
		Addr:     c.addr,
		Interest: c.interest,
		Closing:  c.closing,
	}
	if c.out != nil {
		s.Pending = c.out.Pending()
		s.Offset = c.out.Offset()
		s.Length = c.out.Len()
	}
	return s, true
}
