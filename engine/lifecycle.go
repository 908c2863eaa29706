/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"fmt"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"

	"go.osspkg.com/netloop/errs"
	"go.osspkg.com/netloop/internal"
)

// acceptAll takes every queued connection, one readable event on an
// edge-triggered listener may stand for many of them.
func (e *Engine) acceptAll() {
	for {
		fd, addr, err := e.sys.Accept(e.listener)
		if err != nil {
			switch {
			case errs.IsWouldBlock(err):
			case errs.IsRetry(err):
				continue
			default:
				logx.Error("Accept connection", "err", err, "listener", e.listener)
			}
			return
		}

		if e.cfg.MaxConns > 0 && e.conns.len() >= e.cfg.MaxConns {
			e.stats.rejected.Add(1)
			logx.Warn("Connection limit reached", "fd", fd, "addr", addr, "limit", e.cfg.MaxConns)
			if err = e.sys.Close(fd); err != nil {
				logx.Warn("Close rejected connection", "fd", fd, "err", err)
			}
			continue
		}

		c := &conn{
			fd:       fd,
			addr:     addr,
			interest: baseInterest,
			in:       internal.LinePool.Get(),
			alive:    true,
		}
		if err = e.conns.add(c); err != nil {
			internal.LinePool.Put(c.in)
			logx.Error("Register connection", "fd", fd, "addr", addr, "err", errors.Wrap(err, e.sys.Close(fd)))
			continue
		}

		e.stats.accepted.Add(1)
		e.stats.active.Add(1)
		logx.Debug("Connection accepted", "fd", fd, "addr", addr)

		e.greet(c)
	}
}

// greet makes exactly one write attempt. Whatever does not fit is dropped.
func (e *Engine) greet(c *conn) {
	if len(e.cfg.Greeting) == 0 {
		return
	}
	n, err := e.sys.Write(c.fd, e.cfg.Greeting)
	if n > 0 {
		e.stats.bytesOut.Add(uint64(n))
	}
	if err == nil || errs.IsWouldBlock(err) || errs.IsRetry(err) {
		return
	}
	e.disconnect(c, fmt.Errorf("greeting fd %d: %w", c.fd, err)) //nolint: errcheck
}

// Disconnect tears the connection down. Calling it for an fd that is
// already gone is a no-op.
func (e *Engine) Disconnect(fd int32, reason error) error {
	c, ok := e.conns.get(fd)
	if !ok {
		return nil
	}
	return e.disconnect(c, reason)
}

func (e *Engine) disconnect(c *conn, reason error) error {
	if !c.alive {
		return nil
	}
	c.alive = false
	e.dead[c.fd] = struct{}{}

	err := errors.Wrap(e.conns.remove(c.fd), e.sys.Close(c.fd))

	c.out = nil
	if c.in != nil {
		c.in.Reset()
		internal.LinePool.Put(c.in)
		c.in = nil
	}

	e.stats.closed.Add(1)
	e.stats.active.Add(-1)
	switch errs.Classify(reason) {
	case errs.KindFault, errs.KindExhausted:
		e.stats.faults.Add(1)
	default:
	}

	internal.LogClose("Connection closed", reason, c.fd, c.addr)
	if err != nil {
		logx.Warn("Connection release", "fd", c.fd, "addr", c.addr, "err", err)
	}
	if e.cfg.OnClose != nil {
		e.cfg.OnClose(c.fd, reason)
	}
	return err
}
