/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"go.osspkg.com/algorithms/control"
	"go.osspkg.com/errors"
)

type (
	Client interface {
		// Session dials a fresh connection, runs fn on it and closes it.
		// At most Config.MaxConns sessions are open at once.
		Session(ctx context.Context, fn func(s *Session) error) error
	}

	_client struct {
		conf Config
		sem  control.Semaphore
	}
)

func New(c Config) (Client, error) {
	addr, err := c.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	c.Address = addr.String()
	c = c.withDefaults()

	cli := &_client{
		conf: c,
		sem:  control.NewSemaphore(c.MaxConns),
	}

	return cli, nil
}

func (v *_client) dial(ctx context.Context) (*Session, error) {
	dial := net.Dialer{Timeout: v.conf.Timeout}
	conn, err := dial.DialContext(ctx, "tcp", v.conf.Address)
	if err != nil {
		return nil, fmt.Errorf("dial tcp: %w", err)
	}

	s := &Session{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: v.conf.Timeout,
		maxLine: v.conf.MaxLineSize,
	}

	if v.conf.Greeting {
		if s.Greeting, err = s.ReadLine(); err != nil {
			return nil, fmt.Errorf("read greeting: %w", errors.Wrap(err, conn.Close()))
		}
	}

	return s, nil
}

func (v *_client) Session(ctx context.Context, fn func(s *Session) error) (e error) {
	v.sem.Acquire()
	defer func() { v.sem.Release() }()

	s, err := v.dial(ctx)
	if err != nil {
		writeLog(err, "Session dial", v.conf.Address)
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		s.conn.Close() //nolint: errcheck
	})

	defer func() {
		if !stop() && e != nil {
			e = errors.Wrap(e, ctx.Err())
		} else {
			e = errors.Wrap(e, s.Close())
		}
		writeLog(e, "Session closed", v.conf.Address)
	}()

	e = fn(s)

	return
}
