/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"context"
	"fmt"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"go.osspkg.com/syncing"
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/engine"
	"go.osspkg.com/netloop/epoll"
	"go.osspkg.com/netloop/listen"
	"go.osspkg.com/netloop/protocol"
)

var (
	ErrServAlreadyRunning = errors.New("server already running")
	ErrServNotListening   = errors.New("server is not listening")
)

type (
	Server interface {
		Listen() error
		Serve(ctx context.Context) error
		ListenAndServe(ctx context.Context) error
		Addr() string
		Stats() engine.Stats
	}

	_server struct {
		conf    Config
		handler protocol.Handler
		sync    syncing.Switch
		addr    string
		poller  *epoll.Poller
		engine  *engine.Engine
	}
)

func New(conf Config, handler protocol.Handler) Server {
	return &_server{
		conf:    conf.withDefaults(),
		handler: handler,
		sync:    syncing.NewSwitch(),
	}
}

// Listen binds the socket and prepares the event loop, Addr is valid once it
// returns. Serve must follow.
func (v *_server) Listen() (err error) {
	if v.handler == nil {
		return fmt.Errorf("handler not found")
	}
	if err = v.conf.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if !v.sync.On() {
		return ErrServAlreadyRunning
	}
	defer func() {
		if err != nil {
			v.sync.Off()
		}
	}()

	poller, err := epoll.New(epoll.Option{CountEvents: v.conf.CountEvents})
	if err != nil {
		return err
	}

	fd, addr, err := listen.TCP(v.conf.Address, v.conf.Backlog)
	if err != nil {
		return errors.Wrap(err, poller.Close())
	}

	eng, err := engine.New(v.conf.engine(), poller, engine.Unix(), v.handler)
	if err == nil {
		err = eng.Listen(fd)
	}
	if err != nil {
		return errors.Wrap(err, unix.Close(int(fd)), poller.Close())
	}

	v.poller, v.engine, v.addr = poller, eng, addr
	logx.Info("Server listening", "address", addr, "backlog", v.conf.Backlog)
	return nil
}

// Serve runs the event loop on the calling goroutine until ctx is done.
func (v *_server) Serve(ctx context.Context) (err error) {
	if v.poller == nil {
		return ErrServNotListening
	}
	defer func() {
		err = errors.Wrap(err, v.poller.Close())
		v.poller = nil
		v.sync.Off()

		st := v.engine.Stats()
		logx.Info("Server stopped", "address", v.addr,
			"accepted", st.Accepted, "closed", st.Closed, "faults", st.Faults)
	}()

	return v.engine.Run(ctx)
}

func (v *_server) ListenAndServe(ctx context.Context) error {
	if err := v.Listen(); err != nil {
		return err
	}
	return v.Serve(ctx)
}

func (v *_server) Addr() string {
	return v.addr
}

func (v *_server) Stats() engine.Stats {
	if eng := v.engine; eng != nil {
		return eng.Stats()
	}
	return engine.Stats{}
}
