/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"bytes"
	"time"

	"go.osspkg.com/netloop/epoll"
)

// Multiplexer is the readiness notification facility the engine waits on.
type Multiplexer interface {
	Register(fd int32, mask epoll.Interest) error
	Modify(fd int32, mask epoll.Interest) error
	Unregister(fd int32) error
	Wait(timeout time.Duration) ([]epoll.Event, error)
}

const baseInterest = epoll.Readable | epoll.PeerClosed

type conn struct {
	fd       int32
	addr     string
	interest epoll.Interest
	out      *OutboundBuffer
	in       *bytes.Buffer
	alive    bool
	closing  bool
}

// registry owns every live connection and is the only place interest masks
// change, each change goes to the multiplexer before returning.
type registry struct {
	mux   Multiplexer
	conns map[int32]*conn
}

func newRegistry(mux Multiplexer) *registry {
	return &registry{
		mux:   mux,
		conns: make(map[int32]*conn, 128),
	}
}

func (r *registry) add(c *conn) error {
	if err := r.mux.Register(c.fd, c.interest); err != nil {
		return err
	}
	r.conns[c.fd] = c
	return nil
}

func (r *registry) get(fd int32) (*conn, bool) {
	c, ok := r.conns[fd]
	return c, ok
}

func (r *registry) remove(fd int32) error {
	if _, ok := r.conns[fd]; !ok {
		return nil
	}
	delete(r.conns, fd)
	return r.mux.Unregister(fd)
}

func (r *registry) len() int {
	return len(r.conns)
}

func (r *registry) fds() []int32 {
	list := make([]int32, 0, len(r.conns))
	for fd := range r.conns {
		list = append(list, fd)
	}
	return list
}

func (r *registry) setInterest(c *conn, mask epoll.Interest) error {
	if c.interest == mask {
		return nil
	}
	if err := r.mux.Modify(c.fd, mask); err != nil {
		return err
	}
	c.interest = mask
	return nil
}

func (r *registry) enableWrite(c *conn) error {
	return r.setInterest(c, c.interest|epoll.Writable)
}

func (r *registry) disableWrite(c *conn) error {
	return r.setInterest(c, c.interest&^epoll.Writable)
}

func (r *registry) suppressRead(c *conn) error {
	return r.setInterest(c, c.interest&^epoll.Readable)
}
