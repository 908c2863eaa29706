/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"go.osspkg.com/casecheck"
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/engine"
	"go.osspkg.com/netloop/epoll"
	"go.osspkg.com/netloop/protocol"
)

const listenerFD int32 = 3

type fakeMux struct {
	masks   map[int32]epoll.Interest
	unreg   map[int32]int
	batches [][]epoll.Event
	waitErr error
	onEmpty func()
}

func newFakeMux() *fakeMux {
	return &fakeMux{
		masks: make(map[int32]epoll.Interest),
		unreg: make(map[int32]int),
	}
}

func (m *fakeMux) Register(fd int32, mask epoll.Interest) error {
	if _, ok := m.masks[fd]; ok {
		return unix.EEXIST
	}
	m.masks[fd] = mask
	return nil
}

func (m *fakeMux) Modify(fd int32, mask epoll.Interest) error {
	if _, ok := m.masks[fd]; !ok {
		return unix.ENOENT
	}
	m.masks[fd] = mask
	return nil
}

func (m *fakeMux) Unregister(fd int32) error {
	if _, ok := m.masks[fd]; !ok {
		return unix.ENOENT
	}
	delete(m.masks, fd)
	m.unreg[fd]++
	return nil
}

func (m *fakeMux) Wait(_ time.Duration) ([]epoll.Event, error) {
	if m.waitErr != nil {
		return nil, m.waitErr
	}
	if len(m.batches) == 0 {
		if m.onEmpty != nil {
			m.onEmpty()
		}
		return nil, nil
	}
	b := m.batches[0]
	m.batches = m.batches[1:]
	return b, nil
}

// fakeSock is one end of a connection as the engine sees it. readEnd is what
// follows the queued chunks: EAGAIN by default, io.EOF for an orderly close.
type fakeSock struct {
	fd         int32
	reads      [][]byte
	readEnd    error
	peer       bytes.Buffer
	budget     int
	maxWrite   int
	writeErr   error
	readCalls  int
	writeCalls int
}

func newSock(fd int32) *fakeSock {
	return &fakeSock{fd: fd, readEnd: unix.EAGAIN, budget: -1}
}

type fakeSys struct {
	socks   map[int32]*fakeSock
	pending []*fakeSock
	closes  map[int32]int
}

func newFakeSys() *fakeSys {
	return &fakeSys{
		socks:  make(map[int32]*fakeSock),
		closes: make(map[int32]int),
	}
}

func (s *fakeSys) Accept(_ int32) (int32, string, error) {
	if len(s.pending) == 0 {
		return -1, "", unix.EAGAIN
	}
	sock := s.pending[0]
	s.pending = s.pending[1:]
	s.socks[sock.fd] = sock
	return sock.fd, fmt.Sprintf("10.0.0.1:%d", 40000+sock.fd), nil
}

func (s *fakeSys) Read(fd int32, p []byte) (int, error) {
	sock := s.socks[fd]
	sock.readCalls++
	if len(sock.reads) > 0 {
		n := copy(p, sock.reads[0])
		if n < len(sock.reads[0]) {
			sock.reads[0] = sock.reads[0][n:]
		} else {
			sock.reads = sock.reads[1:]
		}
		return n, nil
	}
	if sock.readEnd == io.EOF {
		return 0, nil
	}
	return 0, sock.readEnd
}

func (s *fakeSys) Write(fd int32, p []byte) (int, error) {
	sock := s.socks[fd]
	sock.writeCalls++
	if sock.writeErr != nil {
		return 0, sock.writeErr
	}
	n := len(p)
	if sock.maxWrite > 0 && n > sock.maxWrite {
		n = sock.maxWrite
	}
	if sock.budget >= 0 && n > sock.budget {
		n = sock.budget
	}
	if n == 0 {
		return 0, unix.EAGAIN
	}
	if sock.budget >= 0 {
		sock.budget -= n
	}
	sock.peer.Write(p[:n])
	return n, nil
}

func (s *fakeSys) Close(fd int32) error {
	s.closes[fd]++
	return nil
}

type closeLog struct {
	reasons map[int32][]error
}

func (l *closeLog) OnClose(fd int32, reason error) {
	l.reasons[fd] = append(l.reasons[fd], reason)
}

var echo = protocol.HandlerFunc(func(line []byte) protocol.Reply {
	if string(line) == "quit" {
		return protocol.Reply{Payloads: protocol.Line("bye"), Close: true}
	}
	return protocol.Reply{Payloads: protocol.Line("> " + string(line))}
})

type harness struct {
	e    *engine.Engine
	mux  *fakeMux
	sys  *fakeSys
	logs *closeLog
}

func newHarness(t *testing.T, cfg engine.Config) *harness {
	h := &harness{
		mux:  newFakeMux(),
		sys:  newFakeSys(),
		logs: &closeLog{reasons: make(map[int32][]error)},
	}
	cfg.OnClose = h.logs.OnClose

	e, err := engine.New(cfg, h.mux, h.sys, echo)
	casecheck.NoError(t, err)
	casecheck.NoError(t, e.Listen(listenerFD))
	h.e = e
	return h
}

// connect accepts one connection per fd through a listener event.
func (h *harness) connect(t *testing.T, fds ...int32) []*fakeSock {
	socks := make([]*fakeSock, 0, len(fds))
	for _, fd := range fds {
		sock := newSock(fd)
		h.sys.pending = append(h.sys.pending, sock)
		socks = append(socks, sock)
	}
	h.e.Dispatch([]epoll.Event{{FD: listenerFD, Mask: epoll.Readable}})
	for _, fd := range fds {
		_, ok := h.e.State(fd)
		casecheck.True(t, ok, fd)
	}
	return socks
}

func (h *harness) writable(fd int32) {
	h.e.Dispatch([]epoll.Event{{FD: fd, Mask: epoll.Writable}})
}

// checkInterest asserts write interest is registered iff bytes are pending.
func (h *harness) checkInterest(t *testing.T, fd int32) {
	t.Helper()
	st, ok := h.e.State(fd)
	casecheck.True(t, ok, fd)
	registered := h.mux.masks[fd]
	casecheck.Equal(t, st.Interest, registered)
	casecheck.Equal(t, st.Pending > 0, registered.Has(epoll.Writable))
	casecheck.Equal(t, st.Idle(), st.Pending == 0)
}
