/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Interest is a set of readiness conditions, used both as the registered
// interest mask and as the mask observed in an Event.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
	PeerClosed
	Error
	Hangup
)

// Closing conditions force teardown whatever else is reported with them.
const Closing = PeerClosed | Error | Hangup

type Event struct {
	FD   int32
	Mask Interest
}

func (i Interest) Has(v Interest) bool {
	return i&v == v
}

func (i Interest) Any(v Interest) bool {
	return i&v != 0
}

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	names := make([]string, 0, 5)
	for _, v := range []struct {
		bit  Interest
		name string
	}{
		{Readable, "in"},
		{Writable, "out"},
		{PeerClosed, "rdhup"},
		{Error, "err"},
		{Hangup, "hup"},
	} {
		if i.Has(v.bit) {
			names = append(names, v.name)
		}
	}
	return strings.Join(names, "|")
}

func toEpoll(i Interest) uint32 {
	var v uint32 = unix.EPOLLET
	if i.Has(Readable) {
		v |= unix.EPOLLIN
	}
	if i.Has(Writable) {
		v |= unix.EPOLLOUT
	}
	if i.Has(PeerClosed) {
		v |= unix.EPOLLRDHUP
	}
	return v
}

func fromEpoll(v uint32) (i Interest) {
	if v&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		i |= Readable
	}
	if v&unix.EPOLLOUT != 0 {
		i |= Writable
	}
	if v&unix.EPOLLRDHUP != 0 {
		i |= PeerClosed
	}
	if v&unix.EPOLLERR != 0 {
		i |= Error
	}
	if v&unix.EPOLLHUP != 0 {
		i |= Hangup
	}
	return
}
