/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/address"
)

// Syscalls is the non-blocking socket surface the engine drives. Every call
// returns immediately: data, zero, or EAGAIN.
type Syscalls interface {
	Accept(fd int32) (int32, string, error)
	Read(fd int32, p []byte) (int, error)
	Write(fd int32, p []byte) (int, error)
	Close(fd int32) error
}

type unixSyscalls struct{}

func Unix() Syscalls {
	return unixSyscalls{}
}

func (unixSyscalls) Accept(fd int32) (int32, string, error) {
	nfd, sa, err := unix.Accept4(int(fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, "", err
	}
	return int32(nfd), address.FromSockaddr(sa), nil
}

func (unixSyscalls) Read(fd int32, p []byte) (int, error) {
	n, err := unix.Read(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write relies on the runtime ignoring SIGPIPE for descriptors other than
// stdout/stderr, a broken peer surfaces as EPIPE.
func (unixSyscalls) Write(fd int32, p []byte) (int, error) {
	n, err := unix.Write(int(fd), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (unixSyscalls) Close(fd int32) error {
	return unix.Close(int(fd))
}
