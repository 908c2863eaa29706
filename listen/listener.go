/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package listen

import (
	"fmt"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/address"
)

const DefaultBacklog = 128

// TCP opens a non-blocking listening socket with SO_REUSEADDR set and
// returns its fd together with the address it actually bound to.
func TCP(addr string, backlog int) (fd int32, bound string, err error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	sa, err := address.Resolve(addr)
	if err != nil {
		return -1, "", err
	}

	sfd, err := unix.Socket(address.Family(sa), unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, "", fmt.Errorf("socket: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Wrap(err, unix.Close(sfd))
		}
	}()

	if err = unix.SetsockoptInt(sfd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return -1, "", fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err = unix.Bind(sfd, sa); err != nil {
		return -1, "", fmt.Errorf("bind %s: %w", address.FromSockaddr(sa), err)
	}
	if err = unix.Listen(sfd, backlog); err != nil {
		return -1, "", fmt.Errorf("listen: %w", err)
	}

	local, err := unix.Getsockname(sfd)
	if err != nil {
		return -1, "", fmt.Errorf("getsockname: %w", err)
	}
	return int32(sfd), address.FromSockaddr(local), nil
}
