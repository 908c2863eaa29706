/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll

import (
	"fmt"
	"time"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

// Poller wraps one epoll instance. All registrations are edge-triggered and
// every fd passed in must already be in non-blocking mode.
type Poller struct {
	fd     int
	events []unix.EpollEvent
	ready  []Event
}

func New(c Option) (*Poller, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	v, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &Poller{
		fd:     v,
		events: make([]unix.EpollEvent, c.CountEvents),
		ready:  make([]Event, 0, c.CountEvents),
	}, nil
}

func (v *Poller) Register(fd int32, mask Interest) error {
	return v.ctl(unix.EPOLL_CTL_ADD, fd, mask)
}

func (v *Poller) Modify(fd int32, mask Interest) error {
	return v.ctl(unix.EPOLL_CTL_MOD, fd, mask)
}

func (v *Poller) Unregister(fd int32) error {
	if err := unix.EpollCtl(v.fd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll del fd %d: %w", fd, err)
	}
	return nil
}

func (v *Poller) ctl(op int, fd int32, mask Interest) error {
	err := unix.EpollCtl(v.fd, op, int(fd), &unix.EpollEvent{Events: toEpoll(mask), Fd: fd})
	if err != nil {
		return fmt.Errorf("epoll ctl(%d) fd %d mask %s: %w", op, fd, mask, err)
	}
	return nil
}

// Wait blocks until at least one registered fd is ready or timeout elapses.
// Zero polls, negative blocks indefinitely. The returned slice is reused by
// the next call.
func (v *Poller) Wait(timeout time.Duration) ([]Event, error) {
	v.ready = v.ready[:0]

	n, err := unix.EpollWait(v.fd, v.events, toMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return v.ready, nil
		}
		return v.ready, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		v.ready = append(v.ready, Event{
			FD:   v.events[i].Fd,
			Mask: fromEpoll(v.events[i].Events),
		})
	}
	return v.ready, nil
}

func (v *Poller) Close() error {
	return unix.Close(v.fd)
}

func toMillis(d time.Duration) int {
	switch {
	case d < 0:
		return -1
	case d == 0:
		return 0
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(ms)
}
