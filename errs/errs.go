/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package errs

import (
	"io"
	"strings"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrPeerClosed       = errors.New("peer closed connection")
	ErrProtocolClose    = errors.New("connection closed by protocol")
	ErrShutdown         = errors.New("server shutdown")
	ErrOutboundOverflow = errors.New("outbound buffer limit exceeded")
	ErrLineTooLong      = errors.New("inbound line limit exceeded")
	ErrSocket           = errors.New("socket error")
	ErrUnknownConn      = errors.New("unknown connection")
)

type Kind uint8

const (
	KindNone Kind = iota
	KindWouldBlock
	KindPeerClosed
	KindExhausted
	KindFault
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWouldBlock:
		return "would_block"
	case KindPeerClosed:
		return "peer_closed"
	case KindExhausted:
		return "exhausted"
	default:
		return "fault"
	}
}

// Classify maps an I/O or lifecycle error onto the connection error taxonomy.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case IsWouldBlock(err):
		return KindWouldBlock
	case IsClosed(err):
		return KindPeerClosed
	case errors.Is(err, ErrOutboundOverflow),
		errors.Is(err, ErrLineTooLong),
		errors.Is(err, unix.ENOMEM),
		errors.Is(err, unix.ENOBUFS):
		return KindExhausted
	default:
		return KindFault
	}
}

func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// IsRetry reports errors after which the same call should simply be repeated.
func IsRetry(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNABORTED)
}

func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, ErrPeerClosed) ||
		errors.Is(err, ErrProtocolClose) ||
		errors.Is(err, ErrShutdown) ||
		strings.Contains(err.Error(), "use of closed network connection") {
		return true
	}
	return false
}
