/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"fmt"
	"time"

	"go.osspkg.com/netloop/internal"
)

const (
	DefaultReadBufferSize  = 4096
	DefaultMaxLineSize     = 64 << 10
	DefaultMaxPendingBytes = 64 << 20
	DefaultWaitInterval    = 500 * time.Millisecond
)

type Config struct {
	// ReadBufferSize is the scratch buffer used for every read call.
	ReadBufferSize int
	// MaxLineSize bounds an inbound line still waiting for its '\n'.
	MaxLineSize int
	// MaxPendingBytes bounds the outbound buffer of a single connection.
	MaxPendingBytes int
	// MaxConns limits live connections, zero means unlimited.
	MaxConns int
	// WaitInterval is how long one multiplexer wait may block, it also
	// bounds how late Run notices cancellation.
	WaitInterval time.Duration
	// Greeting is written once, best effort, right after accept.
	Greeting []byte
	// OnClose is called after a connection is torn down.
	OnClose func(fd int32, reason error)
}

func (c Config) withDefaults() Config {
	c.ReadBufferSize = internal.Default(c.ReadBufferSize, DefaultReadBufferSize)
	c.MaxLineSize = internal.Default(c.MaxLineSize, DefaultMaxLineSize)
	c.MaxPendingBytes = internal.Default(c.MaxPendingBytes, DefaultMaxPendingBytes)
	c.WaitInterval = internal.Default(c.WaitInterval, DefaultWaitInterval)
	return c
}

func (c Config) Validate() error {
	if c.MaxConns < 0 {
		return fmt.Errorf("engine max conns is negative")
	}
	return nil
}
