/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"fmt"
	"net"
	"time"

	"go.osspkg.com/netloop/internal"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxLine  = 64 << 10
	defaultMaxConns = 1
)

type Config struct {
	Address  string        `yaml:"address"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	MaxConns uint64        `yaml:"max_conns,omitempty"`
	// MaxLineSize bounds a single response line read by Session.Command.
	MaxLineSize int `yaml:"max_line_size,omitempty"`
	// Greeting tells the session to consume one line right after connect.
	Greeting bool `yaml:"greeting,omitempty"`
}

func (c Config) Resolve() (*net.TCPAddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", c.Address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.Address, err)
	}
	return addr, nil
}

func (c Config) withDefaults() Config {
	c.Timeout = internal.Default(c.Timeout, defaultTimeout)
	c.MaxConns = internal.Default(c.MaxConns, defaultMaxConns)
	c.MaxLineSize = internal.Default(c.MaxLineSize, defaultMaxLine)
	return c
}
