/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"go.osspkg.com/netloop/engine"
	"go.osspkg.com/netloop/internal"
	"go.osspkg.com/netloop/listen"
)

const defaultCountEvents = 1000

type (
	Config struct {
		Address         string        `yaml:"address"`
		Backlog         int           `yaml:"backlog,omitempty"`
		CountEvents     uint          `yaml:"count_events,omitempty"`
		WaitInterval    time.Duration `yaml:"wait_interval,omitempty"`
		ReadBufferSize  int           `yaml:"read_buffer_size,omitempty"`
		MaxLineSize     int           `yaml:"max_line_size,omitempty"`
		MaxPendingBytes int           `yaml:"max_pending_bytes,omitempty"`
		MaxConns        int           `yaml:"max_conns,omitempty"`
		Greeting        string        `yaml:"greeting,omitempty"`
	}

	// ConfigFile is the layout of the YAML file read by LoadConfig.
	ConfigFile struct {
		Server    Config `yaml:"server"`
		LargeSize int    `yaml:"large_size,omitempty"`
	}
)

func LoadConfig(filename string) (*ConfigFile, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	conf := &ConfigFile{}
	if err = yaml.Unmarshal(b, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filename, err)
	}
	return conf, nil
}

func (c Config) Validate() error {
	if c.Backlog < 0 {
		return fmt.Errorf("server backlog is negative")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("server max conns is negative")
	}
	return nil
}

func (c Config) withDefaults() Config {
	c.Backlog = internal.Default(c.Backlog, listen.DefaultBacklog)
	c.CountEvents = internal.Default(c.CountEvents, defaultCountEvents)
	return c
}

func (c Config) engine() engine.Config {
	conf := engine.Config{
		ReadBufferSize:  c.ReadBufferSize,
		MaxLineSize:     c.MaxLineSize,
		MaxPendingBytes: c.MaxPendingBytes,
		MaxConns:        c.MaxConns,
		WaitInterval:    c.WaitInterval,
	}
	if len(c.Greeting) > 0 {
		conf.Greeting = []byte(c.Greeting)
	}
	return conf
}
