/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"fmt"
	"math/rand"
	"strings"

	"go.osspkg.com/netloop/protocol"
)

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

func expect(s *Session, cmd, prefix string) error {
	line, err := s.Command(cmd)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, prefix) {
		return fmt.Errorf("%s: unexpected reply %q", cmd, line)
	}
	return nil
}

func randomText(rnd *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rnd.Intn(len(letters))]
	}
	return string(b)
}

func Ping(s *Session, _ *rand.Rand) error {
	return expect(s, "ping", "pong")
}

func Time(s *Session, _ *rand.Rand) error {
	return expect(s, "time", "Current time: ")
}

func Echo(s *Session, rnd *rand.Rand) error {
	msg := randomText(rnd, 5+rnd.Intn(45))
	return expect(s, "echo "+msg, msg)
}

func Help(s *Session, _ *rand.Rand) error {
	if err := s.Send("help"); err != nil {
		return err
	}
	for i := 0; i < protocol.HelpLines; i++ {
		if _, err := s.ReadLine(); err != nil {
			return err
		}
	}
	return nil
}

// Sequence pipelines a short burst of commands and then reads every reply.
func Sequence(s *Session, rnd *rand.Rand) error {
	n := 2 + rnd.Intn(4)
	for i := 0; i < n; i++ {
		if err := s.Send("ping"); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		line, err := s.ReadLine()
		if err != nil {
			return err
		}
		if line != "pong" {
			return fmt.Errorf("sequence: unexpected reply %q", line)
		}
	}
	return nil
}

// Large returns a task that requests the bulk payload of the given size.
func Large(size int) func(s *Session, _ *rand.Rand) error {
	want := protocol.Pattern(size)
	return func(s *Session, _ *rand.Rand) error {
		if err := s.Send("large"); err != nil {
			return err
		}
		got, err := s.ReadN(len(want))
		if err != nil {
			return err
		}
		if string(got) != string(want) {
			return fmt.Errorf("large: payload mismatch")
		}
		return nil
	}
}

// DefaultTasks mirrors the mix of a typical interactive user.
func DefaultTasks() []Task {
	return []Task{
		{Name: "ping", Weight: 10, Call: Ping},
		{Name: "time", Weight: 5, Call: Time},
		{Name: "echo", Weight: 8, Call: Echo},
		{Name: "help", Weight: 2, Call: Help},
		{Name: "sequence", Weight: 3, Call: Sequence},
	}
}
