/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"time"

	"go.osspkg.com/errors"

	"go.osspkg.com/netloop/errs"
)

// Session is one line-protocol connection. It is not safe for concurrent use.
type Session struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
	maxLine int
	closed  bool

	// Greeting holds the first server line when Config.Greeting is set.
	Greeting string
}

func (s *Session) deadline() error {
	return s.conn.SetDeadline(time.Now().Add(s.timeout))
}

// Send writes cmd terminated by a newline without waiting for a reply.
func (s *Session) Send(cmd string) error {
	if err := s.deadline(); err != nil {
		return err
	}
	_, err := io.WriteString(s.conn, cmd+"\n")
	return err
}

// Command sends cmd and returns the next response line.
func (s *Session) Command(cmd string) (string, error) {
	if err := s.Send(cmd); err != nil {
		return "", err
	}
	return s.ReadLine()
}

// ReadLine returns the next line without its terminator.
func (s *Session) ReadLine() (string, error) {
	if err := s.deadline(); err != nil {
		return "", err
	}

	var line []byte
	for {
		chunk, err := s.r.ReadSlice('\n')
		if len(line)+len(chunk) > s.maxLine+1 {
			return "", errs.ErrLineTooLong
		}
		line = append(line, chunk...)

		switch {
		case err == nil:
			line = bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'})
			return string(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(line) > 0:
			return "", io.ErrUnexpectedEOF
		default:
			return "", err
		}
	}
}

// ReadN reads exactly n bytes, used for payloads larger than a line.
func (s *Session) ReadN(n int) ([]byte, error) {
	if err := s.deadline(); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(s.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Quit sends quit, returns the farewell line and waits for the server to close.
func (s *Session) Quit() (string, error) {
	bye, err := s.Command("quit")
	if err != nil {
		return "", err
	}
	if _, err = s.r.ReadByte(); !errors.Is(err, io.EOF) {
		return bye, errors.Wrap(errors.New("connection still open after quit"), err)
	}
	return bye, nil
}

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.conn.Close()
	if errs.IsClosed(err) {
		return nil
	}
	return err
}
