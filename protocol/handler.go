/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package protocol

type (
	// Reply is what a handler wants sent back for one line. Every payload is
	// already newline terminated.
	Reply struct {
		Payloads [][]byte
		Close    bool
	}

	Handler interface {
		Handle(line []byte) Reply
	}

	HandlerFunc func(line []byte) Reply
)

func (f HandlerFunc) Handle(line []byte) Reply {
	return f(line)
}

func Line(s string) [][]byte {
	return [][]byte{[]byte(s + "\n")}
}
