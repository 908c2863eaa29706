/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import "fmt"

// OutboundBuffer is the undelivered tail of a connection's output: one
// contiguous byte sequence and the offset of the next unsent byte.
// Invariant: 0 <= offset <= len(data).
type OutboundBuffer struct {
	data   []byte
	offset int
}

// NewOutboundBuffer takes a copy of p, the caller keeps ownership of p.
func NewOutboundBuffer(p []byte) *OutboundBuffer {
	data := make([]byte, len(p))
	copy(data, p)
	return &OutboundBuffer{data: data}
}

// Append adds p behind the bytes that are still unsent. Once half of the
// buffer is delivered the sent prefix is dropped so the backing array does
// not grow forever under a steady trickle.
func (b *OutboundBuffer) Append(p []byte) {
	if b.offset > 0 && b.offset >= len(b.data)/2 {
		n := copy(b.data, b.data[b.offset:])
		b.data = b.data[:n]
		b.offset = 0
	}
	b.data = append(b.data, p...)
}

func (b *OutboundBuffer) Remaining() []byte {
	return b.data[b.offset:]
}

func (b *OutboundBuffer) Advance(n int) {
	if n < 0 || b.offset+n > len(b.data) {
		panic(fmt.Sprintf("outbound: advance %d at offset %d of %d", n, b.offset, len(b.data)))
	}
	b.offset += n
}

func (b *OutboundBuffer) Offset() int {
	return b.offset
}

func (b *OutboundBuffer) Len() int {
	return len(b.data)
}

func (b *OutboundBuffer) Pending() int {
	return len(b.data) - b.offset
}

func (b *OutboundBuffer) Done() bool {
	return b.offset == len(b.data)
}
