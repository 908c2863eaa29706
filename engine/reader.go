/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"bytes"
	"fmt"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/errs"
)

// read drains the socket until EAGAIN. Edge-triggered readiness will not
// report the same data again, so stopping early would strand it.
func (e *Engine) read(c *conn) {
	for c.alive {
		n, err := e.sys.Read(c.fd, e.scratch)
		if n > 0 {
			e.stats.bytesIn.Add(uint64(n))
			e.consume(c, e.scratch[:n])
			continue
		}
		switch {
		case err == nil:
			e.disconnect(c, errs.ErrPeerClosed) //nolint: errcheck
			return
		case errs.IsWouldBlock(err):
			return
		case errors.Is(err, unix.EINTR):
		default:
			e.disconnect(c, fmt.Errorf("read fd %d: %w", c.fd, err)) //nolint: errcheck
			return
		}
	}
}

// consume appends p to the inbound buffer and hands every complete line to
// the protocol. Replies go through submit in order.
func (e *Engine) consume(c *conn, p []byte) {
	if c.closing {
		return
	}
	c.in.Write(p) //nolint: errcheck

	for c.alive && !c.closing {
		buf := c.in.Bytes()
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			if c.in.Len() > e.cfg.MaxLineSize {
				err := fmt.Errorf("line of %d bytes on fd %d: %w", c.in.Len(), c.fd, errs.ErrLineTooLong)
				e.disconnect(c, err) //nolint: errcheck
			}
			return
		}

		reply := e.proto.Handle(bytes.TrimSuffix(buf[:i], []byte{'\r'}))
		c.in.Next(i + 1)

		for _, payload := range reply.Payloads {
			if err := e.submit(c, payload); err != nil {
				return
			}
		}
		if reply.Close {
			e.closeAfterFlush(c)
		}
	}
}

// closeAfterFlush ends the connection once everything already submitted is
// delivered. Reading stops right away.
func (e *Engine) closeAfterFlush(c *conn) {
	c.closing = true
	if c.out == nil {
		e.disconnect(c, errs.ErrProtocolClose) //nolint: errcheck
		return
	}
	if err := e.conns.suppressRead(c); err != nil {
		e.disconnect(c, fmt.Errorf("suppress read fd %d: %w", c.fd, err)) //nolint: errcheck
	}
}
