/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import (
	"fmt"
	"io"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"

	"go.osspkg.com/netloop/errs"
)

// Submit queues p for delivery to fd. An Idle connection gets an immediate
// write attempt, whatever the socket does not take is buffered and write
// interest is turned on. A Pending connection gets p appended behind the
// bytes already waiting. The error is non-nil only when the connection is
// unknown or was torn down by this call.
func (e *Engine) Submit(fd int32, p []byte) error {
	c, ok := e.conns.get(fd)
	if !ok || !c.alive {
		return fmt.Errorf("submit fd %d: %w", fd, errs.ErrUnknownConn)
	}
	return e.submit(c, p)
}

func (e *Engine) submit(c *conn, p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if c.out != nil {
		if c.out.Pending()+len(p) > e.cfg.MaxPendingBytes {
			return e.abandon(c, len(p))
		}
		c.out.Append(p)
		return nil
	}

	n, err := e.write(c, p)
	if err != nil {
		e.disconnect(c, err) //nolint: errcheck
		return err
	}
	if n == len(p) {
		return nil
	}

	if len(p)-n > e.cfg.MaxPendingBytes {
		return e.abandon(c, len(p)-n)
	}
	c.out = NewOutboundBuffer(p[n:])
	if err = e.conns.enableWrite(c); err != nil {
		err = fmt.Errorf("enable write fd %d: %w", c.fd, err)
		e.disconnect(c, err) //nolint: errcheck
		return err
	}
	return nil
}

func (e *Engine) abandon(c *conn, size int) error {
	err := fmt.Errorf("stage %d bytes on fd %d: %w", size, c.fd, errs.ErrOutboundOverflow)
	e.disconnect(c, err) //nolint: errcheck
	return err
}

// drain runs on a writable event while the connection is Pending.
func (e *Engine) drain(c *conn) {
	if c.out == nil {
		return
	}

	n, err := e.write(c, c.out.Remaining())
	c.out.Advance(n)
	if err != nil {
		e.disconnect(c, err) //nolint: errcheck
		return
	}
	if !c.out.Done() {
		return
	}

	c.out = nil
	if err = e.conns.disableWrite(c); err != nil {
		e.disconnect(c, fmt.Errorf("disable write fd %d: %w", c.fd, err)) //nolint: errcheck
		return
	}
	if c.closing {
		e.disconnect(c, errs.ErrProtocolClose) //nolint: errcheck
	}
}

// write pushes p until it is fully written, the socket would block or the
// write fails. A short write is progress, not backpressure: the loop goes on
// with the rest right away. Only EAGAIN ends the loop without an error.
func (e *Engine) write(c *conn, p []byte) (int, error) {
	var total int
	for total < len(p) {
		n, err := e.sys.Write(c.fd, p[total:])
		if n > 0 {
			total += n
			e.stats.bytesOut.Add(uint64(n))
		}
		switch {
		case err == nil:
			if n == 0 {
				return total, fmt.Errorf("write fd %d: %w", c.fd, io.ErrShortWrite)
			}
		case errs.IsWouldBlock(err):
			return total, nil
		case errors.Is(err, unix.EINTR):
		default:
			return total, fmt.Errorf("write fd %d: %w", c.fd, err)
		}
	}
	return total, nil
}
