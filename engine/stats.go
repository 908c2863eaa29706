/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine

import "sync/atomic"

type counters struct {
	accepted atomic.Uint64
	rejected atomic.Uint64
	closed   atomic.Uint64
	faults   atomic.Uint64
	stale    atomic.Uint64
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
	active   atomic.Int64
}

type Stats struct {
	Accepted uint64
	Rejected uint64
	Closed   uint64
	Faults   uint64
	Stale    uint64
	BytesIn  uint64
	BytesOut uint64
	Active   int64
}

// Stats may be called from any goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		Accepted: e.stats.accepted.Load(),
		Rejected: e.stats.rejected.Load(),
		Closed:   e.stats.closed.Load(),
		Faults:   e.stats.faults.Load(),
		Stale:    e.stats.stale.Load(),
		BytesIn:  e.stats.bytesIn.Load(),
		BytesOut: e.stats.bytesOut.Load(),
		Active:   e.stats.active.Load(),
	}
}
