/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

import (
	"go.osspkg.com/logx"

	"go.osspkg.com/netloop/errs"
)

// LogClose reports why a connection went away. Orderly endings are debug
// noise, everything else is a warning.
func LogClose(message string, reason error, fd int32, addr string) {
	switch kind := errs.Classify(reason); kind {
	case errs.KindNone, errs.KindPeerClosed:
		logx.Debug(message, "fd", fd, "addr", addr, "reason", reason)
	default:
		logx.Warn(message, "fd", fd, "addr", addr, "kind", kind.String(), "err", reason)
	}
}
