/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"go.osspkg.com/logx"

	"go.osspkg.com/netloop/errs"
)

func writeLog(err error, message, address string) {
	if err == nil {
		return
	}
	if errs.IsClosed(err) {
		logx.Debug(message, "err", err, "address", address)
		return
	}
	logx.Error(message, "err", err, "address", address)
}
