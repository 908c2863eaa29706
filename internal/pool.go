/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

import (
	"bytes"

	"go.osspkg.com/ioutils/pool"
)

const lineBuffSize = 512

// LinePool holds the inbound buffers that collect bytes until a full line arrives.
var LinePool = pool.New[*bytes.Buffer](func() *bytes.Buffer {
	return bytes.NewBuffer(make([]byte, 0, lineBuffSize))
})
