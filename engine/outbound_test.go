/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package engine_test

import (
	"testing"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/netloop/engine"
)

func TestUnit_OutboundBuffer(t *testing.T) {
	src := []byte("abcdef")
	b := engine.NewOutboundBuffer(src)
	src[0] = 'X'

	casecheck.Equal(t, "abcdef", string(b.Remaining()))
	casecheck.Equal(t, 6, b.Len())

	b.Advance(2)
	casecheck.Equal(t, 2, b.Offset())
	casecheck.Equal(t, 4, b.Pending())

	b.Append([]byte("gh"))
	casecheck.Equal(t, "cdefgh", string(b.Remaining()))

	b.Advance(4)
	b.Append([]byte("ij"))
	casecheck.Equal(t, 0, b.Offset())
	casecheck.Equal(t, "ghij", string(b.Remaining()))

	b.Advance(4)
	casecheck.True(t, b.Done())
	casecheck.Equal(t, 0, b.Pending())
}

func TestUnit_OutboundBufferAdvancePastEnd(t *testing.T) {
	b := engine.NewOutboundBuffer([]byte("abc"))
	defer func() {
		casecheck.True(t, recover() != nil)
		casecheck.Equal(t, 0, b.Offset())
	}()
	b.Advance(4)
}
