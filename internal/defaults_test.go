/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal_test

import (
	"testing"
	"time"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/netloop/internal"
)

func TestUnit_Default(t *testing.T) {
	casecheck.Equal(t, 4096, internal.Default(0, 4096))
	casecheck.Equal(t, 10, internal.Default(10, 4096))
	casecheck.Equal(t, 128, internal.Default(-1, 128))
	casecheck.Equal(t, time.Second, internal.Default(0, time.Second))
	casecheck.Equal(t, uint(7), internal.Default(uint(7), 100))
}
