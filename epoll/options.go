/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package epoll

import (
	"fmt"
)

type (
	Option struct {
		CountEvents uint
	}
)

func (c Option) Validate() error {
	if c.CountEvents == 0 {
		return fmt.Errorf("epoll count events is empty")
	}
	return nil
}
