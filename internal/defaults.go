/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Default returns v when it is positive, otherwise def.
// time.Duration satisfies Number, so it covers timeouts too.
func Default[T Number](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}
