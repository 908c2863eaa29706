/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package protocol

import (
	"bytes"
	"strings"
	"time"
)

const DefaultLargeSize = 10 << 20

const helpText = "Available commands:\n" +
	"  ping       - responds with pong\n" +
	"  time       - shows current time\n" +
	"  echo <msg> - echoes your message\n" +
	"  large      - streams a large payload\n" +
	"  help       - shows this help\n" +
	"  quit/exit  - disconnect\n"

// HelpLines is the number of lines the help command replies with.
var HelpLines = strings.Count(helpText, "\n")

// Commands is the toy text protocol served by the example server.
type Commands struct {
	Now       func() time.Time
	LargeSize int
}

func NewCommands(largeSize int) *Commands {
	if largeSize <= 0 {
		largeSize = DefaultLargeSize
	}
	return &Commands{Now: time.Now, LargeSize: largeSize}
}

func (v *Commands) Handle(line []byte) Reply {
	cmd := string(bytes.TrimSpace(line))

	switch {
	case len(cmd) == 0:
		return Reply{Payloads: Line("Empty message received")}
	case cmd == "ping":
		return Reply{Payloads: Line("pong")}
	case cmd == "time":
		return Reply{Payloads: Line("Current time: " + v.Now().Format(time.DateTime))}
	case cmd == "quit", cmd == "exit":
		return Reply{Payloads: Line("Goodbye!"), Close: true}
	case cmd == "help":
		return Reply{Payloads: [][]byte{[]byte(helpText)}}
	case cmd == "large":
		return Reply{Payloads: [][]byte{Pattern(v.LargeSize)}}
	case len(cmd) > 5 && cmd[:5] == "echo ":
		return Reply{Payloads: Line(cmd[5:])}
	default:
		return Reply{Payloads: Line("Echo: " + cmd)}
	}
}

// Pattern returns size bytes of repeating A..Z followed by a newline.
func Pattern(size int) []byte {
	b := make([]byte, size+1)
	for i := 0; i < size; i++ {
		b[i] = 'A' + byte(i%26)
	}
	b[size] = '\n'
	return b
}
