/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/netloop/protocol"
	"go.osspkg.com/netloop/server"
)

const largeSize = 4 << 20

func startServer(t *testing.T, conf server.Config) (server.Server, func()) {
	srv := server.New(conf, protocol.NewCommands(largeSize))
	casecheck.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	return srv, func() {
		cancel()
		select {
		case err := <-done:
			casecheck.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	casecheck.NoError(t, err)
	casecheck.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))
	return conn, bufio.NewReader(conn)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	line, err := r.ReadString('\n')
	casecheck.NoError(t, err)
	return line
}

func TestUnit_ServerCommands(t *testing.T) {
	srv, stop := startServer(t, server.Config{
		Address:      "127.0.0.1:0",
		WaitInterval: 50 * time.Millisecond,
		Greeting:     "Welcome!\n",
	})
	defer stop()

	conn, r := dial(t, srv.Addr())
	defer conn.Close() //nolint: errcheck

	casecheck.Equal(t, "Welcome!\n", readLine(t, r))

	_, err := conn.Write([]byte("ping\necho a b\r\nhello\n"))
	casecheck.NoError(t, err)
	casecheck.Equal(t, "pong\n", readLine(t, r))
	casecheck.Equal(t, "a b\n", readLine(t, r))
	casecheck.Equal(t, "Echo: hello\n", readLine(t, r))

	_, err = conn.Write([]byte("large\n"))
	casecheck.NoError(t, err)
	got := make([]byte, largeSize+1)
	_, err = io.ReadFull(r, got)
	casecheck.NoError(t, err)
	casecheck.True(t, bytes.Equal(protocol.Pattern(largeSize), got))

	_, err = conn.Write([]byte("quit\n"))
	casecheck.NoError(t, err)
	casecheck.Equal(t, "Goodbye!\n", readLine(t, r))
	_, err = r.ReadByte()
	casecheck.True(t, err == io.EOF, err)
}

func TestUnit_ServerManyClients(t *testing.T) {
	srv, stop := startServer(t, server.Config{
		Address:      "127.0.0.1:0",
		WaitInterval: 50 * time.Millisecond,
	})
	defer stop()

	const clients = 20
	conns := make([]net.Conn, 0, clients)
	readers := make([]*bufio.Reader, 0, clients)
	for i := 0; i < clients; i++ {
		c, r := dial(t, srv.Addr())
		conns = append(conns, c)
		readers = append(readers, r)
	}
	for i, c := range conns {
		_, err := c.Write([]byte("echo client\n"))
		casecheck.NoError(t, err, i)
	}
	for _, r := range readers {
		casecheck.Equal(t, "client\n", readLine(t, r))
	}
	for _, c := range conns {
		casecheck.NoError(t, c.Close())
	}

	deadline := time.Now().Add(5 * time.Second)
	for srv.Stats().Closed < clients && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	casecheck.Equal(t, uint64(clients), srv.Stats().Accepted)
	casecheck.Equal(t, uint64(clients), srv.Stats().Closed)
}

func TestUnit_ServerAlreadyRunning(t *testing.T) {
	srv, stop := startServer(t, server.Config{Address: "127.0.0.1:0", WaitInterval: 50 * time.Millisecond})
	defer stop()

	casecheck.True(t, srv.Listen() != nil)
}

func TestUnit_ServeWithoutListen(t *testing.T) {
	srv := server.New(server.Config{}, protocol.NewCommands(0))
	casecheck.True(t, srv.Serve(context.Background()) != nil)
}

func TestUnit_LoadConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	casecheck.NoError(t, os.WriteFile(filename, []byte(`server:
  address: "127.0.0.1:9000"
  backlog: 64
  wait_interval: 250ms
  max_conns: 100
  greeting: "hi"
large_size: 1024
`), 0o600))

	conf, err := server.LoadConfig(filename)
	casecheck.NoError(t, err)
	casecheck.Equal(t, "127.0.0.1:9000", conf.Server.Address)
	casecheck.Equal(t, 64, conf.Server.Backlog)
	casecheck.Equal(t, 250*time.Millisecond, conf.Server.WaitInterval)
	casecheck.Equal(t, 100, conf.Server.MaxConns)
	casecheck.Equal(t, "hi", conf.Server.Greeting)
	casecheck.Equal(t, 1024, conf.LargeSize)
}
