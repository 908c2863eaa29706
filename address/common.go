/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package address

import (
	"fmt"
	"net"
	"strconv"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

const DefaultPort = 8080

var (
	ErrResolveTCPAddress = errors.New("resolve tcp address")
)

// Resolve turns "host:port", ":port", "host" or "" into a socket address.
// An empty host binds every IPv4 interface, a missing port means DefaultPort.
func Resolve(address string) (unix.Sockaddr, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, ""
	}
	if len(host) == 0 {
		host = "0.0.0.0"
	}

	p := DefaultPort
	if len(port) > 0 {
		if p, err = strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
			return nil, errors.Wrap(fmt.Errorf("invalid port %q", port), ErrResolveTCPAddress)
		}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err0 := net.LookupIP(host)
		if err0 != nil || len(ips) == 0 {
			return nil, errors.Wrap(fmt.Errorf("lookup %q: %v", host, err0), ErrResolveTCPAddress)
		}
		ip = ips[0]
		for _, v := range ips {
			if v.To4() != nil {
				ip = v
				break
			}
		}
	}

	if v4 := ip.To4(); v4 != nil {
		sa := &unix.SockaddrInet4{Port: p}
		copy(sa.Addr[:], v4)
		return sa, nil
	}
	sa := &unix.SockaddrInet6{Port: p}
	copy(sa.Addr[:], ip.To16())
	return sa, nil
}

func FromSockaddr(sa unix.Sockaddr) string {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(v.Addr[:]).String(), strconv.Itoa(v.Port))
	case *unix.SockaddrUnix:
		return v.Name
	default:
		return ""
	}
}

func Family(sa unix.Sockaddr) int {
	if _, ok := sa.(*unix.SockaddrInet6); ok {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func IsValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
