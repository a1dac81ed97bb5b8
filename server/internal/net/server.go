/*
 * Copyright 2020 Saffat Technologies, Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package net

import (
	"crypto/tls"
	"errors"
	"net"
	"strings"

	"golang.org/x/net/netutil"
)

const (
	MaxMessageSize = 1 << 16
)

// ErrServerClosed occurs when a server is closed.
var ErrServerClosed = errors.New("Server closed")

// Identity is the process identity served to clients.
type Identity interface {
	ProcessID() int
	UniqueProcessID() uint32
	HostID() uint16
}

type options struct {
	TLSConfig *tls.Config
	KeepAlive bool
}

// Options it contains configurable options for servers
type Options interface {
	set(*options)
}

// fOption wraps a function that modifies options into an
// implementation of the Option interface.
type fOption struct {
	f func(*options)
}

func (fo *fOption) set(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *fOption {
	return &fOption{
		f: f,
	}
}

// WithDefaultOptions will create server with some default values.
//   KeepAlive: true
//   TlsConfig: nil
func WithDefaultOptions() Options {
	return newFuncOption(func(o *options) {
		o.KeepAlive = true
		o.TLSConfig = nil
	})
}

// WithTLSConfig will set an SSL/TLS configuration to be used by the server.
func WithTLSConfig(t *tls.Config) Options {
	return newFuncOption(func(o *options) {
		o.TLSConfig = t
	})
}

// WithKeepAlive turns grpc keepalive enforcement on or off.
func WithKeepAlive(keepAlive bool) Options {
	return newFuncOption(func(o *options) {
		o.KeepAlive = keepAlive
	})
}

// Listen creates net.Listener for tcp and unix domains:
// if addr is is in the form "unix:/run/sysinfo.sock" it's a unix socket, otherwise TCP host:port.
// A positive maxConns caps the number of simultaneously accepted connections.
func Listen(addr string, maxConns int) (net.Listener, error) {
	var l net.Listener
	var err error
	addrParts := strings.SplitN(addr, ":", 2)
	if len(addrParts) == 2 && addrParts[0] == "unix" {
		l, err = net.Listen("unix", addrParts[1])
	} else {
		l, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		l = netutil.LimitListener(l, maxConns)
	}
	return l, nil
}
