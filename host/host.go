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

// Package host resolves the 16-bit identifier of the machine running the
// process. The id distinguishes hosts within a deployment; it is not
// guaranteed to be unique.
package host

import (
	"bytes"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	pshost "github.com/shirou/gopsutil/v4/host"
	psnet "github.com/shirou/gopsutil/v4/net"
	"golang.org/x/crypto/blake2b"

	"github.com/unit-io/sysinfo/internal/log"
)

// LoopbackID is the host id used when no address identifies the host (127.1).
const LoopbackID = uint16(127)<<8 | 1

type (
	interfacesFunc func() ([]string, error)
	machineIDFunc  func() (string, error)
)

// Host resolves the host id once and serves it from then on.
type Host struct {
	opts *options
	once sync.Once
	id   uint16
}

// New creates a Host. The id is resolved on the first call to ID.
func New(opts ...Options) *Host {
	h := &Host{
		opts: new(options),
	}
	WithDefaultOptions().set(h.opts)
	for _, opt := range opts {
		opt.set(h.opts)
	}
	return h
}

var defaultHost struct {
	once sync.Once
	h    *Host
}

// Default returns the process-wide Host using the default options.
func Default() *Host {
	defaultHost.once.Do(func() {
		defaultHost.h = New()
	})
	return defaultHost.h
}

// ID returns the host id.
func (h *Host) ID() uint16 {
	h.once.Do(h.resolve)
	return h.id
}

// Strategy returns the configured resolution strategy.
func (h *Host) Strategy() Strategy {
	return h.opts.strategy
}

func (h *Host) resolve() {
	id, err := h.lookup()
	if err != nil {
		log.Warn("host.resolve", "using loopback host id", err)
		id = LoopbackID
	}
	h.id = id
	log.Logger.Debug().Str("context", "host.resolve").Str("strategy", h.opts.strategy.String()).Uint16("host_id", id).Msg("host id resolved")
}

func (h *Host) lookup() (uint16, error) {
	switch h.opts.strategy {
	case Static:
		return h.opts.staticID, nil
	case MachineID:
		id, err := h.fromMachineID()
		if err == nil {
			return id, nil
		}
		log.Warn("host.lookup", "machine id unavailable, using interfaces", err)
	}
	return h.fromInterfaces()
}

func (h *Host) fromInterfaces() (uint16, error) {
	addrs, err := h.opts.interfaces()
	if err != nil {
		return 0, errors.Wrap(err, "host interfaces")
	}
	id, ok := FromAddresses(addrs)
	if !ok {
		return 0, errNoAddresses
	}
	return id, nil
}

func (h *Host) fromMachineID() (uint16, error) {
	s, err := h.opts.machineID()
	if err != nil {
		return 0, errors.Wrap(err, "machine id")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyMachineID
	}
	if u, err := uuid.Parse(s); err == nil {
		return Fold(u[:]), nil
	}
	sum := blake2b.Sum256([]byte(s))
	return Fold(sum[:]), nil
}

// FromAddresses derives a host id from a set of IPv4 addresses. The result
// does not depend on the order of addrs. Entries that are not IPv4 addresses
// are ignored; ok is false when none is left.
func FromAddresses(addrs []string) (id uint16, ok bool) {
	var ips [][]byte
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip == nil {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			ips = append(ips, []byte(ip4))
		}
	}
	if len(ips) == 0 {
		return LoopbackID, false
	}
	sort.Slice(ips, func(i, j int) bool { return bytes.Compare(ips[i], ips[j]) < 0 })

	buf := make([]byte, 0, len(ips)*net.IPv4len)
	for i, ip := range ips {
		if i > 0 && bytes.Equal(ip, ips[i-1]) {
			continue
		}
		buf = append(buf, ip...)
	}
	sum := blake2b.Sum256(buf)
	return Fold(sum[:]), true
}

// Fold XORs b as a sequence of big-endian 16-bit words.
func Fold(b []byte) uint16 {
	var id uint16
	i := 0
	for ; i+1 < len(b); i += 2 {
		id ^= uint16(b[i])<<8 | uint16(b[i+1])
	}
	if i < len(b) {
		id ^= uint16(b[i]) << 8
	}
	return id
}

// listAddresses returns the IPv4 addresses of the non-loopback interfaces.
func listAddresses() ([]string, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return nil, err
	}
	var addrs []string
	for _, iface := range ifaces {
		if isLoopback(iface.Flags) {
			continue
		}
		for _, a := range iface.Addrs {
			ip, _, err := net.ParseCIDR(a.Addr)
			if err != nil {
				ip = net.ParseIP(a.Addr)
			}
			if ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			addrs = append(addrs, ip.To4().String())
		}
	}
	return addrs, nil
}

func isLoopback(flags []string) bool {
	for _, f := range flags {
		if f == "loopback" {
			return true
		}
	}
	return false
}

func readMachineID() (string, error) {
	return pshost.HostID()
}
