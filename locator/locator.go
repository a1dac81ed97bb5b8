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

// Package locator formats the addresses of the shared memory transport.
//
// A unicast locator carries the host id and the unique process id of the
// process listening on the port, so peers on the same host can tell a
// restarted process from the one that owned the port before.
package locator

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

const (
	// KindSHM is the locator kind of the shared memory transport.
	KindSHM int32 = 16

	// AddressSize is the size of the address of a locator.
	AddressSize = 16

	unicastType   = 'U'
	multicastType = 'M'

	typeOffset    = 0
	hostOffset    = 2
	processOffset = 4

	segmentPrefix = "sysinfo_port"
)

// Identity is what a locator needs to know about the process.
type Identity interface {
	HostID() uint16
	UniqueProcessID() uint32
}

// Locator is the address of a transport endpoint.
type Locator struct {
	Kind    int32
	Port    uint32
	Address [AddressSize]byte
}

// Unicast returns the shared memory locator of a port owned by the process
// described by id.
func Unicast(port uint32, id Identity) Locator {
	l := Locator{Kind: KindSHM, Port: port}
	l.Address[typeOffset] = unicastType
	l.setHostID(id.HostID())
	pid := id.UniqueProcessID()
	l.Address[processOffset] = byte(pid >> 24)
	l.Address[processOffset+1] = byte(pid >> 16)
	l.Address[processOffset+2] = byte(pid >> 8)
	l.Address[processOffset+3] = byte(pid)
	return l
}

// Multicast returns the shared memory multicast locator of a port on the
// host of id. Multicast ports are shared, so no process id is recorded.
func Multicast(port uint32, id Identity) Locator {
	l := Locator{Kind: KindSHM, Port: port}
	l.Address[typeOffset] = multicastType
	l.setHostID(id.HostID())
	return l
}

func (l *Locator) setHostID(value uint16) {
	l.Address[hostOffset] = byte(value >> 8)
	l.Address[hostOffset+1] = byte(value)
}

// IsSHM reports whether l belongs to the shared memory transport.
func (l Locator) IsSHM() bool {
	return l.Kind == KindSHM
}

// IsUnicast reports whether l is a shared memory unicast locator.
func (l Locator) IsUnicast() bool {
	return l.IsSHM() && l.Address[typeOffset] == unicastType
}

// IsMulticast reports whether l is a shared memory multicast locator.
func (l Locator) IsMulticast() bool {
	return l.IsSHM() && l.Address[typeOffset] == multicastType
}

// HostID gets the host id.
func (l Locator) HostID() uint16 {
	return uint16(l.Address[hostOffset])<<8 | uint16(l.Address[hostOffset+1])
}

// ProcessID gets the unique process id. It is zero for multicast locators.
func (l Locator) ProcessID() uint32 {
	return uint32(l.Address[processOffset])<<24 | uint32(l.Address[processOffset+1])<<16 |
		uint32(l.Address[processOffset+2])<<8 | uint32(l.Address[processOffset+3])
}

// IsFromThisHost reports whether l is a shared memory locator of the host of id.
// Shared memory segments are only reachable from the same host.
func IsFromThisHost(l Locator, id Identity) bool {
	return l.IsSHM() && l.HostID() == id.HostID()
}

// IsFromThisProcess reports whether l is a unicast locator opened by the
// process described by id.
func IsFromThisProcess(l Locator, id Identity) bool {
	return l.IsUnicast() && IsFromThisHost(l, id) && l.ProcessID() == id.UniqueProcessID()
}

// SegmentName returns the name of the shared memory segment of a port.
func SegmentName(port uint32) string {
	return segmentPrefix + strconv.FormatUint(uint64(port), 10)
}

// String formats the locator, e.g. "SHM:[55000200abcd3039...]:7400".
func (l Locator) String() string {
	kind := "SHM"
	if !l.IsSHM() {
		kind = strconv.FormatInt(int64(l.Kind), 10)
	}
	return fmt.Sprintf("%s:[%s]:%d", kind, hex.EncodeToString(l.Address[:]), l.Port)
}
