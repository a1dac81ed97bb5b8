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

// Package guid builds the prefix of participant GUIDs from the identity of
// the process. Participants created by the same process share host id and
// unique process id and differ by participant id.
package guid

import (
	"encoding/hex"
	"errors"
	"strings"
	"sync/atomic"
)

const (
	// PrefixSize is the size of a prefix in bytes.
	PrefixSize = 12

	vendorOffset      = 0
	hostOffset        = 2
	processOffset     = 4
	participantOffset = 8
)

var errInvalidPrefix = errors.New("guid prefix is invalid")

// Identity is what the prefix needs to know about the process.
type Identity interface {
	HostID() uint16
	UniqueProcessID() uint32
}

// Vendor identifies the implementation that created a participant.
type Vendor [2]byte

// DefaultVendor is the vendor id used by the daemon and the command line tool.
var DefaultVendor = Vendor{0x01, 0x99}

// Prefix is the GUID prefix shared by all entities of a participant.
type Prefix [PrefixSize]byte

// Unknown is the zero prefix.
var Unknown Prefix

// NewPrefix creates the prefix of a participant of the process described by id.
func NewPrefix(vendor Vendor, id Identity, participant uint32) Prefix {
	var p Prefix
	p.SetVendor(vendor)
	p.SetHostID(id.HostID())
	p.SetProcessID(id.UniqueProcessID())
	p.SetParticipantID(participant)
	return p
}

// Vendor gets the vendor id.
func (p Prefix) Vendor() Vendor {
	return Vendor{p[vendorOffset], p[vendorOffset+1]}
}

// SetVendor sets the vendor id.
func (p *Prefix) SetVendor(v Vendor) {
	p[vendorOffset] = v[0]
	p[vendorOffset+1] = v[1]
}

// HostID gets the host id.
func (p Prefix) HostID() uint16 {
	return uint16(p[hostOffset])<<8 | uint16(p[hostOffset+1])
}

// SetHostID sets the host id.
func (p *Prefix) SetHostID(value uint16) {
	p[hostOffset] = byte(value >> 8)
	p[hostOffset+1] = byte(value)
}

// ProcessID gets the unique process id.
func (p Prefix) ProcessID() uint32 {
	return uint32(p[processOffset])<<24 | uint32(p[processOffset+1])<<16 | uint32(p[processOffset+2])<<8 | uint32(p[processOffset+3])
}

// SetProcessID sets the unique process id.
func (p *Prefix) SetProcessID(value uint32) {
	p[processOffset] = byte(value >> 24)
	p[processOffset+1] = byte(value >> 16)
	p[processOffset+2] = byte(value >> 8)
	p[processOffset+3] = byte(value)
}

// ParticipantID gets the participant id.
func (p Prefix) ParticipantID() uint32 {
	return uint32(p[participantOffset])<<24 | uint32(p[participantOffset+1])<<16 | uint32(p[participantOffset+2])<<8 | uint32(p[participantOffset+3])
}

// SetParticipantID sets the participant id.
func (p *Prefix) SetParticipantID(value uint32) {
	p[participantOffset] = byte(value >> 24)
	p[participantOffset+1] = byte(value >> 16)
	p[participantOffset+2] = byte(value >> 8)
	p[participantOffset+3] = byte(value)
}

// SameHost reports whether both prefixes were created on the same host.
func (p Prefix) SameHost(o Prefix) bool {
	return p.HostID() == o.HostID()
}

// SameProcess reports whether both prefixes were created by the same process.
func (p Prefix) SameProcess(o Prefix) bool {
	return p.SameHost(o) && p.ProcessID() == o.ProcessID()
}

// String formats the prefix as dot separated hex bytes.
func (p Prefix) String() string {
	var sb strings.Builder
	sb.Grow(PrefixSize*3 - 1)
	for i, b := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}

// Parse parses a prefix formatted by String.
func Parse(s string) (Prefix, error) {
	var p Prefix
	parts := strings.Split(s, ".")
	if len(parts) != PrefixSize {
		return p, errInvalidPrefix
	}
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return p, errInvalidPrefix
		}
		p[i] = b[0]
	}
	return p, nil
}

// Generator hands out prefixes for the participants of a process.
type Generator struct {
	vendor Vendor
	id     Identity
	next   uint32
}

// NewGenerator creates a Generator for the process described by id.
func NewGenerator(vendor Vendor, id Identity) *Generator {
	return &Generator{vendor: vendor, id: id}
}

// Next returns the prefix of a new participant. Participant ids start at 1.
func (g *Generator) Next() Prefix {
	return NewPrefix(g.vendor, g.id, atomic.AddUint32(&g.next, 1))
}
