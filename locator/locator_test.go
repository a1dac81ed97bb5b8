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

package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type identity struct {
	host uint16
	pid  uint32
}

func (id identity) HostID() uint16          { return id.host }
func (id identity) UniqueProcessID() uint32 { return id.pid }

func TestUnicast(t *testing.T) {
	id := identity{host: 0x0102, pid: 0xABCD3039}
	l := Unicast(7400, id)

	assert.True(t, l.IsSHM())
	assert.True(t, l.IsUnicast())
	assert.False(t, l.IsMulticast())
	assert.Equal(t, uint32(7400), l.Port)
	assert.Equal(t, uint16(0x0102), l.HostID())
	assert.Equal(t, uint32(0xABCD3039), l.ProcessID())
	assert.Equal(t, "SHM:[55000102abcd30390000000000000000]:7400", l.String())

	assert.True(t, IsFromThisHost(l, id))
	assert.True(t, IsFromThisProcess(l, id))

	// same pid, new salt: the process restarted
	restarted := identity{host: 0x0102, pid: 0x11113039}
	assert.True(t, IsFromThisHost(l, restarted))
	assert.False(t, IsFromThisProcess(l, restarted))

	assert.False(t, IsFromThisHost(l, identity{host: 0x0103, pid: id.pid}))
}

func TestMulticast(t *testing.T) {
	id := identity{host: 0xBEEF, pid: 0xABCD3039}
	l := Multicast(7401, id)

	assert.True(t, l.IsMulticast())
	assert.False(t, l.IsUnicast())
	assert.Equal(t, uint16(0xBEEF), l.HostID())
	assert.Equal(t, uint32(0), l.ProcessID())
	assert.True(t, IsFromThisHost(l, id))
	assert.False(t, IsFromThisProcess(l, id))
}

func TestNonSHM(t *testing.T) {
	l := Locator{Kind: 1, Port: 7400}
	l.Address[0] = unicastType
	assert.False(t, l.IsSHM())
	assert.False(t, l.IsUnicast())
	assert.False(t, IsFromThisHost(l, identity{}))
	assert.Equal(t, "1:[55000000000000000000000000000000]:7400", l.String())
}

func TestSegmentName(t *testing.T) {
	assert.Equal(t, "sysinfo_port7400", SegmentName(7400))
}
