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

package guid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identity struct {
	host uint16
	pid  uint32
}

func (id identity) HostID() uint16          { return id.host }
func (id identity) UniqueProcessID() uint32 { return id.pid }

var testVendor = Vendor{0x01, 0x99}

func TestNewPrefix(t *testing.T) {
	p := NewPrefix(testVendor, identity{host: 0xBEEF, pid: 0xABCD3039}, 7)
	assert.Equal(t, Prefix{0x01, 0x99, 0xBE, 0xEF, 0xAB, 0xCD, 0x30, 0x39, 0, 0, 0, 7}, p)
	assert.Equal(t, testVendor, p.Vendor())
	assert.Equal(t, uint16(0xBEEF), p.HostID())
	assert.Equal(t, uint32(0xABCD3039), p.ProcessID())
	assert.Equal(t, uint32(7), p.ParticipantID())
	assert.Equal(t, "01.99.be.ef.ab.cd.30.39.00.00.00.07", p.String())
}

func TestParse(t *testing.T) {
	p := NewPrefix(testVendor, identity{host: 1, pid: 2}, 3)
	got, err := Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	for _, bad := range []string{"", "01.02", "zz.99.be.ef.ab.cd.30.39.00.00.00.07", "001.99.be.ef.ab.cd.30.39.00.00.00.07"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestSameHostAndProcess(t *testing.T) {
	a := NewPrefix(testVendor, identity{host: 1, pid: 0x00010001}, 1)
	b := NewPrefix(testVendor, identity{host: 1, pid: 0x00010001}, 2)
	c := NewPrefix(testVendor, identity{host: 1, pid: 0x00020001}, 1)
	d := NewPrefix(testVendor, identity{host: 2, pid: 0x00010001}, 1)

	assert.True(t, a.SameProcess(b))
	assert.True(t, a.SameHost(c))
	assert.False(t, a.SameProcess(c), "a restarted process with the same pid is another process")
	assert.False(t, a.SameHost(d))
	assert.False(t, a.SameProcess(d))
}

func TestGenerator(t *testing.T) {
	g := NewGenerator(testVendor, identity{host: 9, pid: 0x12345678})

	var mu sync.Mutex
	seen := make(map[uint32]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := g.Next()
				mu.Lock()
				seen[p.ParticipantID()] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
	assert.True(t, seen[1])
	assert.True(t, seen[800])
}
