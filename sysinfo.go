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

// Package sysinfo is the process-wide source of identity information used to
// tell participants of a distributed pub/sub system apart.
//
// Every process gets a 32-bit unique process id: the 16 least significant
// bits of the operating system pid, with a random 16-bit salt in the high
// bits. The pid alone is not enough, pid namespaces of containers overlap and
// a host that crashes during boot and restarts hands the same pid to the new
// process before the lease of the old one has expired on its peers.
package sysinfo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unit-io/sysinfo/internal/log"
)

// SystemInfo holds the identity of a process.
type SystemInfo struct {
	opts  *options
	start time.Time
	meter *Meter

	once      sync.Once
	ready     uint32
	uniquePID uint32
}

// New creates a SystemInfo owned by the caller. The unique process id is
// computed on the first call to UniqueProcessID.
func New(opts ...Options) *SystemInfo {
	o := new(options)
	WithDefaultOptions().set(o)
	for _, opt := range opts {
		opt.set(o)
	}
	si := &SystemInfo{
		opts:  o.copyWithDefaults(),
		start: time.Now(),
	}
	si.meter = si.opts.meter
	return si
}

var instance struct {
	once sync.Once
	si   *SystemInfo
}

// Instance returns the SystemInfo shared by the whole process. It is
// created with the default options on first use.
func Instance() *SystemInfo {
	instance.once.Do(func() {
		instance.si = New()
	})
	return instance.si
}

// ProcessID returns the operating system identifier of the process.
func (si *SystemInfo) ProcessID() int {
	si.meter.ProcessIDQueries.Inc(1)
	return si.opts.pids.ProcessID()
}

// UniqueProcessID returns the unique process id, computing it on the first
// call. All callers observe the same value for the life of si.
func (si *SystemInfo) UniqueProcessID() uint32 {
	si.meter.UniqueIDQueries.Inc(1)
	si.once.Do(si.createUniqueProcessID)
	return si.uniquePID
}

// HostID returns the id of the host as reported by the host id source.
func (si *SystemInfo) HostID() uint16 {
	si.meter.HostIDQueries.Inc(1)
	return si.opts.host.ID()
}

// Ready reports whether the unique process id has been computed.
func (si *SystemInfo) Ready() bool {
	return atomic.LoadUint32(&si.ready) == 1
}

// Meter returns the meter of si.
func (si *SystemInfo) Meter() *Meter {
	return si.meter
}

func (si *SystemInfo) createUniqueProcessID() {
	pid := si.opts.pids.ProcessID()
	salt := si.opts.salt.Salt()
	si.uniquePID = Compose(salt, pid)
	si.meter.Computations.Inc(1)
	atomic.StoreUint32(&si.ready, 1)
	log.Logger.Debug().
		Str("context", "sysinfo.createUniqueProcessID").
		Int("pid", pid).
		Uint32("unique_pid", si.uniquePID).
		Msg("unique process id created")
}

// Compose builds a unique process id from a salt and a pid. The salt
// takes the high 16 bits and the 16 least significant bits of the pid the
// low ones.
func Compose(salt uint16, pid int) uint32 {
	return uint32(salt)<<16 | uint32(pid&0xFFFF)
}
