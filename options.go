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

package sysinfo

import (
	"github.com/unit-io/sysinfo/host"
)

// HostIDSource returns the id of the host the process runs on.
type HostIDSource interface {
	ID() uint16
}

// HostIDFunc adapts a function to HostIDSource.
type HostIDFunc func() uint16

// ID calls f.
func (f HostIDFunc) ID() uint16 { return f() }

type options struct {
	pids  ProcessIDSource
	salt  SaltSource
	host  HostIDSource
	meter *Meter
}

func (src *options) copyWithDefaults() *options {
	opts := options{}
	if src != nil {
		opts = *src
	}
	if opts.pids == nil {
		opts.pids = OSProcessID{}
	}
	if opts.salt == nil {
		opts.salt = NewRandomSalt()
	}
	if opts.host == nil {
		opts.host = host.Default()
	}
	if opts.meter == nil {
		opts.meter = NewMeter()
	}
	return &opts
}

// Options it contains configurable options for SystemInfo.
type Options interface {
	set(*options)
}

// fOption wraps a function that modifies options into an
// implementation of the Options interface.
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

// WithDefaultOptions will create SystemInfo with some default values.
//   ProcessIDSource: OSProcessID
//   SaltSource: NewRandomSalt()
//   HostIDSource: host.Default()
func WithDefaultOptions() Options {
	return newFuncOption(func(o *options) {
		o.pids = OSProcessID{}
		o.salt = NewRandomSalt()
		o.host = host.Default()
	})
}

// WithProcessIDSource sets the source of the operating system pid.
func WithProcessIDSource(src ProcessIDSource) Options {
	return newFuncOption(func(o *options) {
		o.pids = src
	})
}

// WithSaltSource sets the source of the random salt.
func WithSaltSource(src SaltSource) Options {
	return newFuncOption(func(o *options) {
		o.salt = src
	})
}

// WithHostIDSource sets the host id collaborator.
func WithHostIDSource(src HostIDSource) Options {
	return newFuncOption(func(o *options) {
		o.host = src
	})
}

// WithMeter sets the meter that records queries and computations.
func WithMeter(m *Meter) Options {
	return newFuncOption(func(o *options) {
		o.meter = m
	})
}
