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

package host

import (
	"strings"

	"github.com/pkg/errors"
)

// Strategy selects how the host id is derived.
type Strategy int

const (
	// Interfaces derives the id from the IPv4 addresses of the host.
	Interfaces Strategy = iota
	// MachineID derives the id from the operating system machine id.
	MachineID
	// Static uses the configured id as is.
	Static
)

func (s Strategy) String() string {
	switch s {
	case Interfaces:
		return "interfaces"
	case MachineID:
		return "machine-id"
	case Static:
		return "static"
	}
	return "unknown"
}

// ParseStrategy parses the strategy name used in config files and flags.
// An empty name selects Interfaces.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "interfaces", "ip":
		return Interfaces, nil
	case "machine-id", "machineid", "machine_id":
		return MachineID, nil
	case "static":
		return Static, nil
	}
	return Interfaces, errors.Wrapf(errUnknownStrategy, "host strategy %q", name)
}

type options struct {
	strategy   Strategy
	staticID   uint16
	interfaces interfacesFunc
	machineID  machineIDFunc
}

// Options it contains configurable options for host id resolution.
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

// WithDefaultOptions resolves the host id from the network interfaces.
func WithDefaultOptions() Options {
	return newFuncOption(func(o *options) {
		o.strategy = Interfaces
		o.interfaces = listAddresses
		o.machineID = readMachineID
	})
}

// WithStrategy sets the host id resolution strategy.
func WithStrategy(s Strategy) Options {
	return newFuncOption(func(o *options) {
		o.strategy = s
	})
}

// WithStaticID fixes the host id. It implies the Static strategy.
func WithStaticID(id uint16) Options {
	return newFuncOption(func(o *options) {
		o.strategy = Static
		o.staticID = id
	})
}

// WithAddressLister replaces the interface address lookup.
func WithAddressLister(f func() ([]string, error)) Options {
	return newFuncOption(func(o *options) {
		o.interfaces = f
	})
}

// WithMachineIDReader replaces the machine id lookup.
func WithMachineIDReader(f func() (string, error)) Options {
	return newFuncOption(func(o *options) {
		o.machineID = f
	})
}
