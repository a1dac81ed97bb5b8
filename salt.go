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
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
	"time"

	"github.com/unit-io/sysinfo/internal/log"
)

// SaltSource draws the random high half of the unique process id.
type SaltSource interface {
	Salt() uint16
}

// SaltFunc adapts a function to SaltSource.
type SaltFunc func() uint16

// Salt calls f.
func (f SaltFunc) Salt() uint16 { return f() }

type randomSalt struct {
	seed func() int64
}

// NewRandomSalt returns a SaltSource drawing uniformly over [0, 65535] from
// a generator seeded by the operating system entropy device. The salt only
// has to avoid collisions, it is not meant to be unpredictable.
func NewRandomSalt() SaltSource {
	return &randomSalt{seed: entropySeed}
}

func (s *randomSalt) Salt() uint16 {
	random := rand.New(rand.NewSource(s.seed()))
	return uint16(random.Intn(math.MaxUint16 + 1))
}

// entropySeed reads a seed from the entropy device, falling back to the
// wall clock when the device is not available.
func entropySeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		log.Warn("sysinfo.entropySeed", "entropy device failed, seeding from clock", err)
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
