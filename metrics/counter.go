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

package metrics

import "sync/atomic"

// Counter counts events. It only goes up.
type Counter interface {
	Inc(int64)
	Count() int64
	Snapshot() Counter
}

// GetOrRegisterCounter returns the counter registered under name in r,
// registering a new one if there is none.
func GetOrRegisterCounter(name string, r Metrics) Counter {
	return r.GetOrRegister(name, NewCounter).(Counter)
}

// NewCounter constructs a new counter.
func NewCounter() Counter {
	return new(counter)
}

// CounterSnapshot is a read-only copy of another Counter.
type CounterSnapshot int64

// Inc panics.
func (CounterSnapshot) Inc(int64) {
	panic("Inc called on a CounterSnapshot")
}

// Count returns the count at the time the snapshot was taken.
func (c CounterSnapshot) Count() int64 { return int64(c) }

// Snapshot returns the snapshot.
func (c CounterSnapshot) Snapshot() Counter { return c }

type counter struct {
	count int64
}

func (c *counter) Inc(i int64) {
	atomic.AddInt64(&c.count, i)
}

func (c *counter) Count() int64 {
	return atomic.LoadInt64(&c.count)
}

func (c *counter) Snapshot() Counter {
	return CounterSnapshot(c.Count())
}

// Counts returns the current count of every counter registered in r.
func Counts(r Metrics) map[string]int64 {
	counts := make(map[string]int64)
	r.Each(func(name string, i interface{}) {
		if c, ok := i.(Counter); ok {
			counts[name] = c.Snapshot().Count()
		}
	})
	return counts
}
