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

// ProcessIDSource returns the operating system identifier of the process.
type ProcessIDSource interface {
	ProcessID() int
}

// ProcessIDFunc adapts a function to ProcessIDSource.
type ProcessIDFunc func() int

// ProcessID calls f.
func (f ProcessIDFunc) ProcessID() int { return f() }

// OSProcessID reads the pid from the operating system. The implementation
// is selected at build time.
type OSProcessID struct{}
