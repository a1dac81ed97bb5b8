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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runReport(t *testing.T, args ...string) Report {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, run(args, &buf))
	var r Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
	return r
}

func TestRunStatic(t *testing.T) {
	r := runReport(t, "-host_id", "4660", "-port", "7400")

	assert.Equal(t, os.Getpid(), r.ProcessID)
	assert.Equal(t, uint32(os.Getpid()&0xFFFF), r.UniqueProcessID&0xFFFF)
	assert.Equal(t, fmt.Sprintf("%08x", r.UniqueProcessID), r.UniqueProcessIDHex)
	assert.Equal(t, uint16(0x1234), r.HostID)
	assert.Equal(t, "static", r.HostStrategy)

	hex := r.UniqueProcessIDHex
	assert.Equal(t, fmt.Sprintf("01.99.12.34.%s.%s.%s.%s.00.00.00.00", hex[0:2], hex[2:4], hex[4:6], hex[6:8]), r.GuidPrefix)
	assert.Equal(t, fmt.Sprintf("SHM:[55001234%s0000000000000000]:7400", hex), r.ShmLocator)
	assert.Equal(t, "sysinfo_port7400", r.ShmSegment)
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysinfo.conf")
	conf := `{
		// only the host section is read
		"listen": ":6060",
		"host_config": {"strategy": "static", "static_id": 65535,},
	}`
	require.NoError(t, ioutil.WriteFile(path, []byte(conf), 0644))

	r := runReport(t, "-config", path)
	assert.Equal(t, uint16(0xFFFF), r.HostID)

	// flags win over the file
	r = runReport(t, "-config", path, "-host_id", "0")
	assert.Equal(t, uint16(0), r.HostID)
}

func TestRunPretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run([]string{"-host_id", "1", "-pretty"}, &buf))
	assert.Contains(t, buf.String(), "\n  \"process_id\": ")
}

func TestRunErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run([]string{"-host_id", "65536"}, &buf))
	assert.Error(t, run([]string{"-host_strategy", "coin-toss"}, &buf))
	assert.Error(t, run([]string{"-host_strategy", "static"}, &buf))
	assert.Error(t, run([]string{"-config", filepath.Join(t.TempDir(), "missing.conf")}, &buf))
	assert.Error(t, run([]string{"-no_such_flag"}, &buf))
	assert.Empty(t, buf.String())
}
