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

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unit-io/sysinfo/host"
)

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "sysinfo.conf")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoadSample(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	cfg, err := Load(filepath.Join(filepath.Dir(file), "../../sysinfo.conf"))
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Listen)
	assert.Equal(t, ":6080", cfg.GrpcListen)
	assert.Equal(t, "/varz", cfg.VarzPath)

	opts, err := cfg.HostOptions()
	require.NoError(t, err)
	assert.Equal(t, host.Interfaces, host.New(opts...).Strategy())
}

func TestLoadWithComments(t *testing.T) {
	path := writeConfig(t, `{
		// listen on a unix socket
		"listen": "unix:/tmp/sysinfo.sock",
		"logging_level": "debug",
		"max_connections": 8,
		"host_config": {
			"strategy": "static",
			"static_id": 4660, // 0x1234
		},
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unix:/tmp/sysinfo.sock", cfg.Listen)
	assert.Equal(t, "debug", cfg.LoggingLevel)
	assert.Equal(t, 8, cfg.MaxConnections)

	hc, err := cfg.Host()
	require.NoError(t, err)
	assert.Equal(t, HostConfig{Strategy: "static", StaticID: 0x1234}, hc)

	opts, err := cfg.HostOptions()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), host.New(opts...).ID())
}

func TestHostConfigMissing(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"listen": ":7000"}`))
	require.NoError(t, err)
	hc, err := cfg.Host()
	require.NoError(t, err)
	assert.Equal(t, HostConfig{}, hc)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"listen": `))
	assert.Error(t, err)

	cfg, err := Load(writeConfig(t, `{"host_config": {"strategy": "dns"}}`))
	require.NoError(t, err)
	_, err = cfg.HostOptions()
	assert.Error(t, err)

	cfg, err = Load(writeConfig(t, `{"host_config": "static"}`))
	require.NoError(t, err)
	_, err = cfg.Host()
	assert.Error(t, err)
}
