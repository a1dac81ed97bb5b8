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

package internal

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/unit-io/sysinfo"
	"github.com/unit-io/sysinfo/server/internal/config"
	lp "github.com/unit-io/sysinfo/server/internal/net"
)

func testConfig(t *testing.T) *config.Config {
	_, file, _, _ := runtime.Caller(0)
	cfg, err := config.Load(filepath.Join(filepath.Dir(file), "../sysinfo.conf"))
	require.NoError(t, err)
	cfg.Listen = "127.0.0.1:0"
	cfg.GrpcListen = "127.0.0.1:0"
	cfg.HostConfig = json.RawMessage(`{"strategy": "static", "static_id": 4660}`)
	return cfg
}

func TestService(t *testing.T) {
	svc, err := NewService(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer svc.Close()
	require.NoError(t, svc.Start())

	info := svc.Info()
	assert.Equal(t, uint16(0x1234), info.HostID())
	assert.False(t, info.Ready())

	{ // JSON
		resp, err := http.Get("http://" + svc.Addr("http").String() + "/identity")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, info.Ready())
	}

	{ // varz
		resp, err := http.Get("http://" + svc.Addr("http").String() + "/varz")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := ioutil.ReadAll(resp.Body)
		require.NoError(t, err)

		var v sysinfo.Varz
		require.NoError(t, json.Unmarshal(body, &v))
		assert.Equal(t, info.UniqueProcessID(), v.UniqueProcessID)
		assert.Equal(t, uint16(0x1234), v.HostID)
	}

	{ // grpc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cc, err := grpc.DialContext(ctx, svc.Addr("grpc").String(), grpc.WithInsecure(), grpc.WithBlock())
		require.NoError(t, err)
		defer cc.Close()

		st, err := lp.GetIdentity(ctx, cc)
		require.NoError(t, err)
		assert.Equal(t, float64(info.UniqueProcessID()), st.Fields["unique_process_id"].GetNumberValue())
		assert.Equal(t, float64(0x1234), st.Fields["host_id"].GetNumberValue())
	}
}

func TestServiceWithoutGrpc(t *testing.T) {
	cfg := testConfig(t)
	cfg.GrpcListen = ""
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Start())
	assert.NotNil(t, svc.Addr("http"))
	assert.Nil(t, svc.Addr("grpc"))
}

func TestServiceListenReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, err := NewService(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.Listen() }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestServiceBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.HostConfig = json.RawMessage(`{"strategy": "coin-toss"}`)
	_, err := NewService(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Listen = "127.0.0.1:bogus"
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()
	assert.Error(t, svc.Start())
}
