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
	"encoding/json"
	"os"

	jcr "github.com/DisposaBoy/JsonConfigReader"
	"github.com/pkg/errors"

	"github.com/unit-io/sysinfo/host"
)

// Config represents main configuration.
type Config struct {
	// Default HTTP(S) address:port to listen on for websocket and JSON. Either a
	// numeric or a canonical name, e.g. ":80" or ":https". Could include a host name, e.g.
	// "localhost:80". Could be a unix socket, e.g. "unix:/run/sysinfo.sock".
	// Can be overridden from the command line, see option --listen.
	Listen string `json:"listen"`

	// Default address:port to listen on for grpc. Blank disables grpc.
	// Can be overridden from the command line, see option --grpc_listen.
	GrpcListen string `json:"grpc_listen"`

	// Default logging level is "InfoLevel" so to enable the debug log set the "LogLevel" to "DebugLevel".
	LoggingLevel string `json:"logging_level"`

	// Maximum number of simultaneous connections per listener. Zero means no limit.
	MaxConnections int `json:"max_connections"`

	// Config to resolve the host id
	HostConfig json.RawMessage `json:"host_config"`

	// Config to expose runtime stats
	VarzPath string `json:"varz_path"`
}

// HostConfig represents the configuration of the host id resolution.
type HostConfig struct {
	// Strategy is one of "interfaces", "machine-id" or "static".
	Strategy string `json:"strategy"`

	// StaticID is the host id used by the static strategy.
	StaticID uint16 `json:"static_id"`
}

// Load reads a configuration file. The file is JSON and may contain comments.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	defer file.Close()

	var cfg *Config
	if err = json.NewDecoder(jcr.New(file)).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	if cfg == nil {
		cfg = new(Config)
	}
	return cfg, nil
}

// Host parses the host section of the configuration. A missing section
// yields the zero HostConfig.
func (c *Config) Host() (HostConfig, error) {
	var hc HostConfig
	if len(c.HostConfig) == 0 {
		return hc, nil
	}
	if err := json.Unmarshal(c.HostConfig, &hc); err != nil {
		return hc, errors.Wrap(err, "parse host config")
	}
	return hc, nil
}

// HostOptions converts the host section into host resolution options.
func (c *Config) HostOptions() ([]host.Options, error) {
	hc, err := c.Host()
	if err != nil {
		return nil, err
	}
	strategy, err := host.ParseStrategy(hc.Strategy)
	if err != nil {
		return nil, err
	}
	if strategy == host.Static {
		return []host.Options{host.WithStaticID(hc.StaticID)}, nil
	}
	return []host.Options{host.WithStrategy(strategy)}, nil
}
