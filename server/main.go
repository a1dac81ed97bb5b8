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
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/unit-io/sysinfo/internal/log"
	"github.com/unit-io/sysinfo/server/internal"
	"github.com/unit-io/sysinfo/server/internal/config"
)

func main() {
	// Get the directory of the process
	exe, err := os.Executable()
	if err != nil {
		panic(err.Error())
	}

	var configfile = flag.String("config", "sysinfo.conf", "Path to config file.")
	var listenOn = flag.String("listen", "", "Override address and port to listen on for HTTP(S) and websocket clients.")
	var listenGrpcOn = flag.String("grpc_listen", "", "Override address and port to listen on for GRPC clients.")
	var varzPath = flag.String("varz", "/varz", "Expose runtime stats at the given endpoint, e.g. /varz. Disabled if not set")
	flag.Parse()

	// Default level is info, unless the config says otherwise
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if !filepath.IsAbs(*configfile) {
		*configfile = filepath.Join(filepath.Dir(exe), *configfile)
	}
	log.Debug("main", "Using config from "+*configfile)
	cfg, err := config.Load(*configfile)
	if err != nil {
		log.Fatal("main", "Failed to load config file", err)
	}

	zerolog.DurationFieldUnit = time.Nanosecond
	if cfg.LoggingLevel != "" {
		l := log.ParseLevel(cfg.LoggingLevel, zerolog.InfoLevel)
		zerolog.SetGlobalLevel(l)
	}

	if *listenOn != "" {
		cfg.Listen = *listenOn
	}

	// Set up gRPC server, if one is configured
	if *listenGrpcOn != "" {
		cfg.GrpcListen = *listenGrpcOn
	}

	if *varzPath != "" {
		cfg.VarzPath = *varzPath
	}

	svc, err := internal.NewService(context.Background(), cfg)
	if err != nil {
		log.Fatal("main", "Failed to create service", err)
	}

	// Listen and serve
	log.Info("main", "Service is running at "+cfg.Listen)
	if err := svc.Listen(); err != nil {
		log.Fatal("main", "Failed to listen", err)
	}
}
