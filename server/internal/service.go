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
	"net"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/unit-io/sysinfo"
	"github.com/unit-io/sysinfo/host"
	"github.com/unit-io/sysinfo/internal/log"
	"github.com/unit-io/sysinfo/server/internal/config"
	lp "github.com/unit-io/sysinfo/server/internal/net"
)

// _Service is a main struct
type _Service struct {
	sync.Mutex
	info    *sysinfo.SystemInfo // The identity of the process
	context context.Context     // context for the service
	config  *config.Config      // The configuration for the service.
	cancel  context.CancelFunc  // cancellation function
	start   time.Time           // The service start time
	http    *lp.HttpServer      // The underlying HTTP server.
	grpc    *lp.GrpcServer      // The underlying GRPC server.
	addrs   map[string]net.Addr // The bound addresses by protocol
}

// NewService creates the daemon for cfg. The identity is resolved lazily,
// on the first request that needs it.
func NewService(ctx context.Context, cfg *config.Config) (s *_Service, err error) {
	hostOpts, err := cfg.HostOptions()
	if err != nil {
		return nil, err
	}
	info := sysinfo.New(sysinfo.WithHostIDSource(host.New(hostOpts...)))

	ctx, cancel := context.WithCancel(ctx)
	s = &_Service{
		info:    info,
		context: ctx,
		config:  cfg,
		cancel:  cancel,
		start:   time.Now(),
		http:    lp.NewHttpServer(info),
		grpc:    lp.NewGrpcServer(info, lp.WithDefaultOptions()),
		addrs:   make(map[string]net.Addr),
	}

	// Varz
	if cfg.VarzPath != "" {
		s.http.HandleFunc(cfg.VarzPath, info.HandleVarz)
		log.Info("service", "Stats variables exposed at "+cfg.VarzPath)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-s.context.Done():
				return
			case <-ticker.C:
				m := info.Meter()
				log.Logger.Debug().Str("context", "service").
					Int64("goroutines", int64(runtime.NumGoroutine())).
					Int64("unique_id_queries", m.UniqueIDQueries.Count()).
					Bool("ready", info.Ready()).Msg("")
			}
		}
	}()

	return s, nil
}

// Info returns the identity served by the service.
func (s *_Service) Info() *sysinfo.SystemInfo {
	return s.info
}

// Addr returns the address bound for "http" or "grpc", nil if not listening.
func (s *_Service) Addr(proto string) net.Addr {
	s.Lock()
	defer s.Unlock()
	return s.addrs[proto]
}

// Listen starts the service and blocks until it is closed.
func (s *_Service) Listen() (err error) {
	defer s.Close()
	s.hookSignals()

	if err := s.Start(); err != nil {
		return err
	}

	log.Info("service", "service started")
	<-s.context.Done()
	return nil
}

// Start opens the listeners and serves in the background.
func (s *_Service) Start() error {
	if err := s.listen("http", s.config.Listen); err != nil {
		return err
	}
	if s.config.GrpcListen != "" {
		if err := s.listen("grpc", s.config.GrpcListen); err != nil {
			return err
		}
	}
	return nil
}

//listen configures the listener of proto on specified address
func (s *_Service) listen(proto, addr string) error {
	log.Info("service.listen", "starting the "+proto+" listener at "+addr)

	l, err := lp.Listen(addr, s.config.MaxConnections)
	if err != nil {
		log.Error("service.listen", err.Error())
		return err
	}

	s.Lock()
	s.addrs[proto] = l.Addr()
	s.Unlock()

	if proto == "grpc" {
		return s.grpc.Serve(l)
	}
	return s.http.Serve(l)
}

func (s *_Service) onSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		fallthrough
	case syscall.SIGINT:
		log.Info("service.onSignal", "received signal, exiting..."+sig.String())
		s.Close()
	}
}

func (s *_Service) hookSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			s.onSignal(sig)
		case <-s.context.Done():
		}
	}()
}

// Close stops the servers. It is safe to call more than once.
func (s *_Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	s.http.Close()
	s.grpc.Close()
	s.info.Meter().UnregisterAll()
}
