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

package net

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/unit-io/sysinfo/internal/log"
)

const (
	// minInterval bounds how often a websocket client can ask to be sent the identity.
	minInterval = 100 * time.Millisecond

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{"sysinfo"},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HttpServer serves the identity as JSON and over websocket.
type HttpServer struct {
	sync.Mutex
	opts *options
	info Identity
	mux  *http.ServeMux
	srv  *http.Server
}

// NewHttpServer creates a HttpServer for info.
func NewHttpServer(info Identity, opts ...Options) *HttpServer {
	srv := &HttpServer{
		opts: new(options),
		info: info,
		mux:  http.NewServeMux(),
	}
	WithDefaultOptions().set(srv.opts)
	for _, opt := range opts {
		opt.set(srv.opts)
	}
	srv.mux.HandleFunc("/identity", srv.HandleIdentity)
	srv.mux.HandleFunc("/ws", srv.HandleWS)
	return srv
}

// HandleFunc registers an additional route, e.g. varz.
func (s *HttpServer) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.mux.HandleFunc(pattern, handler)
}

// Handler returns the router of the server.
func (s *HttpServer) Handler() http.Handler {
	return s.mux
}

// HandleIdentity writes the identity as JSON.
func (s *HttpServer) HandleIdentity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	st, err := Snapshot(s.info)
	if err != nil {
		log.Error("net.HandleIdentity", "snapshot: "+err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		log.Error("net.HandleIdentity", "marshal: "+err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

// HandleWS upgrades the connection and sends the identity as a binary
// protobuf frame. Query parameters:
//   compress=snappy  snappy compress the frames
//   interval=1s      keep sending the identity at this interval until the client goes away
func (s *HttpServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	compress := r.URL.Query().Get("compress") == "snappy"
	var interval time.Duration
	if v := r.URL.Query().Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < minInterval {
			http.Error(w, "invalid interval", http.StatusBadRequest)
			return
		}
		interval = d
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("net.HandleWS", "upgrade: "+err.Error())
		return
	}
	defer ws.Close()

	if err := s.writeSnapshot(ws, compress); err != nil || interval == 0 {
		s.closeWS(ws)
		return
	}

	// The read loop only notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.writeSnapshot(ws, compress); err != nil {
				return
			}
		}
	}
}

func (s *HttpServer) writeSnapshot(ws *websocket.Conn, compress bool) error {
	st, err := Snapshot(s.info)
	if err != nil {
		return err
	}
	frame, err := EncodeFrame(st, compress)
	if err != nil {
		return err
	}
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.BinaryMessage, frame)
}

func (s *HttpServer) closeWS(ws *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Serve serves http requests on list until Close is called.
func (s *HttpServer) Serve(list net.Listener) error {
	s.Lock()
	s.srv = &http.Server{
		Handler:   s.mux,
		TLSConfig: s.opts.TLSConfig,
	}
	srv := s.srv
	s.Unlock()

	go func() {
		var err error
		if s.opts.TLSConfig != nil {
			err = srv.ServeTLS(list, "", "")
		} else {
			err = srv.Serve(list)
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error("net.HttpServer", "http server failed: "+err.Error())
		}
	}()
	return nil
}

// Close stops the server.
func (s *HttpServer) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}
