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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/unit-io/sysinfo/internal/log"
	"github.com/unit-io/sysinfo/metrics"
)

// Meter records how the identity is queried.
type Meter struct {
	Metrics          metrics.Metrics
	Computations     metrics.Counter
	ProcessIDQueries metrics.Counter
	UniqueIDQueries  metrics.Counter
	HostIDQueries    metrics.Counter
}

// NewMeter provide meter to capture statistics.
func NewMeter() *Meter {
	Metrics := metrics.NewMetrics()
	return &Meter{
		Metrics:          Metrics,
		Computations:     metrics.GetOrRegisterCounter("computations", Metrics),
		ProcessIDQueries: metrics.GetOrRegisterCounter("process_id_queries", Metrics),
		UniqueIDQueries:  metrics.GetOrRegisterCounter("unique_id_queries", Metrics),
		HostIDQueries:    metrics.GetOrRegisterCounter("host_id_queries", Metrics),
	}
}

// UnregisterAll unregister all metrics from meter.
func (m *Meter) UnregisterAll() {
	m.Metrics.UnregisterAll()
}

// Varz outputs the identity and its stats on the monitoring port.
type Varz struct {
	Start           time.Time        `json:"start"`
	Now             time.Time        `json:"now"`
	Uptime          string           `json:"uptime"`
	ProcessID       int              `json:"process_id"`
	UniqueProcessID uint32           `json:"unique_process_id"`
	HostID          uint16           `json:"host_id"`
	Ready           bool             `json:"ready"`
	Counters        map[string]int64 `json:"counters"`
}

func uptime(d time.Duration) string {
	// Just use total seconds for uptime, and display days / years.
	tsecs := d / time.Second
	tmins := tsecs / 60
	thrs := tmins / 60
	tdays := thrs / 24
	tyrs := tdays / 365

	if tyrs > 0 {
		return fmt.Sprintf("%dy%dd%dh%dm%ds", tyrs, tdays%365, thrs%24, tmins%60, tsecs%60)
	}
	if tdays > 0 {
		return fmt.Sprintf("%dd%dh%dm%ds", tdays, thrs%24, tmins%60, tsecs%60)
	}
	if thrs > 0 {
		return fmt.Sprintf("%dh%dm%ds", thrs, tmins%60, tsecs%60)
	}
	if tmins > 0 {
		return fmt.Sprintf("%dm%ds", tmins, tsecs%60)
	}
	return fmt.Sprintf("%ds", tsecs)
}

// Varz returns a Varz struct containing the identity and the meter counts.
// The counts are read before the identity so the snapshot does not include
// its own queries.
func (si *SystemInfo) Varz() *Varz {
	v := &Varz{Start: si.start}
	v.Now = time.Now()
	v.Uptime = uptime(time.Since(si.start))
	v.Ready = si.Ready()
	v.Counters = metrics.Counts(si.meter.Metrics)
	v.ProcessID = si.ProcessID()
	v.UniqueProcessID = si.UniqueProcessID()
	v.HostID = si.HostID()
	return v
}

// HandleVarz will process HTTP requests for identity stats information.
func (si *SystemInfo) HandleVarz(w http.ResponseWriter, r *http.Request) {
	b, err := json.MarshalIndent(si.Varz(), "", "  ")
	if err != nil {
		log.Error("sysinfo.HandleVarz", "error marshaling response to varz request: "+err.Error())
	}

	// Handle response
	ResponseHandler(w, r, b)
}

// ResponseHandler handles responses for monitoring routes.
func ResponseHandler(w http.ResponseWriter, r *http.Request, data []byte) {
	// Get callback from request.
	callback := r.URL.Query().Get("callback")
	// If callback is not empty then
	if callback != "" {
		// Response for JSONP
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprintf(w, "%s(%s)", callback, data)
	} else {
		// Otherwise JSON
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}
