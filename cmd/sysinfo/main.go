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

// Command sysinfo prints the identity of its own process as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	jcr "github.com/DisposaBoy/JsonConfigReader"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/unit-io/sysinfo"
	"github.com/unit-io/sysinfo/guid"
	"github.com/unit-io/sysinfo/host"
	"github.com/unit-io/sysinfo/internal/log"
	"github.com/unit-io/sysinfo/locator"
)

// Report is the output of the command.
type Report struct {
	ProcessID          int    `json:"process_id"`
	UniqueProcessID    uint32 `json:"unique_process_id"`
	UniqueProcessIDHex string `json:"unique_process_id_hex"`
	HostID             uint16 `json:"host_id"`
	HostStrategy       string `json:"host_strategy"`
	GuidPrefix         string `json:"guid_prefix"`
	ShmLocator         string `json:"shm_locator"`
	ShmSegment         string `json:"shm_segment"`
}

type hostFile struct {
	HostConfig struct {
		Strategy string `json:"strategy"`
		StaticID *int   `json:"static_id"`
	} `json:"host_config"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("sysinfo", flag.ContinueOnError)
	var configfile = fs.String("config", "", "Read the host_config section of a daemon config file.")
	var strategy = fs.String("host_strategy", "", "How to derive the host id: interfaces, machine-id or static.")
	var hostID = fs.Int("host_id", -1, "Use this host id, implies -host_strategy=static.")
	var port = fs.Uint("port", 7411, "Port of the shared memory locator.")
	var level = fs.String("log_level", "warn", "Logging level: debug, info, warn, error.")
	var pretty = fs.Bool("pretty", false, "Indent the output.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	zerolog.SetGlobalLevel(log.ParseLevel(*level, zerolog.WarnLevel))

	if *configfile != "" {
		var hf hostFile
		file, err := os.Open(*configfile)
		if err != nil {
			return errors.Wrap(err, "read config file")
		}
		err = json.NewDecoder(jcr.New(file)).Decode(&hf)
		file.Close()
		if err != nil {
			return errors.Wrap(err, "parse config file")
		}
		if *strategy == "" {
			*strategy = hf.HostConfig.Strategy
		}
		if *hostID < 0 && hf.HostConfig.StaticID != nil && hf.HostConfig.Strategy == "static" {
			*hostID = *hf.HostConfig.StaticID
		}
	}

	opts, err := hostOptions(*strategy, *hostID)
	if err != nil {
		return err
	}
	if *port > 1<<32-1 {
		return errors.Errorf("port %d out of range", *port)
	}

	h := host.New(opts...)
	si := sysinfo.New(sysinfo.WithHostIDSource(h))
	r := report(si, h.Strategy(), uint32(*port))

	enc := json.NewEncoder(w)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}

func hostOptions(strategy string, hostID int) ([]host.Options, error) {
	if hostID >= 0 {
		if hostID > 0xFFFF {
			return nil, errors.Errorf("host id %d out of range", hostID)
		}
		return []host.Options{host.WithStaticID(uint16(hostID))}, nil
	}
	s, err := host.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	if s == host.Static {
		return nil, errors.New("static host strategy needs -host_id")
	}
	return []host.Options{host.WithStrategy(s)}, nil
}

func report(si *sysinfo.SystemInfo, strategy host.Strategy, port uint32) Report {
	upid := si.UniqueProcessID()
	loc := locator.Unicast(port, si)
	return Report{
		ProcessID:          si.ProcessID(),
		UniqueProcessID:    upid,
		UniqueProcessIDHex: fmt.Sprintf("%08x", upid),
		HostID:             si.HostID(),
		HostStrategy:       strategy.String(),
		GuidPrefix:         guid.NewPrefix(guid.DefaultVendor, si, 0).String(),
		ShmLocator:         loc.String(),
		ShmSegment:         locator.SegmentName(port),
	}
}
