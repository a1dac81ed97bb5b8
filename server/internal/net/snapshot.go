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
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unit-io/sysinfo/guid"
)

// Snapshot captures the identity as a protobuf struct. The guid prefix is
// the one of participant 0, the prefix shared by the process.
func Snapshot(info Identity) (*structpb.Struct, error) {
	upid := info.UniqueProcessID()
	hostID := info.HostID()
	prefix := guid.NewPrefix(guid.DefaultVendor, staticIdentity{host: hostID, pid: upid}, 0)
	return structpb.NewStruct(map[string]interface{}{
		"process_id":            info.ProcessID(),
		"unique_process_id":     upid,
		"unique_process_id_hex": fmt.Sprintf("%08x", upid),
		"host_id":               uint32(hostID),
		"guid_prefix":           prefix.String(),
	})
}

type staticIdentity struct {
	host uint16
	pid  uint32
}

func (id staticIdentity) HostID() uint16          { return id.host }
func (id staticIdentity) UniqueProcessID() uint32 { return id.pid }

// EncodeFrame encodes a message into a binary websocket frame, snappy
// compressed if asked to.
func EncodeFrame(msg proto.Message, compress bool) ([]byte, error) {
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if compress {
		return snappy.Encode(nil, b), nil
	}
	return b, nil
}

// DecodeFrame decodes a frame produced by EncodeFrame into msg.
func DecodeFrame(frame []byte, compressed bool, msg proto.Message) error {
	if compressed {
		b, err := snappy.Decode(nil, frame)
		if err != nil {
			return err
		}
		frame = b
	}
	return proto.Unmarshal(frame, msg)
}
