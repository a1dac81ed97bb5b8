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
	"context"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unit-io/sysinfo/internal/log"
)

const (
	identityServiceName = "sysinfo.Identity"
	identityGetMethod   = "/" + identityServiceName + "/Get"
)

// IdentityServer is the server API for the sysinfo.Identity service.
type IdentityServer interface {
	Get(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func _Identity_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: identityGetMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServer).Get(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var _Identity_serviceDesc = grpc.ServiceDesc{
	ServiceName: identityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Get",
			Handler:    _Identity_Get_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sysinfo.proto",
}

// RegisterIdentityServer registers srv on s.
func RegisterIdentityServer(s *grpc.Server, srv IdentityServer) {
	s.RegisterService(&_Identity_serviceDesc, srv)
}

// GetIdentity calls sysinfo.Identity/Get on cc.
func GetIdentity(ctx context.Context, cc *grpc.ClientConn, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, identityGetMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GrpcServer serves the identity over grpc.
type GrpcServer struct {
	sync.Mutex
	opts *options
	info Identity
	srv  *grpc.Server
}

// NewGrpcServer creates a GrpcServer for info.
func NewGrpcServer(info Identity, opts ...Options) *GrpcServer {
	srv := &GrpcServer{
		opts: new(options),
		info: info,
	}
	WithDefaultOptions().set(srv.opts)
	for _, opt := range opts {
		opt.set(srv.opts)
	}
	return srv
}

// Get implements IdentityServer.
func (s *GrpcServer) Get(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := Snapshot(s.info)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// Serve serves grpc requests on list until Close is called.
func (s *GrpcServer) Serve(list net.Listener) error {
	secure := ""
	var opts []grpc.ServerOption
	opts = append(opts, grpc.MaxRecvMsgSize(int(MaxMessageSize)))
	if s.opts.TLSConfig != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(s.opts.TLSConfig)))
		secure = " secure"
	}

	if s.opts.KeepAlive {
		kepConfig := keepalive.EnforcementPolicy{
			MinTime:             1 * time.Second, // If a client pings more than once every second, terminate the connection
			PermitWithoutStream: true,            // Allow pings even when there are no active streams
		}
		opts = append(opts, grpc.KeepaliveEnforcementPolicy(kepConfig))

		kpConfig := keepalive.ServerParameters{
			Time:    60 * time.Second, // Ping the client if it is idle for 60 seconds to ensure the connection is still active
			Timeout: 20 * time.Second, // Wait 20 second for the ping ack before assuming the connection is dead
		}
		opts = append(opts, grpc.KeepaliveParams(kpConfig))
	}

	srv := grpc.NewServer(opts...)
	RegisterIdentityServer(srv, s)

	s.Lock()
	s.srv = srv
	s.Unlock()

	log.Info("net.GrpcServer", "gRPC/"+grpc.Version+secure+" server is registered")
	go func() {
		if err := srv.Serve(list); err != nil && err != grpc.ErrServerStopped {
			log.Error("net.GrpcServer", "gRPC server failed: "+err.Error())
		}
	}()
	return nil
}

// Close stops the server.
func (s *GrpcServer) Close() {
	s.Lock()
	defer s.Unlock()
	if s.srv != nil {
		s.srv.Stop()
	}
}

var _ IdentityServer = (*GrpcServer)(nil)
