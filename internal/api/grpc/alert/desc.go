package alert

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "alertmonitor.v1.AlertStatusService"
	// GetAlertStateMethod is the full method path of GetAlertState.
	GetAlertStateMethod = "/" + ServiceName + "/GetAlertState"
)

// StatusServer is the server API of the status service.
type StatusServer interface {
	GetAlertState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterStatusServer registers srv on registrar.
func RegisterStatusServer(registrar grpc.ServiceRegistrar, srv StatusServer) {
	registrar.RegisterService(&statusServiceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by grpc convention.
var statusServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAlertState",
			Handler:    getAlertStateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alertmonitor/v1/status.proto",
}

func getAlertStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(StatusServer).GetAlertState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetAlertStateMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetAlertState(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}
