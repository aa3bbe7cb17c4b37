package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "vmforge.v1.Provisioning"

// ProvisioningServer is the server API for the provisioning service. Every
// method exchanges free-form Struct messages.
type ProvisioningServer interface {
	Provision(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProvisionWithBuilder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProvisionFromPrototype(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProvisionBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Plan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterPrototype(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPrototypes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemovePrototype(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetVM(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVMs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logs(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ProvisioningServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ProvisioningServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ProvisioningServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the provisioning service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProvisioningServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Provision", ProvisioningServer.Provision),
		unaryMethod("ProvisionWithBuilder", ProvisioningServer.ProvisionWithBuilder),
		unaryMethod("ProvisionFromPrototype", ProvisioningServer.ProvisionFromPrototype),
		unaryMethod("ProvisionBatch", ProvisioningServer.ProvisionBatch),
		unaryMethod("Plan", ProvisioningServer.Plan),
		unaryMethod("RegisterPrototype", ProvisioningServer.RegisterPrototype),
		unaryMethod("ListPrototypes", ProvisioningServer.ListPrototypes),
		unaryMethod("RemovePrototype", ProvisioningServer.RemovePrototype),
		unaryMethod("GetVM", ProvisioningServer.GetVM),
		unaryMethod("ListVMs", ProvisioningServer.ListVMs),
		unaryMethod("Logs", ProvisioningServer.Logs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vmforge/v1/provisioning",
}

// RegisterProvisioningServer registers srv on s
func RegisterProvisioningServer(s grpc.ServiceRegistrar, srv ProvisioningServer) {
	s.RegisterService(&ServiceDesc, srv)
}
