package grpc

import (
	"context"

	"github.com/bytedance/sonic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName - полное имя gRPC сервиса доски. Сообщения - google.protobuf.Struct
// с теми же полями, что и JSON в REST API.
const ServiceName = "board.v1.BoardService"

type unaryMethod func(s *GRPCServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

var unaryMethods = map[string]unaryMethod{
	"GetBoard":      (*GRPCServer).GetBoard,
	"ListTasks":     (*GRPCServer).ListTasks,
	"GetTask":       (*GRPCServer).GetTask,
	"CreateTask":    (*GRPCServer).CreateTask,
	"UpdateTask":    (*GRPCServer).UpdateTask,
	"DeleteTask":    (*GRPCServer).DeleteTask,
	"MoveTask":      (*GRPCServer).MoveTask,
	"ReorderTask":   (*GRPCServer).ReorderTask,
	"AddComment":    (*GRPCServer).AddComment,
	"EditComment":   (*GRPCServer).EditComment,
	"DeleteComment": (*GRPCServer).DeleteComment,
}

var boardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*interface{})(nil),
	Methods:     methodDescs(),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "DownloadAttachment",
			Handler:       downloadAttachmentHandler,
			ServerStreams: true,
		},
	},
	Metadata: "board/v1/board.proto",
}

func methodDescs() []grpc.MethodDesc {
	descs := make([]grpc.MethodDesc, 0, len(unaryMethods))
	for name, call := range unaryMethods {
		descs = append(descs, unaryDesc(name, call))
	}
	return descs
}

func unaryDesc(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

func downloadAttachmentHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(*GRPCServer).DownloadAttachment(in, stream)
}

// decode раскладывает Struct в запрос сервиса
func decode(in *structpb.Struct, v interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return nil
}

// encode - ответ сервиса в виде Struct
func encode(v interface{}) (*structpb.Struct, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func chunkMessage(data []byte) *wrapperspb.BytesValue {
	return wrapperspb.Bytes(data)
}
