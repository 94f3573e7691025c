package grpc

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxGatewayBody = 1 << 20

// NewGatewayHandler создает HTTP Gateway для gRPC: POST /v1/board/{method}
func NewGatewayHandler(ctx context.Context, grpcAddr string) (http.Handler, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to register gateway: %w", err)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return NewGatewayMux(conn)
}

// NewGatewayMux - gateway поверх готового соединения
func NewGatewayMux(conn grpc.ClientConnInterface) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()
	marshaler := &runtime.JSONPb{}

	err := mux.HandlePath(http.MethodPost, "/v1/board/{method}", func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		ctx := r.Context()
		method := pathParams["method"]
		if _, ok := unaryMethods[method]; !ok {
			runtime.HTTPError(ctx, mux, marshaler, w, r, status.Errorf(codes.Unimplemented, "unknown method %s", method))
			return
		}

		in := new(structpb.Struct)
		body, err := io.ReadAll(io.LimitReader(r.Body, maxGatewayBody))
		if err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.InvalidArgument, "invalid body"))
			return
		}
		if len(body) > 0 {
			if err := protojson.Unmarshal(body, in); err != nil {
				runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.InvalidArgument, "invalid body"))
				return
			}
		}

		if auth := r.Header.Get("Authorization"); auth != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", auth)
		}

		out := new(structpb.Struct)
		if err := conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, err)
			return
		}

		payload, err := marshaler.Marshal(out)
		if err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.Internal, err.Error()))
			return
		}
		w.Header().Set("Content-Type", marshaler.ContentType(out))
		w.Write(payload)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register gateway: %w", err)
	}
	return mux, nil
}
