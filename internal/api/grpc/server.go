package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	apimw "github.com/St1cky1/command-center/internal/api/middleware"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/usecase"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

type GRPCServer struct {
	board       *usecase.BoardService
	attachments *usecase.AttachmentService
	sessions    apimw.SessionResolver
	logger      *log.Logger

	mu     sync.Mutex
	server *grpc.Server
}

func NewGRPCServer(
	board *usecase.BoardService,
	attachments *usecase.AttachmentService,
	sessions apimw.SessionResolver,
	logger *log.Logger,
) *GRPCServer {
	return &GRPCServer{
		board:       board,
		attachments: attachments,
		sessions:    sessions,
		logger:      logger,
	}
}

// NewServer - grpc.Server с зарегистрированным BoardService и перехватчиками сессии
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
		grpc.StreamInterceptor(s.streamInterceptor),
	)
	srv.RegisterService(&boardServiceDesc, s)
	reflection.Register(srv)
	return srv
}

func (s *GRPCServer) Start(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := s.NewServer()
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Infof("gRPC server listening on :%s", port)
	return srv.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	ctx, err := s.authenticate(ctx)
	if err != nil {
		s.logCall(info.FullMethod, start, err)
		return nil, err
	}

	resp, err := handler(ctx, req)
	s.logCall(info.FullMethod, start, err)
	return resp, err
}

type authStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authStream) Context() context.Context {
	return a.ctx
}

func (s *GRPCServer) streamInterceptor(srv interface{}, ss grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	ctx, err := s.authenticate(ss.Context())
	if err != nil {
		s.logCall(info.FullMethod, start, err)
		return err
	}

	err = handler(srv, &authStream{ServerStream: ss, ctx: ctx})
	s.logCall(info.FullMethod, start, err)
	return err
}

// authenticate кладет пользователя сессии в контекст по заголовку authorization
func (s *GRPCServer) authenticate(ctx context.Context) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, entity.ErrUnauthenticated.Error())
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(values[0]), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, status.Error(codes.Unauthenticated, "bad auth header")
	}

	user, err := s.sessions.CurrentUser(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, toStatus(err)
	}
	return apimw.WithUser(ctx, user), nil
}

func (s *GRPCServer) logCall(method string, start time.Time, err error) {
	entry := s.logger.WithFields(log.Fields{
		"method":      method,
		"code":        status.Code(err).String(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil && status.Code(err) == codes.Internal {
		entry.WithError(err).Error("gRPC call failed")
		return
	}
	entry.Debug("gRPC call")
}

// toStatus переводит ошибку сервиса в gRPC статус
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrUnauthenticated), errors.Is(err, entity.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, entity.ErrForbidden):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrCommentNotFound),
		errors.Is(err, entity.ErrAttachmentNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidStatus), errors.Is(err, entity.ErrInvalidTaskData):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrNoActiveDrag):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, entity.ErrLoadFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
