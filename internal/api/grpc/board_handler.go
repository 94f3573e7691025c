package grpc

import (
	"context"

	apimw "github.com/St1cky1/command-center/internal/api/middleware"
	"github.com/St1cky1/command-center/internal/entity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// 64KB чанки при скачивании
const downloadChunkSize = 64 * 1024

type taskRef struct {
	ID string `json:"id"`
}

type listTasksRequest struct {
	Status entity.TaskStatus `json:"status"`
}

type updateTaskRequest struct {
	ID string `json:"id"`
	entity.UpdateTaskRequest
}

type moveTaskRequest struct {
	ID     string            `json:"id"`
	Status entity.TaskStatus `json:"status"`
}

type reorderTaskRequest struct {
	ID          string            `json:"id"`
	Status      entity.TaskStatus `json:"status"`
	TargetIndex int               `json:"target_index"`
}

type commentRequest struct {
	ID        string `json:"id"`
	CommentID string `json:"comment_id"`
	Text      string `json:"text"`
}

// GetBoard - колонки и задачи доски
func (s *GRPCServer) GetBoard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tasks, err := s.board.FetchAll(ctx, apimw.UserFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]interface{}{
		"variant": s.board.Variant(),
		"columns": s.board.Columns(),
		"tasks":   tasks,
	})
}

// ListTasks - список задач, status фильтрует по колонке
func (s *GRPCServer) ListTasks(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listTasksRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	tasks, err := s.board.ListTasks(ctx, apimw.UserFromContext(ctx), req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]interface{}{"tasks": tasks})
}

// GetTask - получение задачи
func (s *GRPCServer) GetTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req taskRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.GetTask(ctx, apimw.UserFromContext(ctx), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

// CreateTask - создание задачи
func (s *GRPCServer) CreateTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req entity.CreateTaskRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.CreateTask(ctx, apimw.UserFromContext(ctx), &req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

// UpdateTask - обновление задачи
func (s *GRPCServer) UpdateTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req updateTaskRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.UpdateTask(ctx, apimw.UserFromContext(ctx), req.ID, &req.UpdateTaskRequest)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

// DeleteTask - удаление задачи
func (s *GRPCServer) DeleteTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req taskRef
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := s.board.DeleteTask(ctx, apimw.UserFromContext(ctx), req.ID); err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]bool{"success": true})
}

func (s *GRPCServer) MoveTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req moveTaskRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	msg, err := s.board.MoveToColumn(ctx, apimw.UserFromContext(ctx), req.ID, req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]string{"message": msg})
}

func (s *GRPCServer) ReorderTask(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req reorderTaskRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	assignments, err := s.board.Reorder(ctx, apimw.UserFromContext(ctx), req.ID, req.TargetIndex, req.Status)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]interface{}{"assignments": assignments})
}

func (s *GRPCServer) AddComment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req commentRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.AddComment(ctx, apimw.UserFromContext(ctx), req.ID, &entity.CommentRequest{Text: req.Text})
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

func (s *GRPCServer) EditComment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req commentRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.EditComment(ctx, apimw.UserFromContext(ctx), req.ID, req.CommentID, &entity.CommentRequest{Text: req.Text})
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

func (s *GRPCServer) DeleteComment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req commentRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	task, err := s.board.DeleteComment(ctx, apimw.UserFromContext(ctx), req.ID, req.CommentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(task)
}

// DownloadAttachment - скачивание вложения (streaming)
func (s *GRPCServer) DownloadAttachment(in *structpb.Struct, stream grpc.ServerStream) error {
	ctx := stream.Context()
	var req taskRef
	if err := decode(in, &req); err != nil {
		return err
	}

	dataChan, errChan := s.attachments.DownloadStream(ctx, apimw.UserFromContext(ctx), req.ID, downloadChunkSize)
	for {
		select {
		case data, ok := <-dataChan:
			if !ok {
				if err := <-errChan; err != nil {
					return toStatus(err)
				}
				return nil
			}
			if err := stream.SendMsg(chunkMessage(data)); err != nil {
				s.logger.WithField("attachment_id", req.ID).WithError(err).Warn("error sending attachment data")
				return status.Error(codes.Internal, "error sending data")
			}

		case <-ctx.Done():
			return status.Error(codes.Canceled, "request canceled")
		}
	}
}
