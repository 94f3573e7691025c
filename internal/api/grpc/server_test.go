package grpc

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/infrastructure/storage"
	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus/hooks/test"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var testUser = &entity.User{ID: 1, Name: "Dana", Role: entity.RoleExecutive, IsActive: true}

type tokenSessions struct{}

func (tokenSessions) CurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	if accessToken != "valid" {
		return nil, entity.ErrUnauthenticated
	}
	return testUser, nil
}

// taskTable - ITaskRepository в памяти
type taskTable struct {
	mu    sync.Mutex
	tasks map[string]entity.Task
	seq   int
}

func (t *taskTable) Create(ctx context.Context, req *entity.CreateTaskRequest) (*entity.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	task := entity.Task{ID: fmt.Sprintf("t%d", t.seq), OwnerID: req.OwnerID, Title: req.Title, Status: req.Status, Order: req.Order}
	t.tasks[task.ID] = task
	return &task, nil
}

func (t *taskTable) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	return nil, nil
}

func (t *taskTable) Update(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task := t.tasks[id]
	if comments, ok := updates["comments"].([]entity.Comment); ok {
		task.Comments = comments
	}
	t.tasks[id] = task
	return &task, nil
}

func (t *taskTable) UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range assignments {
		task := t.tasks[a.TaskID]
		task.Status, task.Order = a.Status, a.Order
		t.tasks[a.TaskID] = task
	}
	return nil
}

func (t *taskTable) Delete(ctx context.Context, id string, ownerID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, id)
	return nil
}

func (t *taskTable) List(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []entity.Task{}
	for _, task := range t.tasks {
		out = append(out, task)
	}
	return out, nil
}

type attachmentTable struct {
	rows map[string]entity.Attachment
}

func (a *attachmentTable) Save(ctx context.Context, att *entity.Attachment) (*entity.Attachment, error) {
	a.rows[att.ID] = *att
	return att, nil
}

func (a *attachmentTable) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	att, ok := a.rows[id]
	if !ok {
		return nil, nil
	}
	return &att, nil
}

func (a *attachmentTable) Delete(ctx context.Context, id string) error {
	delete(a.rows, id)
	return nil
}

type testEnv struct {
	conn        *grpc.ClientConn
	attachments *usecase.AttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger, _ := test.NewNullLogger()
	validate := usecase.NewValidator()

	board := usecase.NewBoardService(&taskTable{tasks: make(map[string]entity.Task)}, nil, entity.VariantSimple, validate, logger)
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Cleanup(func() { store.Close() })
	attachments := usecase.NewAttachmentService(&attachmentTable{rows: make(map[string]entity.Attachment)}, store, logger)

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(board, attachments, tokenSessions{}, logger).NewServer()
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &testEnv{conn: conn, attachments: attachments}
}

func authed() context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer valid")
}

func (e *testEnv) call(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = e.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out)
	return out, err
}

func TestUnauthenticatedCall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.call(context.Background(), "GetBoard", nil)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("Expected Unauthenticated, got %v", err)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer expired")
	_, err = env.call(ctx, "GetBoard", nil)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("Expected Unauthenticated for bad token, got %v", err)
	}
}

func TestCreateAndReorderOverGRPC(t *testing.T) {
	env := newTestEnv(t)
	ctx := authed()

	first, err := env.call(ctx, "CreateTask", map[string]interface{}{"title": "Draft memo"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.Fields["status"].GetStringValue() != string(entity.StatusTodo) {
		t.Errorf("Expected task in todo, got %v", first.Fields["status"])
	}
	second, err := env.call(ctx, "CreateTask", map[string]interface{}{"title": "Book venue"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	out, err := env.call(ctx, "ReorderTask", map[string]interface{}{
		"id":           second.Fields["id"].GetStringValue(),
		"status":       "todo",
		"target_index": 0,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n := len(out.Fields["assignments"].GetListValue().GetValues()); n != 2 {
		t.Errorf("Expected 2 assignments, got %d", n)
	}

	msg, err := env.call(ctx, "MoveTask", map[string]interface{}{"id": first.Fields["id"].GetStringValue(), "status": "done"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.Fields["message"].GetStringValue() != "Task moved to Done" {
		t.Errorf("Unexpected message %v", msg.Fields["message"])
	}

	_, err = env.call(ctx, "CreateTask", map[string]interface{}{"title": ""})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("Expected InvalidArgument, got %v", err)
	}
	_, err = env.call(ctx, "GetTask", map[string]interface{}{"id": "missing"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestDownloadAttachmentStream(t *testing.T) {
	env := newTestEnv(t)
	content := bytes.Repeat([]byte("sagan"), 30000)
	att, err := env.attachments.Upload(context.Background(), testUser, &entity.UploadAttachmentRequest{Name: "deck.pdf", Data: content})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	desc := &grpc.StreamDesc{StreamName: "DownloadAttachment", ServerStreams: true}
	stream, err := env.conn.NewStream(authed(), desc, "/"+ServiceName+"/DownloadAttachment")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	req, _ := structpb.NewStruct(map[string]interface{}{"id": att.ID})
	if err := stream.SendMsg(req); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	stream.CloseSend()

	var got bytes.Buffer
	for {
		chunk := new(wrapperspb.BytesValue)
		if err := stream.RecvMsg(chunk); err != nil {
			break
		}
		got.Write(chunk.GetValue())
	}
	if !bytes.Equal(got.Bytes(), content) {
		t.Errorf("Expected %d bytes, got %d", len(content), got.Len())
	}
}

func TestGatewayForwardsCalls(t *testing.T) {
	env := newTestEnv(t)
	mux, err := NewGatewayMux(env.conn)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/board/CreateTask", strings.NewReader(`{"title":"Call bank"}`))
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var task entity.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if task.Title != "Call bank" || task.OwnerID != testUser.ID {
		t.Errorf("Unexpected task %+v", task)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/board/GetBoard", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/board/DropDatabase", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501 for unknown method, got %d", rec.Code)
	}
}
