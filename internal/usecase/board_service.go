package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/St1cky1/command-center/internal/board"
	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/St1cky1/command-center/internal/usecase"

// AuditPublisher интерфейс для публикации в RabbitMQ
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

// boardState - локальная копия задач одной доски. mu держится всю операцию:
// расчет, оптимистичное применение, запись в базу и commit или откат.
type boardState struct {
	mu     sync.Mutex
	tasks  []entity.Task
	loaded bool

	// под BoardService.mu
	refs     int
	lastUsed time.Time
}

// Доска без обращений дольше boardIdleTTL выгружается из памяти и при следующем запросе читается заново
const boardIdleTTL = 30 * time.Minute

type BoardService struct {
	taskRepo  repository.ITaskRepository
	publisher AuditPublisher
	variant   entity.BoardVariant
	validate  *validator.Validate
	logger    *log.Logger
	tracer    trace.Tracer

	mu      sync.Mutex
	boards  map[int]*boardState
	idleTTL time.Duration

	dragMu sync.Mutex
	drags  map[int]*board.DragSession

	audits sync.WaitGroup
	now    func() time.Time
}

func NewBoardService(
	taskRepo repository.ITaskRepository,
	publisher AuditPublisher,
	variant entity.BoardVariant,
	validate *validator.Validate,
	logger *log.Logger,
) *BoardService {
	return &BoardService{
		taskRepo:  taskRepo,
		publisher: publisher,
		variant:   variant,
		validate:  validate,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		boards:    make(map[int]*boardState),
		idleTTL:   boardIdleTTL,
		drags:     make(map[int]*board.DragSession),
		now:       time.Now,
	}
}

// Columns - колонки доски в порядке отображения
func (s *BoardService) Columns() []entity.Column {
	return board.Columns(s.variant)
}

func (s *BoardService) Variant() entity.BoardVariant {
	return s.variant
}

// FetchAll загружает все задачи доски и заменяет локальное состояние
func (s *BoardService) FetchAll(ctx context.Context, user *entity.User) (tasks []entity.Task, err error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}
	ctx, span := s.startSpan(ctx, "board.FetchAll", owner)
	defer func() { endSpan(span, err) }()

	st := s.acquire(owner)
	defer s.release(st)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := s.load(ctx, st, owner); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("board.tasks", len(st.tasks)))
	return cloneTasks(st.tasks), nil
}

// ListTasks - задачи из локального состояния, при пустом status - вся доска
func (s *BoardService) ListTasks(ctx context.Context, user *entity.User, status entity.TaskStatus) ([]entity.Task, error) {
	if status != "" && !board.HasColumn(s.variant, status) {
		return nil, entity.ErrInvalidStatus
	}

	var out []entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		if status == "" {
			out = cloneTasks(st.tasks)
			return nil
		}
		out = cloneTasks(board.ColumnTasks(st.tasks, status))
		return nil
	})
	return out, err
}

func (s *BoardService) GetTask(ctx context.Context, user *entity.User, taskID string) (*entity.Task, error) {
	var out *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		i := findTask(st.tasks, taskID)
		if i < 0 {
			return entity.ErrTaskNotFound
		}
		t := st.tasks[i].Clone()
		out = &t
		return nil
	})
	return out, err
}

// MoveToColumn переносит задачу в конец колонки и возвращает сообщение с названием колонки.
// При ошибке записи локальное состояние откатывается.
func (s *BoardService) MoveToColumn(ctx context.Context, user *entity.User, taskID string, status entity.TaskStatus) (msg string, err error) {
	column, ok := board.Column(s.variant, status)
	if !ok {
		return "", entity.ErrInvalidStatus
	}

	err = s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.MoveToColumn", owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}
		old := st.tasks[i].Clone()
		if old.Status == status {
			return nil
		}

		// в конец колонки: индекс больше длины ограничивается количеством задач
		_, opErr = s.applyReorder(ctx, st, owner, taskID, status, len(st.tasks))
		if opErr != nil {
			return opErr
		}

		s.sendAuditMessage(entity.ActionMove, user.ID, taskID, &old, &st.tasks[findTask(st.tasks, taskID)], nil)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task moved to %s", column.Title), nil
}

// Reorder ставит задачу на позицию targetIndex в колонке status.
// Все изменения порядка пишутся одной транзакцией, при ошибке локальное состояние откатывается.
func (s *BoardService) Reorder(ctx context.Context, user *entity.User, taskID string, targetIndex int, status entity.TaskStatus) ([]entity.OrderAssignment, error) {
	if !board.HasColumn(s.variant, status) {
		return nil, entity.ErrInvalidStatus
	}

	var changes []entity.OrderAssignment
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.Reorder", owner,
			attribute.String("task.id", taskID),
			attribute.String("task.status", string(status)),
			attribute.Int("task.target_index", targetIndex),
		)
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}
		old := st.tasks[i].Clone()

		var res board.Result
		res, opErr = s.applyReorder(ctx, st, owner, taskID, status, targetIndex)
		if opErr != nil {
			return opErr
		}
		changes = res.Changes
		span.SetAttributes(attribute.Int("board.changes", len(changes)))
		if len(changes) == 0 {
			return nil
		}

		action := entity.ActionReorder
		if res.Moved {
			action = entity.ActionMove
		}
		s.sendAuditMessage(action, user.ID, taskID, &old, &st.tasks[findTask(st.tasks, taskID)], map[string]interface{}{
			"orders": changes,
		})
		return nil
	})
	return changes, err
}

// applyReorder - расчет, оптимистичное применение и одна пакетная запись; вызывается под st.mu
func (s *BoardService) applyReorder(ctx context.Context, st *boardState, owner int, taskID string, status entity.TaskStatus, targetIndex int) (board.Result, error) {
	res, err := board.Reorder(st.tasks, taskID, status, targetIndex)
	if err != nil {
		return board.Result{}, err
	}
	if len(res.Changes) == 0 {
		return res, nil
	}

	prev := st.tasks
	st.tasks = res.Tasks

	if err := s.taskRepo.UpdateOrders(ctx, owner, res.Changes); err != nil {
		st.tasks = prev
		s.logger.WithFields(log.Fields{
			"owner_id": owner,
			"task_id":  taskID,
			"status":   status,
		}).WithError(err).Warn("order update failed, local board reverted")
		return board.Result{}, fmt.Errorf("failed to save task order: %w", err)
	}
	return res, nil
}

// CreateTask создает задачу в конце колонки и добавляет строку из базы в локальное состояние
func (s *BoardService) CreateTask(ctx context.Context, user *entity.User, req *entity.CreateTaskRequest) (*entity.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	req.DueDate = optionalDate(req.DueDate)
	if req.Status == "" {
		req.Status = board.DefaultStatus(s.variant)
	}
	if !board.HasColumn(s.variant, req.Status) {
		return nil, entity.ErrInvalidStatus
	}

	var created *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.CreateTask", owner, attribute.String("task.status", string(req.Status)))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		// Владелец всегда из сессии
		req.OwnerID = owner
		req.Order = board.NextOrder(st.tasks, req.Status)

		created, opErr = s.taskRepo.Create(ctx, req)
		if opErr != nil {
			opErr = fmt.Errorf("failed to create task: %w", opErr)
			return opErr
		}

		tasks := make([]entity.Task, 0, len(st.tasks)+1)
		tasks = append(tasks, st.tasks...)
		st.tasks = append(tasks, created.Clone())

		s.sendAuditMessage(entity.ActionCreate, user.ID, created.ID, nil, created, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask - полная перезапись редактируемых полей, сначала в базе, затем локально
func (s *BoardService) UpdateTask(ctx context.Context, user *entity.User, taskID string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	var updated *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.UpdateTask", owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}
		old := st.tasks[i].Clone()

		updates := map[string]interface{}{
			"title":       req.Title,
			"due_date":    repository.DateArg(optionalDate(req.DueDate)),
			"purpose":     req.Purpose,
			"end_result":  req.EndResult,
			"description": req.Description,
		}

		updated, opErr = s.taskRepo.Update(ctx, taskID, owner, updates)
		if opErr != nil {
			opErr = fmt.Errorf("failed to update task: %w", opErr)
			return opErr
		}
		s.replaceTask(st, *updated)

		s.sendAuditMessage(entity.ActionUpdate, user.ID, taskID, &old, updated, diffTasks(&old, updated))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask удаляет задачу в базе, и только после успеха - локально, с пересчетом порядка колонки
func (s *BoardService) DeleteTask(ctx context.Context, user *entity.User, taskID string) error {
	return s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.DeleteTask", owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}
		old := st.tasks[i].Clone()

		if opErr = s.taskRepo.Delete(ctx, taskID, owner); opErr != nil {
			opErr = fmt.Errorf("failed to delete task: %w", opErr)
			return opErr
		}

		remaining := make([]entity.Task, 0, len(st.tasks)-1)
		remaining = append(remaining, st.tasks[:i]...)
		remaining = append(remaining, st.tasks[i+1:]...)

		res := board.Reindex(remaining, old.Status)
		st.tasks = res.Tasks
		if len(res.Changes) > 0 {
			if err := s.taskRepo.UpdateOrders(ctx, owner, res.Changes); err != nil {
				// задача уже удалена; порядок сверим при следующей загрузке
				st.tasks = remaining
				st.loaded = false
				s.logger.WithFields(log.Fields{
					"owner_id": owner,
					"status":   old.Status,
				}).WithError(err).Warn("column reindex after delete failed")
			}
		}

		s.sendAuditMessage(entity.ActionDelete, user.ID, taskID, &old, nil, nil)
		return nil
	})
}

// AddComment добавляет комментарий; весь список комментариев пишется одной записью
func (s *BoardService) AddComment(ctx context.Context, user *entity.User, taskID string, req *entity.CommentRequest) (*entity.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	return s.writeComments(ctx, user, taskID, "board.AddComment", func(comments []entity.Comment) ([]entity.Comment, error) {
		comment := entity.Comment{
			ID:        newCommentID(comments),
			Author:    user.Name,
			Text:      req.Text,
			CreatedAt: s.now().UTC(),
		}
		return append(comments, comment), nil
	})
}

func (s *BoardService) EditComment(ctx context.Context, user *entity.User, taskID, commentID string, req *entity.CommentRequest) (*entity.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	return s.writeComments(ctx, user, taskID, "board.EditComment", func(comments []entity.Comment) ([]entity.Comment, error) {
		found := false
		edited := s.now().UTC()
		for i := range comments {
			if comments[i].ID == commentID {
				comments[i].Text = req.Text
				comments[i].EditedAt = &edited
				found = true
			}
		}
		if !found {
			return nil, entity.ErrCommentNotFound
		}
		return comments, nil
	})
}

func (s *BoardService) DeleteComment(ctx context.Context, user *entity.User, taskID, commentID string) (*entity.Task, error) {
	return s.writeComments(ctx, user, taskID, "board.DeleteComment", func(comments []entity.Comment) ([]entity.Comment, error) {
		kept := make([]entity.Comment, 0, len(comments))
		for _, c := range comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(comments) {
			return nil, entity.ErrCommentNotFound
		}
		return kept, nil
	})
}

func (s *BoardService) writeComments(
	ctx context.Context,
	user *entity.User,
	taskID string,
	spanName string,
	change func([]entity.Comment) ([]entity.Comment, error),
) (*entity.Task, error) {
	var updated *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, spanName, owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}
		old := st.tasks[i].Clone()

		var comments []entity.Comment
		comments, opErr = change(old.Clone().Comments)
		if opErr != nil {
			return opErr
		}

		updated, opErr = s.taskRepo.Update(ctx, taskID, owner, map[string]interface{}{
			"comments": comments,
		})
		if opErr != nil {
			opErr = fmt.Errorf("failed to save comments: %w", opErr)
			return opErr
		}
		s.replaceTask(st, *updated)

		s.sendAuditMessage(entity.ActionComment, user.ID, taskID, &old, updated, map[string]interface{}{
			"comments": map[string]interface{}{"old": len(old.Comments), "new": len(updated.Comments)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachFile прикрепляет загруженный файл к задаче; список вложений пишется целиком
func (s *BoardService) AttachFile(ctx context.Context, user *entity.User, taskID string, att *entity.Attachment) (*entity.Task, error) {
	var updated *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.AttachFile", owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		if att.OwnerID != owner {
			opErr = entity.ErrForbidden
			return opErr
		}
		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}

		attachments := append(st.tasks[i].Clone().Attachments, *att)
		updated, opErr = s.taskRepo.Update(ctx, taskID, owner, map[string]interface{}{
			"attachments": attachments,
		})
		if opErr != nil {
			opErr = fmt.Errorf("failed to save attachments: %w", opErr)
			return opErr
		}
		s.replaceTask(st, *updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DetachFile убирает файл из вложений задачи, сам файл остается в хранилище
func (s *BoardService) DetachFile(ctx context.Context, user *entity.User, taskID, attachmentID string) (*entity.Task, error) {
	var updated *entity.Task
	err := s.withBoard(ctx, user, func(st *boardState, owner int) error {
		ctx, span := s.startSpan(ctx, "board.DetachFile", owner, attribute.String("task.id", taskID))
		var opErr error
		defer func() { endSpan(span, opErr) }()

		i := findTask(st.tasks, taskID)
		if i < 0 {
			opErr = entity.ErrTaskNotFound
			return opErr
		}

		kept := make([]entity.Attachment, 0, len(st.tasks[i].Attachments))
		for _, a := range st.tasks[i].Attachments {
			if a.ID != attachmentID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(st.tasks[i].Attachments) {
			opErr = entity.ErrAttachmentNotFound
			return opErr
		}

		updated, opErr = s.taskRepo.Update(ctx, taskID, owner, map[string]interface{}{
			"attachments": kept,
		})
		if opErr != nil {
			opErr = fmt.Errorf("failed to save attachments: %w", opErr)
			return opErr
		}
		s.replaceTask(st, *updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Wait дожидается отправки всех сообщений аудита
func (s *BoardService) Wait() {
	s.audits.Wait()
}

// acquire возвращает состояние доски и помечает его занятым, пока не вызван release.
// Заодно выгружает свободные доски, простоявшие дольше idleTTL.
func (s *BoardService) acquire(owner int) *boardState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, st := range s.boards {
		if id != owner && st.refs == 0 && now.Sub(st.lastUsed) > s.idleTTL {
			delete(s.boards, id)
		}
	}

	st, ok := s.boards[owner]
	if !ok {
		st = &boardState{}
		s.boards[owner] = st
	}
	st.refs++
	st.lastUsed = now
	return st
}

func (s *BoardService) release(st *boardState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.refs--
	st.lastUsed = s.now()
}

// withBoard выполняет fn под мьютексом доски, при необходимости сначала загрузив задачи
func (s *BoardService) withBoard(ctx context.Context, user *entity.User, fn func(st *boardState, owner int) error) error {
	owner, err := boardOwner(user)
	if err != nil {
		return err
	}

	st := s.acquire(owner)
	defer s.release(st)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.loaded {
		if err := s.load(ctx, st, owner); err != nil {
			return err
		}
	}
	return fn(st, owner)
}

func (s *BoardService) load(ctx context.Context, st *boardState, owner int) error {
	tasks, err := s.taskRepo.List(ctx, owner, "")
	if err != nil {
		s.logger.WithField("owner_id", owner).WithError(err).Error("failed to load board")
		return fmt.Errorf("%w: %v", entity.ErrLoadFailed, err)
	}
	st.tasks = tasks
	st.loaded = true
	return nil
}

func (s *BoardService) replaceTask(st *boardState, task entity.Task) {
	tasks := make([]entity.Task, len(st.tasks))
	copy(tasks, st.tasks)
	if i := findTask(tasks, task.ID); i >= 0 {
		tasks[i] = task
	}
	st.tasks = tasks
}

func (s *BoardService) startSpan(ctx context.Context, name string, owner int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int("board.owner_id", owner), attribute.String("board.variant", string(s.variant)))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Вспомогательный метод для отправки аудита
func (s *BoardService) sendAuditMessage(
	action entity.ActionType,
	userID int,
	taskID string,
	oldTask *entity.Task,
	newTask *entity.Task,
	changes map[string]interface{},
) {
	if s.publisher == nil {
		return
	}

	auditMsg := &entity.AuditMessage{
		Action:    action,
		UserID:    userID,
		EntityID:  taskID,
		Changes:   changes,
		Timestamp: s.now(),
	}
	if oldTask != nil {
		auditMsg.OldValues = auditValues(oldTask)
	}
	if newTask != nil {
		auditMsg.NewValues = auditValues(newTask)
	}

	// Асинхронная отправка в RabbitMQ
	s.audits.Add(1)
	go func() {
		defer s.audits.Done()
		if err := s.publisher.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			s.logger.WithFields(log.Fields{
				"action":  action,
				"task_id": taskID,
			}).WithError(err).Error("❌ audit publish failed")
		}
	}()
}

func auditValues(t *entity.Task) map[string]interface{} {
	values := map[string]interface{}{
		"title":       t.Title,
		"status":      t.Status,
		"order":       t.Order,
		"purpose":     t.Purpose,
		"end_result":  t.EndResult,
		"description": t.Description,
		"owner_id":    t.OwnerID,
	}
	if t.DueDate != nil {
		values["due_date"] = t.DueDate.String()
	}
	return values
}

// diffTasks - изменения редактируемых полей в формате {"old": ..., "new": ...}
func diffTasks(oldTask, newTask *entity.Task) map[string]interface{} {
	oldValues, newValues := auditValues(oldTask), auditValues(newTask)
	changes := make(map[string]interface{})
	for _, field := range []string{"title", "purpose", "end_result", "description", "due_date"} {
		if oldValues[field] != newValues[field] {
			changes[field] = map[string]interface{}{"old": oldValues[field], "new": newValues[field]}
		}
	}
	return changes
}

// optionalDate - пустая дата из формы ("due_date": "") означает, что срока нет
func optionalDate(d *entity.Date) *entity.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

func boardOwner(user *entity.User) (int, error) {
	if user == nil {
		return 0, entity.ErrUnauthenticated
	}
	return user.BoardOwnerID(), nil
}

func findTask(tasks []entity.Task, taskID string) int {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []entity.Task) []entity.Task {
	out := make([]entity.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// newCommentID - uuid, не совпадающий ни с одним id комментариев задачи
func newCommentID(existing []entity.Comment) string {
	for {
		id := uuid.NewString()
		taken := false
		for _, c := range existing {
			if c.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}
