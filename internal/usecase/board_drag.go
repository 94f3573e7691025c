package usecase

import (
	"context"

	"github.com/St1cky1/command-center/internal/board"
	"github.com/St1cky1/command-center/internal/entity"
)

// Жест перетаскивания живет отдельно у каждого пользователя, даже если доска общая

func (s *BoardService) drag(userID int) *board.DragSession {
	d, ok := s.drags[userID]
	if !ok {
		d = &board.DragSession{}
		s.drags[userID] = d
	}
	return d
}

func (s *BoardService) BeginDrag(user *entity.User, taskID string, sourceColumn entity.TaskStatus, sourceIndex int) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}
	if !board.HasColumn(s.variant, sourceColumn) {
		return entity.ErrInvalidStatus
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	s.drag(user.ID).BeginDrag(taskID, sourceColumn, sourceIndex)
	return nil
}

func (s *BoardService) Hover(user *entity.User, index int) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	// без начатого жеста наведение игнорируем
	if d, ok := s.drags[user.ID]; ok {
		d.Hover(index)
	}
	return nil
}

// LeaveColumn сбрасывает индикатор, если указатель ушел за пределы колонки
func (s *BoardService) LeaveColumn(user *entity.User, relatedInside bool) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	if d, ok := s.drags[user.ID]; ok {
		d.LeaveColumn(relatedInside)
	}
	return nil
}

func (s *BoardService) EndDrag(user *entity.User) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	delete(s.drags, user.ID)
	return nil
}

// Drop завершает жест и переставляет задачу. Состояние жеста очищается при любом исходе.
func (s *BoardService) Drop(ctx context.Context, user *entity.User, target entity.TaskStatus, fallbackIndex int) ([]entity.OrderAssignment, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}

	s.dragMu.Lock()
	var move board.Move
	d, ok := s.drags[user.ID]
	if ok {
		move, ok = d.Drop(target, fallbackIndex)
		delete(s.drags, user.ID)
	}
	s.dragMu.Unlock()

	if !ok {
		return nil, entity.ErrNoActiveDrag
	}
	return s.Reorder(ctx, user, move.TaskID, move.ToIndex, move.ToStatus)
}

// DragState - текущий жест пользователя для отрисовки индикатора
func (s *BoardService) DragState(user *entity.User) (board.Move, bool) {
	if user == nil {
		return board.Move{}, false
	}

	s.dragMu.Lock()
	defer s.dragMu.Unlock()

	d, ok := s.drags[user.ID]
	if !ok || !d.Active() {
		return board.Move{}, false
	}
	taskID, _ := d.DraggedTaskID()
	column, _ := d.SourceColumn()
	from, _ := d.SourceIndex()
	move := board.Move{TaskID: taskID, FromStatus: column, FromIndex: from, ToIndex: -1}
	if hover, ok := d.HoverIndex(); ok {
		move.ToIndex = hover
	}
	return move, true
}
