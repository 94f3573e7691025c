package board

import "github.com/St1cky1/command-center/internal/entity"

// Move - результат завершенного перетаскивания
type Move struct {
	TaskID     string            `json:"task_id"`
	FromStatus entity.TaskStatus `json:"from_status"`
	FromIndex  int               `json:"from_index"`
	ToStatus   entity.TaskStatus `json:"to_status,omitempty"`
	ToIndex    int               `json:"to_index"`
}

// DragSession хранит состояние одного перетаскивания.
// После EndDrag или Drop состояние всегда пустое.
type DragSession struct {
	draggedTaskID *string
	sourceColumn  *entity.TaskStatus
	sourceIndex   *int
	hoverIndex    *int
}

func (s *DragSession) BeginDrag(taskID string, sourceColumn entity.TaskStatus, sourceIndex int) {
	s.draggedTaskID = &taskID
	s.sourceColumn = &sourceColumn
	s.sourceIndex = &sourceIndex
	s.hoverIndex = nil
}

// Hover обновляет индекс под указателем, без активного перетаскивания ничего не делает
func (s *DragSession) Hover(index int) {
	if s.draggedTaskID == nil {
		return
	}
	if index < 0 {
		index = 0
	}
	s.hoverIndex = &index
}

// LeaveColumn сбрасывает индикатор, если указатель ушел за пределы колонки.
// relatedInside - связанная цель события находится внутри колонки (переход на дочерний элемент).
func (s *DragSession) LeaveColumn(relatedInside bool) {
	if relatedInside {
		return
	}
	s.hoverIndex = nil
}

func (s *DragSession) EndDrag() {
	s.draggedTaskID = nil
	s.sourceColumn = nil
	s.sourceIndex = nil
	s.hoverIndex = nil
}

func (s *DragSession) Active() bool {
	return s.draggedTaskID != nil
}

func (s *DragSession) DraggedTaskID() (string, bool) {
	if s.draggedTaskID == nil {
		return "", false
	}
	return *s.draggedTaskID, true
}

func (s *DragSession) SourceColumn() (entity.TaskStatus, bool) {
	if s.sourceColumn == nil {
		return "", false
	}
	return *s.sourceColumn, true
}

func (s *DragSession) SourceIndex() (int, bool) {
	if s.sourceIndex == nil {
		return 0, false
	}
	return *s.sourceIndex, true
}

func (s *DragSession) HoverIndex() (int, bool) {
	if s.hoverIndex == nil {
		return 0, false
	}
	return *s.hoverIndex, true
}

// Drop завершает перетаскивание в колонку target. Если индикатор не выставлен,
// используется fallbackIndex. ok=false, если перетаскивания не было.
func (s *DragSession) Drop(target entity.TaskStatus, fallbackIndex int) (Move, bool) {
	defer s.EndDrag()

	if s.draggedTaskID == nil {
		return Move{}, false
	}

	index := fallbackIndex
	if s.hoverIndex != nil {
		index = *s.hoverIndex
	}

	return Move{
		TaskID:     *s.draggedTaskID,
		FromStatus: *s.sourceColumn,
		FromIndex:  *s.sourceIndex,
		ToStatus:   target,
		ToIndex:    index,
	}, true
}
