package board

import (
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
)

func TestDragSessionDropUsesHoverIndex(t *testing.T) {
	var s DragSession
	s.BeginDrag("t1", entity.StatusInbox, 2)
	s.Hover(0)

	move, ok := s.Drop(entity.StatusReview, 4)
	if !ok {
		t.Fatal("Expected drop to produce a move")
	}
	if move.TaskID != "t1" || move.FromStatus != entity.StatusInbox || move.FromIndex != 2 {
		t.Errorf("Unexpected origin: %+v", move)
	}
	if move.ToStatus != entity.StatusReview || move.ToIndex != 0 {
		t.Errorf("Unexpected target: %+v", move)
	}
	if s.Active() {
		t.Error("Expected session cleared after drop")
	}
}

func TestDragSessionLeaveColumn(t *testing.T) {
	var s DragSession
	s.BeginDrag("t1", entity.StatusTodo, 0)
	s.Hover(3)

	// переход на дочерний элемент не сбрасывает индикатор
	s.LeaveColumn(true)
	if idx, ok := s.HoverIndex(); !ok || idx != 3 {
		t.Errorf("Expected hover 3, got %d (%v)", idx, ok)
	}

	s.LeaveColumn(false)
	if _, ok := s.HoverIndex(); ok {
		t.Error("Expected hover cleared after leaving column")
	}

	move, ok := s.Drop(entity.StatusTodo, 1)
	if !ok || move.ToIndex != 1 {
		t.Errorf("Expected fallback index 1, got %+v (%v)", move, ok)
	}
}

func TestDragSessionEndDragClearsEverything(t *testing.T) {
	var s DragSession
	s.BeginDrag("t1", entity.StatusTodo, 1)
	s.Hover(2)
	s.EndDrag()

	if _, ok := s.DraggedTaskID(); ok {
		t.Error("Expected dragged task cleared")
	}
	if _, ok := s.SourceIndex(); ok {
		t.Error("Expected source index cleared")
	}
	if _, ok := s.HoverIndex(); ok {
		t.Error("Expected hover cleared")
	}
	if _, ok := s.Drop(entity.StatusTodo, 0); ok {
		t.Error("Expected no move without active drag")
	}
}

func TestDragSessionHoverWithoutDrag(t *testing.T) {
	var s DragSession
	s.Hover(1)
	if _, ok := s.HoverIndex(); ok {
		t.Error("Expected hover ignored without active drag")
	}
}

func TestColumnsRegistry(t *testing.T) {
	if got := len(Columns(entity.VariantPipeline)); got != 6 {
		t.Errorf("Expected 6 pipeline columns, got %d", got)
	}
	if got := len(Columns(entity.VariantSimple)); got != 3 {
		t.Errorf("Expected 3 simple columns, got %d", got)
	}
	if HasColumn(entity.VariantSimple, entity.StatusReview) {
		t.Error("Expected review outside simple board")
	}
	if DefaultStatus(entity.VariantPipeline) != entity.StatusInbox {
		t.Errorf("Expected inbox default, got %s", DefaultStatus(entity.VariantPipeline))
	}
	if _, ok := ParseVariant("kanban"); ok {
		t.Error("Expected unknown variant rejected")
	}
}
