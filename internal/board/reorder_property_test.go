package board

import (
	"fmt"
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
	"pgregory.net/rapid"
)

var simpleStatuses = []entity.TaskStatus{entity.StatusTodo, entity.StatusInProgress, entity.StatusDone}

func genBoard(t *rapid.T) []entity.Task {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	tasks := make([]entity.Task, n)
	for i := range tasks {
		tasks[i] = entity.Task{
			ID:     fmt.Sprintf("t%d", i),
			Status: rapid.SampledFrom(simpleStatuses).Draw(t, "status"),
			Order:  rapid.IntRange(0, 5).Draw(t, "order"),
		}
	}
	return tasks
}

func assertContiguous(t *rapid.T, tasks []entity.Task, status entity.TaskStatus) {
	for want, task := range ColumnTasks(tasks, status) {
		if task.Order != want {
			t.Fatalf("column %s: task %s has order %d, want %d", status, task.ID, task.Order, want)
		}
	}
}

func TestReorderProperty_ContiguousOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genBoard(t)
		dragged := tasks[rapid.IntRange(0, len(tasks)-1).Draw(t, "dragged")]
		target := rapid.SampledFrom(simpleStatuses).Draw(t, "target")
		index := rapid.IntRange(-2, len(tasks)+2).Draw(t, "index")

		res, err := Reorder(tasks, dragged.ID, target, index)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assertContiguous(t, res.Tasks, target)
		assertContiguous(t, res.Tasks, dragged.Status)

		moved := ColumnTasks(res.Tasks, target)
		clamped := index
		if clamped < 0 {
			clamped = 0
		}
		if clamped > len(moved)-1 {
			clamped = len(moved) - 1
		}
		if moved[clamped].ID != dragged.ID {
			t.Fatalf("expected %s at %d, got %s", dragged.ID, clamped, moved[clamped].ID)
		}
		if len(res.Tasks) != len(tasks) {
			t.Fatalf("task count changed: %d -> %d", len(tasks), len(res.Tasks))
		}
	})
}

func TestReorderProperty_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genBoard(t)
		dragged := tasks[rapid.IntRange(0, len(tasks)-1).Draw(t, "dragged")]

		first, err := Reorder(tasks, dragged.ID, dragged.Status, rapid.IntRange(0, len(tasks)).Draw(t, "index"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		current, ok := IndexInColumn(first.Tasks, dragged.ID)
		if !ok {
			t.Fatalf("task %s lost", dragged.ID)
		}
		second, err := Reorder(first.Tasks, dragged.ID, dragged.Status, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(second.Changes) != 0 {
			t.Fatalf("expected no changes, got %v", second.Changes)
		}
	})
}

func TestReorderProperty_EmptyColumnGetsZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		tasks := make([]entity.Task, n)
		for i := range tasks {
			tasks[i] = entity.Task{ID: fmt.Sprintf("t%d", i), Status: entity.StatusTodo, Order: i}
		}
		dragged := tasks[rapid.IntRange(0, n-1).Draw(t, "dragged")]

		res, err := Reorder(tasks, dragged.ID, entity.StatusDone, rapid.IntRange(0, 10).Draw(t, "index"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		done := ColumnTasks(res.Tasks, entity.StatusDone)
		if len(done) != 1 || done[0].Order != 0 {
			t.Fatalf("expected single task with order 0, got %v", done)
		}
		for _, task := range ColumnTasks(res.Tasks, entity.StatusTodo) {
			if task.ID == dragged.ID {
				t.Fatalf("task %s still in source column", dragged.ID)
			}
		}
	})
}
