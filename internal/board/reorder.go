package board

import (
	"sort"

	"github.com/St1cky1/command-center/internal/entity"
)

// Result - новое состояние доски после перетаскивания
type Result struct {
	Tasks   []entity.Task
	Changes []entity.OrderAssignment
	Moved   bool
}

// Reorder переносит задачу taskID в колонку targetStatus на позицию targetIndex.
// Позиция считается в колонке без перетаскиваемой задачи и ограничивается [0, len].
// Входной слайс не изменяется. Во всех затронутых колонках order становится 0..n-1.
func Reorder(tasks []entity.Task, taskID string, targetStatus entity.TaskStatus, targetIndex int) (Result, error) {
	src := indexOf(tasks, taskID)
	if src < 0 {
		return Result{}, entity.ErrTaskNotFound
	}

	out := append([]entity.Task(nil), tasks...)
	sourceStatus := out[src].Status

	dest := columnIndexes(out, targetStatus, src)
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(dest) {
		targetIndex = len(dest)
	}

	seq := make([]int, 0, len(dest)+1)
	seq = append(seq, dest[:targetIndex]...)
	seq = append(seq, src)
	seq = append(seq, dest[targetIndex:]...)

	out[src].Status = targetStatus
	assign(out, seq)

	moved := sourceStatus != targetStatus
	if moved {
		assign(out, columnIndexes(out, sourceStatus, -1))
	}

	var changes []entity.OrderAssignment
	for i := range out {
		if out[i].Order != tasks[i].Order || out[i].Status != tasks[i].Status {
			changes = append(changes, entity.OrderAssignment{
				TaskID: out[i].ID,
				Status: out[i].Status,
				Order:  out[i].Order,
			})
		}
	}

	return Result{Tasks: out, Changes: changes, Moved: moved}, nil
}

// Reindex выставляет contiguous order в колонке status (например, после удаления)
func Reindex(tasks []entity.Task, status entity.TaskStatus) Result {
	out := append([]entity.Task(nil), tasks...)
	assign(out, columnIndexes(out, status, -1))

	var changes []entity.OrderAssignment
	for i := range out {
		if out[i].Order != tasks[i].Order {
			changes = append(changes, entity.OrderAssignment{TaskID: out[i].ID, Status: out[i].Status, Order: out[i].Order})
		}
	}
	return Result{Tasks: out, Changes: changes}
}

// ColumnTasks возвращает задачи колонки в визуальном порядке
func ColumnTasks(tasks []entity.Task, status entity.TaskStatus) []entity.Task {
	idx := columnIndexes(tasks, status, -1)
	col := make([]entity.Task, 0, len(idx))
	for _, i := range idx {
		col = append(col, tasks[i])
	}
	return col
}

// NextOrder - order для новой задачи в конце колонки
func NextOrder(tasks []entity.Task, status entity.TaskStatus) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// IndexInColumn - текущая позиция задачи в своей колонке
func IndexInColumn(tasks []entity.Task, taskID string) (int, bool) {
	src := indexOf(tasks, taskID)
	if src < 0 {
		return 0, false
	}
	for pos, i := range columnIndexes(tasks, tasks[src].Status, -1) {
		if i == src {
			return pos, true
		}
	}
	return 0, false
}

// columnIndexes - индексы задач колонки, стабильно отсортированные по order;
// при равных order сохраняется порядок в исходном массиве
func columnIndexes(tasks []entity.Task, status entity.TaskStatus, skip int) []int {
	idx := make([]int, 0)
	for i := range tasks {
		if i != skip && tasks[i].Status == status {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return tasks[idx[a]].Order < tasks[idx[b]].Order
	})
	return idx
}

func assign(tasks []entity.Task, seq []int) {
	for order, i := range seq {
		tasks[i].Order = order
	}
}

func indexOf(tasks []entity.Task, taskID string) int {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}
