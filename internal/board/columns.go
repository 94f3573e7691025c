// Package board содержит логику канбан-доски: реестр колонок,
// отслеживание перетаскивания и пересчет порядка задач.
package board

import "github.com/St1cky1/command-center/internal/entity"

var registry = map[entity.BoardVariant][]entity.Column{
	entity.VariantPipeline: {
		{ID: entity.StatusInbox, Title: "Inbox"},
		{ID: entity.StatusConfirmedReceived, Title: "Confirmed Received"},
		{ID: entity.StatusInProgress, Title: "In Progress"},
		{ID: entity.StatusWaiting, Title: "Waiting"},
		{ID: entity.StatusReview, Title: "Review"},
		{ID: entity.StatusArchive, Title: "Archive"},
	},
	entity.VariantSimple: {
		{ID: entity.StatusTodo, Title: "To Do"},
		{ID: entity.StatusInProgress, Title: "In Progress"},
		{ID: entity.StatusDone, Title: "Done"},
	},
}

// ParseVariant возвращает вариант доски по имени
func ParseVariant(name string) (entity.BoardVariant, bool) {
	v := entity.BoardVariant(name)
	_, ok := registry[v]
	return v, ok
}

// Columns возвращает упорядоченный список колонок варианта
func Columns(variant entity.BoardVariant) []entity.Column {
	return append([]entity.Column(nil), registry[variant]...)
}

func Column(variant entity.BoardVariant, status entity.TaskStatus) (entity.Column, bool) {
	for _, c := range registry[variant] {
		if c.ID == status {
			return c, true
		}
	}
	return entity.Column{}, false
}

func HasColumn(variant entity.BoardVariant, status entity.TaskStatus) bool {
	_, ok := Column(variant, status)
	return ok
}

// DefaultStatus - первая колонка, куда попадают новые задачи
func DefaultStatus(variant entity.BoardVariant) entity.TaskStatus {
	cols := registry[variant]
	if len(cols) == 0 {
		return ""
	}
	return cols[0].ID
}
