package entity

import (
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

// Колонки доски "pipeline"
const (
	StatusInbox             TaskStatus = "inbox"
	StatusConfirmedReceived TaskStatus = "confirmed_received"
	StatusInProgress        TaskStatus = "in_progress"
	StatusWaiting           TaskStatus = "waiting"
	StatusReview            TaskStatus = "review"
	StatusArchive           TaskStatus = "archive"
)

// Колонки упрощенной доски "simple"
const (
	StatusTodo TaskStatus = "todo"
	StatusDone TaskStatus = "done"
)

type Task struct {
	ID          string       `json:"id"`
	OwnerID     int          `json:"owner_id"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	Order       int          `json:"order"`
	DueDate     *Date        `json:"due_date,omitempty"`
	Purpose     string       `json:"purpose"`
	EndResult   string       `json:"end_result"`
	Description string       `json:"description"`
	Comments    []Comment    `json:"comments"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone возвращает копию задачи без общих слайсов
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Comments = append([]Comment(nil), t.Comments...)
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	return c
}

type Comment struct {
	ID          string       `json:"id"`
	Author      string       `json:"author"`
	Text        string       `json:"text"`
	CreatedAt   time.Time    `json:"created_at"`
	EditedAt    *time.Time   `json:"edited_at,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// валидация
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Status      TaskStatus `json:"status"`
	DueDate     *Date      `json:"due_date"`
	Purpose     string     `json:"purpose"`
	EndResult   string     `json:"end_result"`
	Description string     `json:"description"`
	OwnerID     int        `json:"-"`
	Order       int        `json:"-"`
}

// UpdateTaskRequest - полная перезапись редактируемых полей (все поля отправляются при каждом сохранении)
type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	DueDate     *Date  `json:"due_date"`
	Purpose     string `json:"purpose"`
	EndResult   string `json:"end_result"`
	Description string `json:"description"`
}

type MoveTaskRequest struct {
	Status TaskStatus `json:"status" validate:"required"`
}

type ReorderTaskRequest struct {
	Status      TaskStatus `json:"status" validate:"required"`
	TargetIndex int        `json:"target_index"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// OrderAssignment - новое положение задачи на доске
type OrderAssignment struct {
	TaskID string     `json:"task_id"`
	Status TaskStatus `json:"status"`
	Order  int        `json:"order"`
}

// Date - календарная дата без времени
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf отбрасывает время
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
