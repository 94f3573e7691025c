package entity

import "time"

// Report - отчет за день
type Report struct {
	ID         int        `json:"id"`
	AuthorID   int        `json:"author_id"`
	OwnerID    int        `json:"owner_id"`
	ReportDate Date       `json:"report_date"`
	Summary    string     `json:"summary"`
	Completed  string     `json:"completed"`
	Blockers   string     `json:"blockers"`
	Tomorrow   string     `json:"tomorrow"`
	EmailedAt  *time.Time `json:"emailed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SubmitReportRequest struct {
	ReportDate *Date  `json:"report_date"`
	Summary    string `json:"summary" validate:"required"`
	Completed  string `json:"completed"`
	Blockers   string `json:"blockers"`
	Tomorrow   string `json:"tomorrow"`
}
