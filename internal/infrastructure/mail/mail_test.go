package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
)

func TestReportMessageEscapesContent(t *testing.T) {
	report := &entity.Report{
		ReportDate: entity.NewDate(2026, 3, 14),
		Summary:    "Closed <b>three</b> deals",
		Blockers:   "",
		Tomorrow:   "Board prep",
	}
	author := &entity.User{Name: "Vera"}

	msg, err := ReportMessage(report, author, "boss@sagan.dev")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.Subject != "EOD report 2026-03-14: Vera" {
		t.Errorf("Unexpected subject %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<b>three</b>") {
		t.Error("Expected summary HTML to be escaped")
	}
	if strings.Contains(msg.HTML, "Blockers") {
		t.Error("Expected empty blockers section to be skipped")
	}
	if !strings.Contains(msg.HTML, "Board prep") {
		t.Error("Expected tomorrow plan in body")
	}
	if len(msg.To) != 1 || msg.To[0] != "boss@sagan.dev" {
		t.Errorf("Unexpected recipients %v", msg.To)
	}
}

func TestSendWithoutAPIKey(t *testing.T) {
	m := NewResendMailer("", "noreply@sagan.dev")
	_, err := m.Send(context.Background(), Message{To: []string{"a@b.c"}})
	if !errors.Is(err, ErrMailDisabled) {
		t.Errorf("Expected ErrMailDisabled, got %v", err)
	}
}
