package repository

import (
	"testing"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
)

func TestDateArg(t *testing.T) {
	if DateArg(nil) != nil {
		t.Error("Expected nil for missing date")
	}
	if got := DateArg(&entity.Date{}); got != nil {
		t.Errorf("Expected NULL for zero date, got %v", got)
	}

	due := entity.NewDate(2026, time.November, 2)
	got := DateArg(&due)
	if got == nil || !got.Equal(due.Time) {
		t.Errorf("Expected %v, got %v", due, got)
	}
}
