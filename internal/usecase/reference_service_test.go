package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
)

func TestCreateReferenceOnExecutiveBoard(t *testing.T) {
	var saved *entity.Reference
	refs := &MockReferenceRepository{
		CreateFunc: func(ctx context.Context, ref *entity.Reference) (*entity.Reference, error) {
			saved = ref
			out := *ref
			out.ID = 3
			return &out, nil
		},
	}
	service := NewReferenceService(refs, &MockAttachmentRepository{}, NewValidator())

	ref, err := service.Create(context.Background(), assistant, &entity.ReferenceRequest{
		Title:    "Travel policy",
		URL:      "https://sagan.dev/travel",
		Category: "  Policies ",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ref.ID != 3 {
		t.Errorf("Expected ID 3, got %d", ref.ID)
	}
	if saved.OwnerID != executive.ID {
		t.Errorf("Expected reference on executive board, got owner %d", saved.OwnerID)
	}
	if saved.Category != "policies" {
		t.Errorf("Expected normalized category, got %q", saved.Category)
	}
}

func TestCreateReferenceValidation(t *testing.T) {
	service := NewReferenceService(&MockReferenceRepository{}, &MockAttachmentRepository{}, NewValidator())

	_, err := service.Create(context.Background(), executive, &entity.ReferenceRequest{Title: "Bad", URL: "not a url"})
	var verr *entity.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0] != "url" {
		t.Errorf("Expected url validation error, got %v", err)
	}
}

func TestCreateReferenceForeignAttachment(t *testing.T) {
	attachments := &MockAttachmentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Attachment, error) {
			return &entity.Attachment{ID: id, OwnerID: 99}, nil
		},
	}
	refs := &MockReferenceRepository{
		CreateFunc: func(ctx context.Context, ref *entity.Reference) (*entity.Reference, error) {
			t.Fatal("Expected no create with foreign attachment")
			return nil, nil
		},
	}
	service := NewReferenceService(refs, attachments, NewValidator())

	id := "att-1"
	_, err := service.Create(context.Background(), executive, &entity.ReferenceRequest{Title: "Scan", AttachmentID: &id})
	if !errors.Is(err, entity.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	attachments.GetByIDFunc = func(ctx context.Context, id string) (*entity.Attachment, error) { return nil, nil }
	_, err = service.Create(context.Background(), executive, &entity.ReferenceRequest{Title: "Scan", AttachmentID: &id})
	if !errors.Is(err, entity.ErrAttachmentNotFound) {
		t.Errorf("Expected ErrAttachmentNotFound, got %v", err)
	}
}

func TestReferenceAccess(t *testing.T) {
	refs := &MockReferenceRepository{
		GetByIDFunc: func(ctx context.Context, id int) (*entity.Reference, error) {
			if id == 1 {
				return &entity.Reference{ID: 1, OwnerID: executive.ID, Title: "Board"}, nil
			}
			if id == 2 {
				return &entity.Reference{ID: 2, OwnerID: 50}, nil
			}
			return nil, nil
		},
	}
	service := NewReferenceService(refs, &MockAttachmentRepository{}, NewValidator())

	if ref, err := service.Get(context.Background(), assistant, 1); err != nil || ref.Title != "Board" {
		t.Errorf("Expected assistant to read executive reference, got %v %v", ref, err)
	}
	if _, err := service.Get(context.Background(), executive, 2); !errors.Is(err, entity.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if _, err := service.Get(context.Background(), executive, 3); !errors.Is(err, entity.ErrReferenceNotFound) {
		t.Errorf("Expected ErrReferenceNotFound, got %v", err)
	}
	if err := service.Delete(context.Background(), executive, 2); !errors.Is(err, entity.ErrForbidden) {
		t.Errorf("Expected ErrForbidden on delete, got %v", err)
	}
}

func TestUpdateReferenceOverwritesFields(t *testing.T) {
	var updates map[string]interface{}
	refs := &MockReferenceRepository{
		GetByIDFunc: func(ctx context.Context, id int) (*entity.Reference, error) {
			return &entity.Reference{ID: id, OwnerID: executive.ID, Title: "Old", Notes: "keep?"}, nil
		},
		UpdateFunc: func(ctx context.Context, id int, u map[string]interface{}) (*entity.Reference, error) {
			updates = u
			return &entity.Reference{ID: id, OwnerID: executive.ID, Title: u["title"].(string)}, nil
		},
	}
	service := NewReferenceService(refs, &MockAttachmentRepository{}, NewValidator())

	ref, err := service.Update(context.Background(), executive, 5, &entity.ReferenceRequest{Title: "New", Category: "Legal"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ref.Title != "New" {
		t.Errorf("Expected title New, got %s", ref.Title)
	}
	if updates["notes"] != "" || updates["category"] != "legal" {
		t.Errorf("Expected full overwrite, got %v", updates)
	}
}

func TestListReferencesByCategory(t *testing.T) {
	var gotOwner int
	var gotCategory string
	refs := &MockReferenceRepository{
		ListFunc: func(ctx context.Context, ownerID int, category string) ([]entity.Reference, error) {
			gotOwner, gotCategory = ownerID, category
			return nil, nil
		},
	}
	service := NewReferenceService(refs, &MockAttachmentRepository{}, NewValidator())

	if _, err := service.List(context.Background(), assistant, "Travel"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotOwner != executive.ID || gotCategory != "travel" {
		t.Errorf("Unexpected list args owner=%d category=%q", gotOwner, gotCategory)
	}
}
