package usecase

import (
	"context"
	"strings"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/go-playground/validator/v10"
)

// ReferenceService - справочная библиотека доски, общая для руководителя и ассистентов
type ReferenceService struct {
	referenceRepo  repository.IReferenceRepository
	attachmentRepo repository.IAttachmentRepository
	validate       *validator.Validate
}

func NewReferenceService(
	referenceRepo repository.IReferenceRepository,
	attachmentRepo repository.IAttachmentRepository,
	validate *validator.Validate,
) *ReferenceService {
	return &ReferenceService{
		referenceRepo:  referenceRepo,
		attachmentRepo: attachmentRepo,
		validate:       validate,
	}
}

func (s *ReferenceService) Create(ctx context.Context, user *entity.User, req *entity.ReferenceRequest) (*entity.Reference, error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	if err := s.checkAttachment(ctx, owner, req.AttachmentID); err != nil {
		return nil, err
	}

	return s.referenceRepo.Create(ctx, &entity.Reference{
		OwnerID:      owner,
		Title:        req.Title,
		URL:          req.URL,
		Category:     normalizeCategory(req.Category),
		Notes:        req.Notes,
		AttachmentID: req.AttachmentID,
	})
}

func (s *ReferenceService) Get(ctx context.Context, user *entity.User, id int) (*entity.Reference, error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}

	ref, err := s.referenceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, entity.ErrReferenceNotFound
	}
	// Проверяем права доступа
	if ref.OwnerID != owner {
		return nil, entity.ErrForbidden
	}
	return ref, nil
}

// List - записи библиотеки, category фильтрует по разделу
func (s *ReferenceService) List(ctx context.Context, user *entity.User, category string) ([]entity.Reference, error) {
	owner, err := boardOwner(user)
	if err != nil {
		return nil, err
	}
	return s.referenceRepo.List(ctx, owner, normalizeCategory(category))
}

// Update - полная перезапись полей записи
func (s *ReferenceService) Update(ctx context.Context, user *entity.User, id int, req *entity.ReferenceRequest) (*entity.Reference, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	ref, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAttachment(ctx, ref.OwnerID, req.AttachmentID); err != nil {
		return nil, err
	}

	return s.referenceRepo.Update(ctx, id, map[string]interface{}{
		"title":         req.Title,
		"url":           req.URL,
		"category":      normalizeCategory(req.Category),
		"notes":         req.Notes,
		"attachment_id": req.AttachmentID,
	})
}

func (s *ReferenceService) Delete(ctx context.Context, user *entity.User, id int) error {
	if _, err := s.Get(ctx, user, id); err != nil {
		return err
	}
	return s.referenceRepo.Delete(ctx, id)
}

// checkAttachment - прикрепить можно только файл той же доски
func (s *ReferenceService) checkAttachment(ctx context.Context, owner int, attachmentID *string) error {
	if attachmentID == nil {
		return nil
	}
	att, err := s.attachmentRepo.GetByID(ctx, *attachmentID)
	if err != nil {
		return err
	}
	if att == nil {
		return entity.ErrAttachmentNotFound
	}
	if att.OwnerID != owner {
		return entity.ErrForbidden
	}
	return nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
