package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// TemplateInput carries the editable fields of a template. A nil
// OrderIndex on create appends the template after the existing ones; a nil
// IsActive keeps the current state (active on create).
type TemplateInput struct {
	Title      string
	Quadrant   domain.Quadrant
	IsActive   *bool
	OrderIndex *int
	TagID      *uuid.UUID
}

// TemplateService manages the recurring daily routine.
type TemplateService struct {
	templates store.TemplateStore
	tags      store.TagStore
	now       func() time.Time
	logger    *slog.Logger
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(templates store.TemplateStore, tags store.TagStore, logger *slog.Logger) *TemplateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateService{
		templates: templates,
		tags:      tags,
		now:       time.Now,
		logger:    logger.With("component", "template_service"),
	}
}

// List returns every template of userID ordered by order index.
func (s *TemplateService) List(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error) {
	return s.templates.List(ctx, userID)
}

// Create adds a template.
func (s *TemplateService) Create(ctx context.Context, userID uuid.UUID, in TemplateInput) (*domain.TaskTemplate, error) {
	order := 0
	if in.OrderIndex != nil {
		order = *in.OrderIndex
	} else {
		existing, err := s.templates.List(ctx, userID)
		if err != nil {
			return nil, NewServiceError("template", "create", err)
		}
		order = len(existing)
	}

	tpl, err := domain.NewTaskTemplate(userID, in.Title, in.Quadrant, order)
	if err != nil {
		return nil, err
	}
	if err := s.checkTag(ctx, userID, in.TagID); err != nil {
		return nil, err
	}
	tpl.TagID = in.TagID
	if in.IsActive != nil && !*in.IsActive {
		tpl.SetActive(false, s.now())
	}

	if err := s.templates.Create(ctx, tpl); err != nil {
		s.logger.Error("failed to create template", "error", err, "user_id", userID)
		return nil, NewServiceError("template", "create", err)
	}
	return tpl, nil
}

// Update edits a template. Tasks it already produced keep their copies.
func (s *TemplateService) Update(ctx context.Context, userID, id uuid.UUID, in TemplateInput) (*domain.TaskTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTag(ctx, userID, in.TagID); err != nil {
		return nil, err
	}

	tpl.Title = strings.TrimSpace(in.Title)
	tpl.Quadrant = in.Quadrant
	tpl.TagID = in.TagID
	if in.OrderIndex != nil {
		tpl.OrderIndex = *in.OrderIndex
	}
	if in.IsActive != nil {
		tpl.SetActive(*in.IsActive, s.now())
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, NewServiceError("template", "update", err)
	}
	return tpl, nil
}

// Delete removes a template. Its instances become ad-hoc tasks.
func (s *TemplateService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.templates.Delete(ctx, userID, id)
}

func (s *TemplateService) checkTag(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID) error {
	if tagID == nil {
		return nil
	}
	if _, err := s.tags.GetByID(ctx, userID, *tagID); err != nil {
		if store.IsNotFoundError(err) {
			return invalid("unknown tag")
		}
		return NewServiceError("template", "check tag", err)
	}
	return nil
}
