package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=12,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is sent as "token" for the existing web client.
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func authResponse(pair *service.TokenPair) AuthResponse {
	return AuthResponse{
		UserID:       pair.UserID,
		AccessToken:  pair.Token,
		RefreshToken: pair.RefreshToken,
	}
}

// TemplateRequest is the body of template create and update.
type TemplateRequest struct {
	Title      string     `json:"title"       validate:"required,max=200"`
	Quadrant   string     `json:"quadrant"    validate:"required,oneof=do_now schedule delegate eliminate"`
	IsActive   *bool      `json:"is_active"`
	OrderIndex *int       `json:"order_index" validate:"omitempty,min=0"`
	TagID      *uuid.UUID `json:"tag_id"`
}

func (req TemplateRequest) input() service.TemplateInput {
	return service.TemplateInput{
		Title:      req.Title,
		Quadrant:   domain.Quadrant(req.Quadrant),
		IsActive:   req.IsActive,
		OrderIndex: req.OrderIndex,
		TagID:      req.TagID,
	}
}

// TaskRequest is the body of task create and update. Date is ignored on
// update.
type TaskRequest struct {
	Date         string     `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	Title        string     `json:"title"          validate:"required,max=500"`
	Description  string     `json:"description"    validate:"max=5000"`
	Quadrant     string     `json:"quadrant"       validate:"required,oneof=do_now schedule delegate eliminate"`
	DeadlineAt   *time.Time `json:"deadline_at"`
	TagID        *uuid.UUID `json:"tag_id"`
	LinkedPostID *uuid.UUID `json:"linked_post_id"`
}

func (req TaskRequest) input() (service.TaskInput, error) {
	in := service.TaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Quadrant:     domain.Quadrant(req.Quadrant),
		DeadlineAt:   req.DeadlineAt,
		TagID:        req.TagID,
		LinkedPostID: req.LinkedPostID,
	}
	if req.Date != "" {
		date, err := domain.ParseDate(req.Date)
		if err != nil {
			return in, err
		}
		in.Date = date
	}
	return in, nil
}

// MoveTaskRequest moves a task to another quadrant.
type MoveTaskRequest struct {
	Quadrant string `json:"quadrant" validate:"required,oneof=do_now schedule delegate eliminate"`
}

// TagRequest is the body of tag create and update.
type TagRequest struct {
	Name     string `json:"name"     validate:"required,max=50"`
	Color    string `json:"color"    validate:"omitempty,max=20"`
	Icon     string `json:"icon"     validate:"omitempty,max=50"`
	Category string `json:"category" validate:"omitempty,oneof=task bucketlist"`
}

func (req TagRequest) input() service.TagInput {
	return service.TagInput{
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		Category: domain.TagCategory(req.Category),
	}
}

// TopicRequest names a journal topic.
type TopicRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// PostRequest is the body of journal post create and update.
type PostRequest struct {
	TopicID   uuid.UUID `json:"topic_id"   validate:"required"`
	Title     string    `json:"title"      validate:"required,max=200"`
	Content   string    `json:"content"`
	Mood      *int      `json:"mood"       validate:"omitempty,min=1,max=5"`
	EntryDate string    `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
}

func (req PostRequest) input() (service.PostInput, error) {
	in := service.PostInput{
		TopicID: req.TopicID,
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
	}
	if req.EntryDate != "" {
		date, err := domain.ParseDate(req.EntryDate)
		if err != nil {
			return in, err
		}
		in.EntryDate = date
	}
	return in, nil
}

// GoalRequest is the body of vision goal create and update.
type GoalRequest struct {
	Category    string `json:"category"    validate:"required"`
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  *int   `json:"order_index" validate:"omitempty,min=0"`
}

func (req GoalRequest) input() service.GoalInput {
	return service.GoalInput{
		Category:    domain.GoalCategory(req.Category),
		Title:       req.Title,
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
	}
}

// BucketItemRequest is the body of bucketlist create and update.
type BucketItemRequest struct {
	Title       string      `json:"title"       validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	ImageURL    string      `json:"image_url"   validate:"omitempty,url"`
	OrderIndex  *int        `json:"order_index" validate:"omitempty,min=0"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

func (req BucketItemRequest) input() service.BucketItemInput {
	return service.BucketItemInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		OrderIndex:  req.OrderIndex,
		TagIDs:      req.TagIDs,
	}
}
