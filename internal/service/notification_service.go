package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

const notificationListLimit = 100

// NotificationInput holds a notification sent by an administrator.
type NotificationInput struct {
	UserID uint
	Title  string
	Body   string
}

// NotificationService gives each user access to their own notifications.
// Another user's notification is reported as not found.
type NotificationService interface {
	List(ctx context.Context, caller auth.Identity, unreadOnly bool) ([]model.Notification, error)
	Get(ctx context.Context, caller auth.Identity, id uint) (*model.Notification, error)
	Create(ctx context.Context, caller auth.Identity, in NotificationInput) (*model.Notification, error)
	MarkRead(ctx context.Context, caller auth.Identity, id uint) (*model.Notification, error)
	MarkAllRead(ctx context.Context, caller auth.Identity) (int64, error)
	Delete(ctx context.Context, caller auth.Identity, id uint) error
}

type notificationService struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
	now   func() time.Time
}

// NewNotificationService creates a notification service.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository) NotificationService {
	return &notificationService{
		repo:  repo,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) List(ctx context.Context, caller auth.Identity, unreadOnly bool) ([]model.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, caller.UserID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, apperrors.Internal("list notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) Get(ctx context.Context, caller auth.Identity, id uint) (*model.Notification, error) {
	notification, err := s.repo.FindForUser(ctx, id, caller.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("notification")
	}
	if err != nil {
		return nil, apperrors.Internal("load notification", err)
	}
	return notification, nil
}

func (s *notificationService) Create(ctx context.Context, caller auth.Identity, in NotificationInput) (*model.Notification, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}
	title := strings.TrimSpace(in.Title)
	if in.UserID == 0 || title == "" {
		return nil, apperrors.BadRequest("missing required fields: user_id, title")
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal("load user", err)
	}

	notification := &model.Notification{UserID: in.UserID, Title: title, Body: strings.TrimSpace(in.Body)}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, apperrors.Internal("create notification", err)
	}
	return notification, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller auth.Identity, id uint) (*model.Notification, error) {
	// A notification that was already read is left untouched.
	if _, err := s.repo.MarkRead(ctx, id, caller.UserID, s.now()); err != nil {
		return nil, apperrors.Internal("mark notification read", err)
	}
	return s.Get(ctx, caller, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller auth.Identity) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, caller.UserID, s.now())
	if err != nil {
		return 0, apperrors.Internal("mark notifications read", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	ok, err := s.repo.Delete(ctx, id, caller.UserID)
	if err != nil {
		return apperrors.Internal("delete notification", err)
	}
	if !ok {
		return apperrors.NotFound("notification")
	}
	return nil
}
