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

// ThreadInput holds the fields of a new message thread.
type ThreadInput struct {
	Title      string
	CustomerID *uint
	OrderID    *uint
}

// MessageService manages message threads and their messages.
type MessageService interface {
	ListThreads(ctx context.Context, q string) ([]model.ThreadSummary, error)
	GetThread(ctx context.Context, id uint) (*model.MessageThread, error)
	CreateThread(ctx context.Context, caller auth.Identity, in ThreadInput) (*model.MessageThread, error)
	RenameThread(ctx context.Context, id uint, title string) (*model.MessageThread, error)
	DeleteThread(ctx context.Context, id uint) error
	ListMessages(ctx context.Context, threadID uint) ([]model.Message, error)
	SendMessage(ctx context.Context, caller auth.Identity, threadID uint, text string) (*model.Message, error)
}

type messageService struct {
	store repository.Store
	now   func() time.Time
}

// NewMessageService creates a message service over the store.
func NewMessageService(store repository.Store) MessageService {
	return &messageService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func threadErr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("thread")
	}
	var typed *apperrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperrors.Internal(op, err)
}

// ListThreads returns threads with their last message, most recently active
// first. Threads without messages sort by their own update time.
func (s *messageService) ListThreads(ctx context.Context, q string) ([]model.ThreadSummary, error) {
	threads, err := s.store.Threads().ListSummaries(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, apperrors.Internal("list threads", err)
	}
	return threads, nil
}

func (s *messageService) GetThread(ctx context.Context, id uint) (*model.MessageThread, error) {
	thread, err := s.store.Threads().FindByID(ctx, id)
	if err != nil {
		return nil, threadErr(err, "load thread")
	}
	return thread, nil
}

func (s *messageService) CreateThread(ctx context.Context, caller auth.Identity, in ThreadInput) (*model.MessageThread, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.BadRequest("missing required fields: title")
	}
	thread := &model.MessageThread{
		Title:           title,
		CustomerID:      in.CustomerID,
		OrderID:         in.OrderID,
		CreatedByUserID: caller.UserID,
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if in.CustomerID != nil {
			if _, err := tx.Customers().FindByID(ctx, *in.CustomerID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("customer")
				}
				return apperrors.Internal("load customer", err)
			}
		}
		if in.OrderID != nil {
			order, err := tx.Orders().FindByID(ctx, *in.OrderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("order")
				}
				return apperrors.Internal("load order", err)
			}
			if in.CustomerID != nil && order.CustomerID != *in.CustomerID {
				return apperrors.BadRequest("order does not belong to customer")
			}
			if thread.CustomerID == nil {
				thread.CustomerID = &order.CustomerID
			}
		}
		if err := tx.Threads().Create(ctx, thread); err != nil {
			return apperrors.Internal("create thread", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetThread(ctx, thread.ID)
}

// RenameThread changes the title and counts as activity on the thread.
func (s *messageService) RenameThread(ctx context.Context, id uint, title string) (*model.MessageThread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.BadRequest("missing required fields: title")
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Threads().FindByID(ctx, id); err != nil {
			return threadErr(err, "load thread")
		}
		return tx.Threads().Update(ctx, id, repository.Fields{"title": title, "updated_at": s.now()})
	})
	if err != nil {
		return nil, threadErr(err, "rename thread")
	}
	return s.GetThread(ctx, id)
}

func (s *messageService) DeleteThread(ctx context.Context, id uint) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Threads().FindByID(ctx, id); err != nil {
			return err
		}
		return tx.Threads().Delete(ctx, id)
	})
	if err != nil {
		return threadErr(err, "delete thread")
	}
	return nil
}

// ListMessages returns a thread's messages oldest first.
func (s *messageService) ListMessages(ctx context.Context, threadID uint) ([]model.Message, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	messages, err := s.store.Messages().ListByThread(ctx, threadID)
	if err != nil {
		return nil, apperrors.Internal("list messages", err)
	}
	return messages, nil
}

// SendMessage appends a message from the caller and bumps the thread in the
// same transaction.
func (s *messageService) SendMessage(ctx context.Context, caller auth.Identity, threadID uint, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.BadRequest("missing required fields: text")
	}
	sender := caller.UserID
	now := s.now()
	message := &model.Message{
		ThreadID:     threadID,
		SenderUserID: &sender,
		Text:         text,
		CreatedAt:    now,
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Threads().FindByID(ctx, threadID); err != nil {
			return err
		}
		if err := tx.Messages().Create(ctx, message); err != nil {
			return err
		}
		return tx.Threads().Touch(ctx, threadID, now)
	})
	if err != nil {
		return nil, threadErr(err, "send message")
	}
	return message, nil
}
