package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// lastMessageAt is the creation time of a thread's newest message.
const lastMessageAt = "(SELECT m.created_at FROM messages m WHERE m.thread_id = message_threads.id ORDER BY m.id DESC LIMIT 1)"

// ThreadRepository defines message thread persistence operations.
type ThreadRepository interface {
	Create(ctx context.Context, thread *model.MessageThread) error
	FindByID(ctx context.Context, id uint) (*model.MessageThread, error)
	Update(ctx context.Context, id uint, fields Fields) error
	// Touch moves the thread's updated_at forward without other changes.
	Touch(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	// ListSummaries returns threads with their newest message, most recently
	// active first.
	ListSummaries(ctx context.Context, q string) ([]model.ThreadSummary, error)
}

type threadRepository struct {
	db *gorm.DB
}

type threadCount struct {
	ThreadID uint
	N        int64
}

func (r *threadRepository) Create(ctx context.Context, thread *model.MessageThread) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(thread).Error
}

func (r *threadRepository) FindByID(ctx context.Context, id uint) (*model.MessageThread, error) {
	var thread model.MessageThread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.MessageThread{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *threadRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.MessageThread{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error
}

func (r *threadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.MessageThread{}, id).Error
}

func (r *threadRepository) ListSummaries(ctx context.Context, q string) ([]model.ThreadSummary, error) {
	var threads []model.MessageThread
	query := r.db.WithContext(ctx).Model(&model.MessageThread{})
	if q != "" {
		query = query.Joins("LEFT JOIN customers ON customers.id = message_threads.customer_id")
		query = search(query, q, "message_threads.title", "customers.name")
	}
	err := query.Preload("Customer").
		Order("COALESCE(" + lastMessageAt + ", message_threads.updated_at) DESC").
		Order("message_threads.id DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return []model.ThreadSummary{}, nil
	}

	ids := make([]uint, len(threads))
	for i, t := range threads {
		ids[i] = t.ID
	}

	var last []model.Message
	newest := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("MAX(id)").
		Where("thread_id IN ?", ids).
		Group("thread_id")
	if err := r.db.WithContext(ctx).Where("id IN (?)", newest).Find(&last).Error; err != nil {
		return nil, err
	}
	lastByThread := make(map[uint]model.Message, len(last))
	for _, m := range last {
		lastByThread[m.ThreadID] = m
	}

	var counts []threadCount
	err = r.db.WithContext(ctx).Model(&model.Message{}).
		Select("thread_id, COUNT(*) AS n").
		Where("thread_id IN ?", ids).
		Group("thread_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countByThread := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByThread[c.ThreadID] = c.N
	}

	summaries := make([]model.ThreadSummary, len(threads))
	for i, t := range threads {
		s := model.ThreadSummary{MessageThread: t, MessageCount: countByThread[t.ID]}
		if t.Customer != nil {
			s.CustomerName = t.Customer.Name
		}
		if m, ok := lastByThread[t.ID]; ok {
			text, at := m.Text, m.CreatedAt
			s.LastMessage = &text
			s.LastMessageAt = &at
		}
		summaries[i] = s
	}
	return summaries, nil
}
