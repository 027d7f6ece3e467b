package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Store groups every repository over one database handle. Repositories
// obtained from the Store passed to a WithTransaction callback share that
// transaction.
type Store interface {
	Users() UserRepository
	Customers() CustomerRepository
	Vehicles() VehicleRepository
	Orders() OrderRepository
	Appointments() AppointmentRepository
	Parts() PartRepository
	Invoices() InvoiceRepository
	Threads() ThreadRepository
	Messages() MessageRepository
	Notifications() NotificationRepository
	PasswordResets() PasswordResetRepository

	// WithTransaction executes fn within a database transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository                   { return &userRepository{db: s.db} }
func (s *store) Customers() CustomerRepository           { return &customerRepository{db: s.db} }
func (s *store) Vehicles() VehicleRepository             { return &vehicleRepository{db: s.db} }
func (s *store) Orders() OrderRepository                 { return &orderRepository{db: s.db} }
func (s *store) Appointments() AppointmentRepository     { return &appointmentRepository{db: s.db} }
func (s *store) Parts() PartRepository                   { return &partRepository{db: s.db} }
func (s *store) Invoices() InvoiceRepository             { return &invoiceRepository{db: s.db} }
func (s *store) Threads() ThreadRepository               { return &threadRepository{db: s.db} }
func (s *store) Messages() MessageRepository             { return &messageRepository{db: s.db} }
func (s *store) Notifications() NotificationRepository   { return &notificationRepository{db: s.db} }
func (s *store) PasswordResets() PasswordResetRepository { return &passwordResetRepository{db: s.db} }

func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}

func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Fields is a set of column updates for a partial update.
type Fields map[string]interface{}

// likePattern turns a free-text search into a LIKE pattern.
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	q = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(q)
	return "%" + q + "%"
}

// search applies a LIKE filter over the given columns when q is not blank.
func search(db *gorm.DB, q string, columns ...string) *gorm.DB {
	if strings.TrimSpace(q) == "" || len(columns) == 0 {
		return db
	}
	pattern := likePattern(q)
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = col + " LIKE ? ESCAPE '!'"
		args[i] = pattern
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}
