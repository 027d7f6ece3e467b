// Package seed fills an empty database with demo accounts and workshop data.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"workshop/internal/auth"
	"workshop/internal/ledger"
	"workshop/internal/model"
	"workshop/internal/repository"
	"workshop/internal/service"
)

// Demo credentials created by Run.
const (
	UserEmail     = "test@example.com"
	UserPassword  = "password123"
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
)

// Seeder writes demo data through the same services the API uses.
type Seeder struct {
	store    repository.Store
	ledger   *ledger.Ledger
	users    service.UserService
	messages service.MessageService
	now      func() time.Time
}

// New creates a seeder.
func New(store repository.Store, l *ledger.Ledger, users service.UserService, messages service.MessageService) *Seeder {
	return &Seeder{
		store:    store,
		ledger:   l,
		users:    users,
		messages: messages,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds the database when it has no users yet. It reports whether
// anything was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	n, err := s.store.Users().Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.users.CreateUser(ctx, service.CreateUserInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     UserEmail,
		Password:  UserPassword,
		Role:      model.RoleUser,
	}); err != nil {
		return false, fmt.Errorf("seed user: %w", err)
	}
	admin, err := s.users.CreateUser(ctx, service.CreateUserInput{
		FirstName: "Admin",
		LastName:  "Workshop",
		Email:     AdminEmail,
		Password:  AdminPassword,
		Role:      model.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	caller := auth.Identity{UserID: admin.ID, Email: admin.Email, Role: admin.Role}

	if err := s.workshop(ctx, caller); err != nil {
		return false, err
	}
	log.Printf("seed: demo data created (%s / %s, %s / %s)", UserEmail, UserPassword, AdminEmail, AdminPassword)
	return true, nil
}

type demoCustomer struct {
	name, email, phone string
	make, model, plate string
	year               int
	service            string
}

var demoCustomers = []demoCustomer{
	{"Jan Kowalski", "jan.kowalski@example.com", "+48 600 100 200", "Toyota", "Corolla", "WA 12345", 2017, "Oil change"},
	{"Anna Nowak", "anna.nowak@example.com", "+48 600 300 400", "Skoda", "Octavia", "KR 9876A", 2020, "Brake pads"},
	{"Piotr Wiśniewski", "piotr.w@example.com", "+48 600 500 600", "Ford", "Focus", "PO 55K21", 2015, "Timing belt"},
}

var demoParts = []ledger.PartInput{
	{Name: "Oil filter", SKU: "OF-1001", Brand: "Mann", Stock: 24, MinStock: 5, Price: decimal.RequireFromString("29.90"), Location: "A1"},
	{Name: "Brake pads front", SKU: "BP-2040", Brand: "Brembo", Stock: 2, MinStock: 4, Price: decimal.RequireFromString("189.00"), Location: "B3"},
	{Name: "Timing belt kit", SKU: "TB-3300", Brand: "Gates", Stock: 1, MinStock: 2, Price: decimal.RequireFromString("459.00"), Location: "C2"},
	{Name: "Engine oil 5W30 5L", SKU: "EO-5301", Brand: "Castrol", Stock: 12, MinStock: 6, Price: decimal.RequireFromString("149.99"), Location: "A2"},
}

func (s *Seeder) workshop(ctx context.Context, caller auth.Identity) error {
	now := s.now()
	var firstOrder *model.Order
	for i, dc := range demoCustomers {
		customer, err := s.ledger.CreateCustomer(ctx, ledger.CustomerInput{Name: dc.name, Email: dc.email, Phone: dc.phone})
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", dc.name, err)
		}
		year := dc.year
		vehicle, err := s.ledger.CreateVehicle(ctx, ledger.VehicleInput{
			CustomerID: customer.ID,
			Make:       dc.make,
			Model:      dc.model,
			Year:       &year,
			Plate:      dc.plate,
		})
		if err != nil {
			return fmt.Errorf("seed vehicle %s: %w", dc.plate, err)
		}
		start := now.Add(time.Duration(i+1) * 24 * time.Hour).Truncate(time.Hour)
		end := start.Add(2 * time.Hour)
		order, err := s.ledger.CreateOrder(ctx, caller, ledger.OrderInput{
			Service:    dc.service,
			CustomerID: customer.ID,
			VehicleID:  vehicle.ID,
			StartAt:    &start,
			EndAt:      &end,
		})
		if err != nil {
			return fmt.Errorf("seed order: %w", err)
		}
		if firstOrder == nil {
			firstOrder = order
		}
		if _, err := s.ledger.CreateAppointment(ctx, ledger.AppointmentInput{
			Title:   dc.service + " - " + vehicle.Plate,
			StartAt: &start,
			EndAt:   &end,
			OrderID: &order.ID,
		}); err != nil {
			return fmt.Errorf("seed appointment: %w", err)
		}
	}

	for _, p := range demoParts {
		if _, err := s.ledger.CreatePart(ctx, p); err != nil {
			return fmt.Errorf("seed part %s: %w", p.SKU, err)
		}
	}

	issue := now.Truncate(24 * time.Hour)
	due := issue.Add(14 * 24 * time.Hour)
	amount := decimal.RequireFromString("350.00")
	if _, err := s.ledger.CreateInvoice(ctx, ledger.InvoiceInput{
		Number:     fmt.Sprintf("FV/%d/0001", issue.Year()),
		CustomerID: firstOrder.CustomerID,
		OrderID:    &firstOrder.ID,
		IssueDate:  &issue,
		DueDate:    &due,
		Amount:     &amount,
	}); err != nil {
		return fmt.Errorf("seed invoice: %w", err)
	}

	thread, err := s.messages.CreateThread(ctx, caller, service.ThreadInput{
		Title:   "Order #" + fmt.Sprint(firstOrder.ID),
		OrderID: &firstOrder.ID,
	})
	if err != nil {
		return fmt.Errorf("seed thread: %w", err)
	}
	if _, err := s.messages.SendMessage(ctx, caller, thread.ID, "Car is booked in, parts are on the shelf."); err != nil {
		return fmt.Errorf("seed message: %w", err)
	}
	return nil
}
