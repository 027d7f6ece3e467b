package model

import "gorm.io/gorm"

// All returns every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Vehicle{},
		&Order{},
		&Appointment{},
		&Part{},
		&Invoice{},
		&MessageThread{},
		&Message{},
		&Notification{},
		&PasswordReset{},
	}
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

// DropAll drops every table, children first.
func DropAll(db *gorm.DB) error {
	models := All()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	return nil
}
