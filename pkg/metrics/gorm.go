package metrics

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const dbTimerKey = "metrics:db_timer"

// RegisterGormCallbacks times every statement gorm executes and counts
// failures. gorm.ErrRecordNotFound is a normal outcome and is not counted.
func RegisterGormCallbacks(db *gorm.DB, service string) error {
	cb := db.Callback()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"before_query", func() error { return cb.Query().Before("gorm:query").Register("metrics:before_query", startDbTimer(service, DbOpSelect)) }},
		{"after_query", func() error { return cb.Query().After("gorm:query").Register("metrics:after_query", observeDbTimer(service, DbOpSelect)) }},
		{"before_row", func() error { return cb.Row().Before("gorm:row").Register("metrics:before_row", startDbTimer(service, DbOpSelect)) }},
		{"after_row", func() error { return cb.Row().After("gorm:row").Register("metrics:after_row", observeDbTimer(service, DbOpSelect)) }},
		{"before_create", func() error { return cb.Create().Before("gorm:create").Register("metrics:before_create", startDbTimer(service, DbOpInsert)) }},
		{"after_create", func() error { return cb.Create().After("gorm:create").Register("metrics:after_create", observeDbTimer(service, DbOpInsert)) }},
		{"before_update", func() error { return cb.Update().Before("gorm:update").Register("metrics:before_update", startDbTimer(service, DbOpUpdate)) }},
		{"after_update", func() error { return cb.Update().After("gorm:update").Register("metrics:after_update", observeDbTimer(service, DbOpUpdate)) }},
		{"before_delete", func() error { return cb.Delete().Before("gorm:delete").Register("metrics:before_delete", startDbTimer(service, DbOpDelete)) }},
		{"after_delete", func() error { return cb.Delete().After("gorm:delete").Register("metrics:after_delete", observeDbTimer(service, DbOpDelete)) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to register gorm callback %s: %w", step.name, err)
		}
	}

	return nil
}

func startDbTimer(service string, op DbOperation) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		tx.InstanceSet(dbTimerKey, NewDbTimer(service, op, tx.Statement.Table))
	}
}

func observeDbTimer(service string, op DbOperation) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if v, ok := tx.InstanceGet(dbTimerKey); ok {
			if timer, ok := v.(*DbTimer); ok {
				timer.ObserveDuration()
			}
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			RecordDbError(service, op)
		}
	}
}
