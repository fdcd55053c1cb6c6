// Package repository implements the data access layer for the application.
package repository

import (
	"errors"

	"projecthub/internal/database"
	"projecthub/internal/observability"
	"projecthub/models"

	"gorm.io/gorm"
)

// translateWriteError maps driver errors from a write to AppErrors. Unique
// violations become conflicts carrying conflictMsg.
func translateWriteError(table string, err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsAppError(err); ok {
		return err
	}
	if database.IsUniqueViolation(err) {
		observability.UniqueConflicts.WithLabelValues(table).Inc()
		return models.NewConflictError(conflictMsg)
	}
	return models.NewInternalError(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
