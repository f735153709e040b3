// Package store holds the query conventions shared by every repository read:
// soft-delete filtering, restaurant key resolution and named sequences.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Active limits a query to rows that are not soft-deleted
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// Deleted limits a query to soft-deleted rows
func Deleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}

// Visible applies Active unless includeDeleted is set, which is the
// administrative read path.
func Visible(includeDeleted bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeDeleted {
			return db
		}
		return Active(db)
	}
}

// Paginate applies 1-based page and size bounds
func Paginate(page, size int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		switch {
		case size > 100:
			size = 100
		case size <= 0:
			size = 20
		}
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// IsUniqueViolation reports whether err came from a unique index
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound reports whether err is gorm's missing-record error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
