// Package testutil provides throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"campus-food-api/config"
	"campus-food-api/media"
	"campus-food-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

// CreateUser inserts a user with the given grade and role
func CreateUser(t *testing.T, db *gorm.DB, account, grade string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Account: account, PasswordHash: string(hash), Role: role, Grade: grade}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateRestaurant inserts a bare restaurant with menu items at the given prices
func CreateRestaurant(t *testing.T, db *gorm.DB, publicID int64, name string, prices ...float64) (*models.Restaurant, []models.MenuItem) {
	t.Helper()
	r := &models.Restaurant{
		PublicID:    publicID,
		Name:        name,
		Phone:       "02-1234",
		Category:    models.CategoryFood,
		Sell:        true,
		ReviewStats: models.EmptyReviewStats(),
		GroupStats:  models.EmptyCounts(),
	}
	require.NoError(t, db.Create(r).Error)

	items := make([]models.MenuItem, 0, len(prices))
	for i, p := range prices {
		items = append(items, models.MenuItem{
			RestaurantID: r.ID,
			Name:         name + " dish " + string(rune('A'+i)),
			Price:        p,
			OrderStats:   models.EmptyCounts(),
		})
	}
	if len(items) > 0 {
		require.NoError(t, db.Create(&items).Error)
	}
	return r, items
}

// MediaStore is an in-memory media.Store that records every call
type MediaStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
	DeleteErr error
}

func NewMediaStore() *MediaStore {
	return &MediaStore{Objects: map[string][]byte{}}
}

func (m *MediaStore) Upload(_ context.Context, f media.File) (media.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return media.Object{}, m.UploadErr
	}
	handle := uuid.NewString() + filepath.Ext(f.Name)
	m.Objects[handle] = f.Data
	return media.Object{URL: "/uploads/" + handle, Handle: handle}, nil
}

func (m *MediaStore) Delete(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, handle)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, handle)
	return nil
}

// Len returns the number of stored objects
func (m *MediaStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
