package services

import (
	"context"
	"fmt"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"
	"campus-food-api/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService registers and authenticates accounts
type UserService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewUserService(db *gorm.DB, log *zap.SugaredLogger) *UserService {
	return &UserService{db: db, log: log}
}

type RegisterInput struct {
	Account  string `json:"account" validate:"required,min=4,max=20,alphanum"`
	Password string `json:"password" validate:"required,min=4,max=20"`
	Grade    string `json:"grade" validate:"required,max=50"`
}

type LoginInput struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a regular user account
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Account = strings.TrimSpace(in.Account)
	in.Grade = strings.TrimSpace(in.Grade)
	if err := check(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &models.User{
		Account:      in.Account,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Grade:        in.Grade,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("account %q is already registered", in.Account)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Infow("user registered", "user", u.ID, "grade", u.Grade)
	return u, nil
}

// Login checks credentials and returns the account
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	var u models.User
	err := s.db.WithContext(ctx).Scopes(store.Active).Where("account = ?", strings.TrimSpace(in.Account)).First(&u).Error
	if store.IsNotFound(err) {
		return nil, apperr.Unauthorized("invalid account or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid account or password")
	}
	if u.IsBlocked {
		return nil, apperr.Forbidden("account is blocked")
	}
	return &u, nil
}

// Profile returns the active user with id
func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Scopes(store.Active).First(&u, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// List returns accounts newest first
func (s *UserService) List(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Scopes(store.Visible(includeDeleted)).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetBlocked blocks or unblocks an account. Admins cannot be blocked.
func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == models.RoleAdmin {
		return nil, apperr.Forbidden("admin accounts cannot be blocked")
	}
	if u.IsBlocked == blocked {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Update("is_blocked", blocked).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	u.IsBlocked = blocked
	s.log.Infow("user block state changed", "user", u.ID, "blocked", blocked)
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet
func (s *UserService) EnsureAdmin(ctx context.Context, account, password string) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("account = ?", account).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !store.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &models.User{Account: account, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.log.Infow("admin account created", "account", account)
	return u, nil
}
