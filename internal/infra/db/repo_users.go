package db

import (
	"context"
	"errors"
	"fmt"

	"meridian/internal/domain"

	"gorm.io/gorm"
)

// UserRepository is the identity store client. The directory is owned by an
// external user service; this repository only reads from it.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FetchActiveUser(ctx context.Context, id string) (domain.User, error) {
	if r.db == nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, errDBUnavailable)
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return toDomainUser(model)
}

func (r *UserRepository) FetchByEmail(ctx context.Context, email string) (domain.User, error) {
	if r.db == nil {
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, errDBUnavailable)
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return toDomainUser(model)
}

func toDomainUser(model UserModel) (domain.User, error) {
	role, err := domain.ParseRole(model.Role)
	if err != nil {
		// A row with a role outside the closed set cannot become a
		// Principal.
		return domain.User{}, fmt.Errorf("user %s: %w", model.ID, err)
	}
	user := domain.User{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Role:         role,
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
	}
	if model.OrganizationID != nil {
		user.OrganizationID = *model.OrganizationID
	}
	return user, nil
}
