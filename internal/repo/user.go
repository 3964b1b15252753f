package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/hash"
	"github.com/bsavchuk/contacts-api/internal/models"
)

// CreateUser hashes the password and persists a new, unverified user.
// The plaintext never leaves this function.
func (r *GormRepo) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var existing models.User
	err = r.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperr.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate reports the same failure for an unknown email and a bad
// password so the two cannot be told apart.
func (r *GormRepo) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.ErrUnauthorized
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// MarkVerified is idempotent: verifying an already verified user is a
// no-op success.
func (r *GormRepo) MarkVerified(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *GormRepo) SetAvatarURL(ctx context.Context, id uint, url string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("avatar_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
