package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/models"
)

const DefaultBirthdayWindow = 7

// ContactUpdate carries partial update fields. Nil pointers mean "leave
// untouched", matching PUT bodies that omit a field.
type ContactUpdate struct {
	FirstName      *string      `json:"first_name"`
	LastName       *string      `json:"last_name"`
	Email          *string      `json:"email"`
	Phone          *string      `json:"phone"`
	Birthday       *models.Date `json:"birthday"`
	AdditionalInfo *string      `json:"additional_info"`
}

func (r *GormRepo) CreateContact(ctx context.Context, ownerID uint, contact *models.Contact) error {
	var existing models.Contact
	err := r.DB.WithContext(ctx).Where("email = ?", contact.Email).First(&existing).Error
	if err == nil {
		return apperr.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	contact.UserID = ownerID
	if err := r.DB.WithContext(ctx).Create(contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

// GetContact filters by contact id AND owner id. A contact that exists
// but belongs to someone else is indistinguishable from a missing one.
func (r *GormRepo) GetContact(ctx context.Context, id, ownerID uint) (*models.Contact, error) {
	var contact models.Contact
	err := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

func (r *GormRepo) ListContacts(ctx context.Context, ownerID uint, offset, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *GormRepo) CountContacts(ctx context.Context, ownerID uint) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.Contact{}).
		Where("user_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

func (r *GormRepo) UpdateContact(ctx context.Context, id, ownerID uint, upd ContactUpdate) (*models.Contact, error) {
	contact, err := r.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		contact.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		contact.LastName = *upd.LastName
	}
	if upd.Email != nil {
		contact.Email = *upd.Email
	}
	if upd.Phone != nil {
		contact.Phone = *upd.Phone
	}
	if upd.Birthday != nil {
		contact.Birthday = *upd.Birthday
	}
	if upd.AdditionalInfo != nil {
		contact.AdditionalInfo = *upd.AdditionalInfo
	}

	if err := r.DB.WithContext(ctx).Save(contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes the row and returns it.
func (r *GormRepo) DeleteContact(ctx context.Context, id, ownerID uint) (*models.Contact, error) {
	contact, err := r.GetContact(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// SearchContacts matches case-insensitive substrings on any supplied
// field, ANDed together, always scoped to the owner. LOWER/LIKE instead
// of ILIKE keeps the query portable between postgres and the sqlite
// test driver.
func (r *GormRepo) SearchContacts(ctx context.Context, ownerID uint, name, surname, email string) ([]models.Contact, error) {
	q := r.DB.WithContext(ctx).Where("user_id = ?", ownerID)
	if name != "" {
		q = q.Where("LOWER(first_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if surname != "" {
		q = q.Where("LOWER(last_name) LIKE ?", "%"+strings.ToLower(surname)+"%")
	}
	if email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	var contacts []models.Contact
	if err := q.Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls
// within windowDays of now, comparing month/day only so a late-December
// window correctly reaches into January.
func (r *GormRepo) UpcomingBirthdays(ctx context.Context, ownerID uint, windowDays int, now time.Time) ([]models.Contact, error) {
	if windowDays <= 0 {
		windowDays = DefaultBirthdayWindow
	}

	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var upcoming []models.Contact
	for _, c := range contacts {
		if c.Birthday.IsZero() {
			continue
		}
		next := time.Date(today.Year(), c.Birthday.Month(), c.Birthday.Day(), 0, 0, 0, 0, time.UTC)
		if next.Before(today) {
			next = next.AddDate(1, 0, 0)
		}
		if int(next.Sub(today).Hours()/24) <= windowDays {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}
