package repository

import (
	"context"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"gorm.io/gorm"
)

// MessageRepository stores inquiries.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// propertySummary keeps the embedded property small in message lists.
func propertySummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "property_code", "title", "property_type", "district", "city", "user_id")
}

func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	if m.Status == "" {
		m.Status = models.MessageNew
	}
	return r.db.WithContext(ctx).Omit("Property").Create(m).Error
}

// FindAll pages through every inquiry, newest first. propertyIDs, when not
// nil, restricts the result to those properties.
func (r *MessageRepository) FindAll(ctx context.Context, propertyIDs []uint, offset, limit int) ([]models.Message, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if propertyIDs != nil {
			if len(propertyIDs) == 0 {
				return db.Where("1 = 0")
			}
			return db.Where("property_id IN ?", propertyIDs)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Message
	err := r.db.WithContext(ctx).Scopes(scope).
		Preload("Property", propertySummary).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ByProperty lists the inquiries of one property, newest first.
func (r *MessageRepository) ByProperty(ctx context.Context, propertyID uint) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads a message with its property.
func (r *MessageRepository) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var m models.Message
	if err := r.db.WithContext(ctx).Preload("Property", propertySummary).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateStatus moves an inquiry to status.
func (r *MessageRepository) UpdateStatus(ctx context.Context, id uint, status string) (*models.Message, error) {
	m, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}
	m.Status = status
	return m, nil
}
