package repository

import (
	"context"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardRepository computes the backoffice counters.
type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type TypeTally struct {
	PropertyType string `json:"propertyType"`
	Count        int64  `json:"count"`
}

type StatusTally struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DashboardStats is the counter set for one scope.
type DashboardStats struct {
	TotalProperties    int64            `json:"totalProperties"`
	TotalMessages      int64            `json:"totalMessages"`
	NewMessages        int64            `json:"newMessages"`
	PropertiesByType   []TypeTally      `json:"propertiesByType"`
	PropertiesByStatus []StatusTally    `json:"propertiesByStatus"`
	MessagesByType     []TypeTally      `json:"messagesByType"`
	MessagesByStatus   []StatusTally    `json:"messagesByStatus"`
	RecentMessages     []models.Message `json:"recentMessages"`
}

// Stats gathers every counter concurrently. A nil ownerID counts across all
// users; otherwise only that user's properties and their inquiries count.
func (r *DashboardRepository) Stats(ctx context.Context, ownerID *uint) (*DashboardStats, error) {
	stats := &DashboardStats{
		PropertiesByType:   []TypeTally{},
		PropertiesByStatus: []StatusTally{},
		MessagesByType:     []TypeTally{},
		MessagesByStatus:   []StatusTally{},
		RecentMessages:     []models.Message{},
	}

	owned := func(db *gorm.DB) *gorm.DB {
		if ownerID != nil {
			return db.Where("properties.user_id = ?", *ownerID)
		}
		return db
	}
	// messages are scoped through their property
	inquiries := func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN properties ON properties.id = messages.property_id")
		return owned(db)
	}

	g, ctx := errgroup.WithContext(ctx)
	db := r.db.WithContext(ctx)

	g.Go(func() error {
		return db.Model(&models.Property{}).Scopes(owned).Count(&stats.TotalProperties).Error
	})
	g.Go(func() error {
		return db.Model(&models.Property{}).Scopes(owned).
			Select("properties.property_type AS property_type, COUNT(*) AS count").
			Group("properties.property_type").
			Order("count DESC").
			Scan(&stats.PropertiesByType).Error
	})
	g.Go(func() error {
		return db.Model(&models.Property{}).Scopes(owned).
			Select("properties.status AS status, COUNT(*) AS count").
			Group("properties.status").
			Scan(&stats.PropertiesByStatus).Error
	})
	g.Go(func() error {
		return db.Model(&models.Message{}).Scopes(inquiries).Count(&stats.TotalMessages).Error
	})
	g.Go(func() error {
		return db.Model(&models.Message{}).Scopes(inquiries).
			Select("messages.status AS status, COUNT(*) AS count").
			Group("messages.status").
			Scan(&stats.MessagesByStatus).Error
	})
	g.Go(func() error {
		return db.Model(&models.Message{}).Scopes(inquiries).
			Select("properties.property_type AS property_type, COUNT(*) AS count").
			Group("properties.property_type").
			Scan(&stats.MessagesByType).Error
	})
	g.Go(func() error {
		return db.Model(&models.Message{}).Scopes(inquiries).
			Preload("Property", propertySummary).
			Order("messages.created_at DESC").Order("messages.id DESC").
			Limit(5).
			Find(&stats.RecentMessages).Error
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, s := range stats.MessagesByStatus {
		if s.Status == models.MessageNew {
			stats.NewMessages = s.Count
		}
	}
	return stats, nil
}
