package repository

import (
	"context"
	"math/rand"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/hints"
)

func imagesFeaturedFirst(db *gorm.DB) *gorm.DB {
	return db.Order("is_featured DESC").Order("sort_order ASC").Order("id ASC")
}

func bySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func featuredOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_featured = ?", true)
}

func activeListings(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.StatusActive).Order("created_at DESC").Order("id DESC")
}

// FindByID loads the complete aggregate. Inactive amenities and nearby places
// are left out.
func (r *PropertyRepository) FindByID(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	err := r.db.WithContext(ctx).
		Clauses(hints.Comment("select", "property_by_id")).
		Preload("Listings", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Order("id DESC") }).
		Preload("Images", imagesFeaturedFirst).
		Preload("FloorPlans", bySortOrder).
		Preload("UnitPlans", bySortOrder).
		Preload("Features").
		Preload("Amenities", "active = ?", true).
		Preload("Facilities").
		Preload("Views").
		Preload("Highlights").
		Preload("Labels").
		Preload("NearbyPlaces", "active = ?", true).
		Preload("Zone").
		Preload("User").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists reports whether a property with id is stored.
func (r *PropertyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// OwnerOf returns the id of the user owning a property.
func (r *PropertyRepository) OwnerOf(ctx context.Context, id uint) (uint, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&p, id).Error; err != nil {
		return 0, err
	}
	return p.UserID, nil
}

// IncrementViews bumps the view counter without touching updated_at.
func (r *PropertyRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// FindAll returns one page of properties matching p with their featured
// image, active listings and owner.
func (r *PropertyRepository) FindAll(ctx context.Context, p query.ListParams) ([]models.Property, int64, error) {
	db := r.db.WithContext(ctx).Clauses(hints.Comment("select", "property_list")).Session(&gorm.Session{})

	var total int64
	if err := db.Model(&models.Property{}).Scopes(query.Filter(p)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Property
	err := db.Scopes(query.Filter(p), query.Sort(p), query.Paginate(p)).
		Preload("Images", featuredOnly).
		Preload("Listings", activeListings).
		Preload("User").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Search is FindAll with every image (featured first), the latest listing
// and the display attributes used by search result cards.
func (r *PropertyRepository) Search(ctx context.Context, p query.ListParams) ([]models.Property, int64, error) {
	db := r.db.WithContext(ctx).Clauses(hints.Comment("select", "property_search")).Session(&gorm.Session{})

	var total int64
	if err := db.Model(&models.Property{}).Scopes(query.Filter(p)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Property
	err := db.Scopes(query.Filter(p), query.Sort(p), query.Paginate(p)).
		Preload("Images", imagesFeaturedFirst).
		Preload("Listings", activeListings).
		Preload("Highlights").
		Preload("Amenities", "active = ?", true).
		Preload("Views").
		Preload("Zone").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetRandom returns up to count active properties that have a featured image
// and an active listing, in random order. When fewer qualify it falls back to
// any properties.
func (r *PropertyRepository) GetRandom(ctx context.Context, count int) ([]models.Property, error) {
	db := r.db.WithContext(ctx).Clauses(hints.Comment("select", "property_random")).Session(&gorm.Session{})

	var ids []uint
	err := db.Model(&models.Property{}).
		Where("properties.status = ?", models.StatusActive).
		Where("EXISTS (SELECT 1 FROM images WHERE images.property_id = properties.id AND images.is_featured = ?)", true).
		Where("EXISTS (SELECT 1 FROM listings WHERE listings.property_id = properties.id AND listings.status = ?)", models.StatusActive).
		Pluck("properties.id", &ids).Error
	if err != nil {
		return nil, err
	}

	images := featuredOnly
	listings := activeListings
	if len(ids) < count {
		ids = nil
		if err := db.Model(&models.Property{}).Pluck("properties.id", &ids).Error; err != nil {
			return nil, err
		}
		images = bySortOrder
		listings = func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }
	}
	if len(ids) == 0 {
		return []models.Property{}, nil
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > count {
		ids = ids[:count]
	}

	var rows []models.Property
	err = db.Where("id IN ?", ids).
		Preload("Images", images).
		Preload("Listings", listings).
		Preload("Highlights").
		Preload("Amenities", "active = ?", true).
		Preload("Views").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// keep the shuffled order
	pos := make(map[uint]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	ordered := make([]models.Property, len(rows))
	for _, row := range rows {
		ordered[pos[row.ID]] = row
	}
	return ordered, nil
}

// OwnedProperty is a backoffice row: a property with its inquiry count.
type OwnedProperty struct {
	models.Property
	InquiryCount int64 `json:"inquiryCount"`
}

// FindByUser returns one page of the properties owned by userID, any status
// unless p.Status narrows it.
func (r *PropertyRepository) FindByUser(ctx context.Context, userID uint, p query.ListParams) ([]OwnedProperty, int64, error) {
	p.UserID = &userID
	db := r.db.WithContext(ctx).Clauses(hints.Comment("select", "property_backoffice")).Session(&gorm.Session{})

	var total int64
	if err := db.Model(&models.Property{}).Scopes(query.Filter(p)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Property
	err := db.Scopes(query.Filter(p), query.Sort(p), query.Paginate(p)).
		Preload("Images", featuredOnly).
		Preload("Listings", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	counts := map[uint]int64{}
	if len(rows) > 0 {
		ids := make([]uint, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		var tallies []struct {
			PropertyID uint
			Count      int64
		}
		err := r.db.WithContext(ctx).Model(&models.Message{}).
			Select("property_id, COUNT(*) AS count").
			Where("property_id IN ?", ids).
			Group("property_id").
			Scan(&tallies).Error
		if err != nil {
			return nil, 0, err
		}
		for _, t := range tallies {
			counts[t.PropertyID] = t.Count
		}
	}

	out := make([]OwnedProperty, len(rows))
	for i, row := range rows {
		out[i] = OwnedProperty{Property: row, InquiryCount: counts[row.ID]}
	}
	return out, total, nil
}

// IDsByUser lists the ids of every property owned by userID.
func (r *PropertyRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// TypeCount is the number of active properties of one type.
type TypeCount struct {
	PropertyType string `json:"propertyType"`
	Count        int64  `json:"count"`
}

// TypeCounts counts active properties per type.
func (r *PropertyRepository) TypeCounts(ctx context.Context) ([]TypeCount, error) {
	var out []TypeCount
	err := r.db.WithContext(ctx).Model(&models.Property{}).
		Select("property_type, COUNT(*) AS count").
		Where("status = ?", models.StatusActive).
		Group("property_type").
		Scan(&out).Error
	return out, err
}

// PriceStat summarizes the active listing prices of one property type.
type PriceStat struct {
	PropertyType string  `json:"propertyType"`
	Count        int64   `json:"count"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	AvgPrice     float64 `json:"avgPrice"`
}

// PriceStats aggregates active listings of active properties per type.
func (r *PropertyRepository) PriceStats(ctx context.Context) ([]PriceStat, error) {
	var out []PriceStat
	err := r.db.WithContext(ctx).Table("listings").
		Select("properties.property_type AS property_type, COUNT(DISTINCT properties.id) AS count, "+
			"MIN(listings.price) AS min_price, MAX(listings.price) AS max_price, AVG(listings.price) AS avg_price").
		Joins("JOIN properties ON properties.id = listings.property_id").
		Where("properties.status = ? AND listings.status = ?", models.StatusActive, models.StatusActive).
		Group("properties.property_type").
		Scan(&out).Error
	return out, err
}
