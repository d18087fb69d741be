// property.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/metrics"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxCodeAttempts bounds the retries of a creation whose generated code
// collided with a concurrent one.
const maxCodeAttempts = 5

// codeScanBatch is how many candidate codes latestCode reads per query.
const codeScanBatch = 50

// ErrNoListings rejects a property submitted without any listing.
var ErrNoListings = errors.New("at least one listing is required")

// ListingInput is one priced offer of a new property.
type ListingInput struct {
	ListingType      string
	Price            float64
	RentalPrice      *float64
	ShortTerm3Months *float64
	ShortTerm6Months *float64
	ShortTerm1Year   *float64
	Status           string
}

// MediaInput describes an image, floor plan or unit plan by URL. SortOrder
// defaults to the position in its list.
type MediaInput struct {
	URL        string
	Caption    string
	Title      string
	IsFeatured bool
	SortOrder  *int
}

// PropertyInput is a complete creation payload.
type PropertyInput struct {
	PropertyCode string
	ReferenceID  *string
	PropertyType string

	Title                  string
	Description            string
	PaymentPlan            string
	TranslatedTitles       map[string]string
	TranslatedDescriptions map[string]string
	TranslatedPaymentPlans map[string]string

	Address       string
	SearchAddress string
	District      string
	SubDistrict   string
	City          string
	Province      string
	PostalCode    string
	Country       string
	ZoneID        *uint
	Latitude      *float64
	Longitude     *float64

	Bedrooms   *int
	Bathrooms  *int
	Floors     *int
	Area       *float64
	LandArea   *float64
	LandWidth  *float64
	LandLength *float64

	Status string
	UserID uint

	Listings   []ListingInput
	Images     []MediaInput
	FloorPlans []MediaInput
	UnitPlans  []MediaInput
	Taxonomy   taxonomy.Raw
}

// PropertyRepository reads and writes property aggregates.
type PropertyRepository struct {
	db         *gorm.DB
	normalizer *taxonomy.Normalizer
	relocator  *media.Relocator
	logger     *zap.Logger
}

func NewPropertyRepository(db *gorm.DB, normalizer *taxonomy.Normalizer, relocator *media.Relocator, logger *zap.Logger) *PropertyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyRepository{db: db, normalizer: normalizer, relocator: relocator, logger: logger}
}

// DB exposes the handle for callers composing their own queries.
func (r *PropertyRepository) DB() *gorm.DB { return r.db }

// Create writes a property with its listings, attribute rows and media in one
// transaction, then moves staged media files into the property directory and
// returns the stored aggregate.
//
// The structured rows are all or nothing. File placement runs after commit
// and only logs its failures; rows left pointing at staging are picked up by
// the media sweeper.
func (r *PropertyRepository) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	property, err := r.insert(ctx, in)
	if err != nil {
		return nil, err
	}

	r.placeMedia(ctx, property)
	return r.FindByID(ctx, property.ID)
}

// insert runs the creation transaction. A generated code that lost a race
// for the unique index is regenerated in a fresh transaction; a supplied code
// is never retried.
func (r *PropertyRepository) insert(ctx context.Context, in PropertyInput) (*models.Property, error) {
	if len(in.Listings) == 0 {
		return nil, ErrNoListings
	}
	if IsGeneratedCode(in.PropertyCode) {
		return nil, ErrReservedCode
	}
	set := r.normalizer.Normalize(in.Taxonomy)

	var (
		property *models.Property
		err      error
	)
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		property, err = r.createOnce(ctx, in, set)
		if err == nil || in.PropertyCode != "" || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		metrics.PropertyCodeRetries.Inc()
		r.logger.Warn("property code collision, retrying", zap.Int("attempt", attempt))
	}
	return property, err
}

func (r *PropertyRepository) createOnce(ctx context.Context, in PropertyInput, set taxonomy.Set) (*models.Property, error) {
	property := newProperty(in)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if property.PropertyCode == "" {
			code, err := latestCode(tx)
			if err != nil {
				return err
			}
			if property.PropertyCode, err = NextPropertyCode(code); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(property).Error; err != nil {
			return err
		}

		listings := make([]models.Listing, len(in.Listings))
		for i, l := range in.Listings {
			listings[i] = models.Listing{
				PropertyID:       property.ID,
				ListingType:      l.ListingType,
				Price:            l.Price,
				RentalPrice:      l.RentalPrice,
				ShortTerm3Months: l.ShortTerm3Months,
				ShortTerm6Months: l.ShortTerm6Months,
				ShortTerm1Year:   l.ShortTerm1Year,
				Status:           orDefault(l.Status, models.StatusActive),
			}
		}
		if err := tx.Create(&listings).Error; err != nil {
			return err
		}

		if err := insertTaxonomy(tx, property.ID, set); err != nil {
			return err
		}

		if images := buildImages(property.ID, in.Images); len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
			property.Images = images
		}
		if plans := buildFloorPlans(property.ID, in.FloorPlans); len(plans) > 0 {
			if err := tx.Create(&plans).Error; err != nil {
				return err
			}
			property.FloorPlans = plans
		}
		if plans := buildUnitPlans(property.ID, in.UnitPlans); len(plans) > 0 {
			if err := tx.Create(&plans).Error; err != nil {
				return err
			}
			property.UnitPlans = plans
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// latestCode returns the greatest generated code, or "" when there is none.
// Codes are zero padded so string order is numeric order. The SQL narrows to
// seven character codes inside the DP00000..DP99999 range; the few odd
// supplied codes that still match (DP0A123) are skipped batch by batch.
func latestCode(tx *gorm.DB) (string, error) {
	for offset := 0; ; offset += codeScanBatch {
		var codes []string
		err := tx.Model(&models.Property{}).
			Where("property_code LIKE ?", CodePrefix+strings.Repeat("_", codeDigits)).
			Where("property_code BETWEEN ? AND ?", formatCode(0), formatCode(maxCode)).
			Order("property_code DESC").
			Offset(offset).
			Limit(codeScanBatch).
			Pluck("property_code", &codes).Error
		if err != nil {
			return "", err
		}
		for _, c := range codes {
			if IsGeneratedCode(c) {
				return c, nil
			}
		}
		if len(codes) < codeScanBatch {
			return "", nil
		}
	}
}

// placeMedia relocates staged files for every media kind and persists the
// rewritten URLs.
func (r *PropertyRepository) placeMedia(ctx context.Context, p *models.Property) {
	r.relocator.Place(ctx, r.db, p.ID, media.KindImages, mediaAssets(p.Images))
	r.relocator.Place(ctx, r.db, p.ID, media.KindFloorPlans, mediaAssets(p.FloorPlans))
	r.relocator.Place(ctx, r.db, p.ID, media.KindUnitPlans, mediaAssets(p.UnitPlans))
}

func newProperty(in PropertyInput) *models.Property {
	return &models.Property{
		PropertyCode:           in.PropertyCode,
		ReferenceID:            in.ReferenceID,
		PropertyType:           in.PropertyType,
		Title:                  in.Title,
		Description:            in.Description,
		PaymentPlan:            in.PaymentPlan,
		TranslatedTitles:       models.NewLocalizedText(in.TranslatedTitles),
		TranslatedDescriptions: models.NewLocalizedText(in.TranslatedDescriptions),
		TranslatedPaymentPlans: models.NewLocalizedText(in.TranslatedPaymentPlans),
		Address:                in.Address,
		SearchAddress:          in.SearchAddress,
		District:               in.District,
		SubDistrict:            in.SubDistrict,
		City:                   in.City,
		Province:               in.Province,
		PostalCode:             in.PostalCode,
		Country:                in.Country,
		ZoneID:                 in.ZoneID,
		Latitude:               in.Latitude,
		Longitude:              in.Longitude,
		Bedrooms:               in.Bedrooms,
		Bathrooms:              in.Bathrooms,
		Floors:                 in.Floors,
		Area:                   in.Area,
		LandArea:               in.LandArea,
		LandWidth:              in.LandWidth,
		LandLength:             in.LandLength,
		Status:                 orDefault(in.Status, models.StatusActive),
		UserID:                 in.UserID,
	}
}

// insertTaxonomy writes one active row per entry of every kind in set.
func insertTaxonomy(tx *gorm.DB, propertyID uint, set taxonomy.Set) error {
	for _, kind := range taxonomy.Kinds {
		entries := set[kind]
		if len(entries) == 0 {
			continue
		}
		var rows interface{}
		switch kind {
		case taxonomy.KindFeatures:
			out := make([]models.Feature, len(entries))
			for i, e := range entries {
				out[i] = models.Feature{PropertyID: propertyID, Type: e.Type, Active: true}
			}
			rows = &out
		case taxonomy.KindAmenities:
			out := make([]models.Amenity, len(entries))
			for i, e := range entries {
				out[i] = models.Amenity{PropertyID: propertyID, Type: e.Type, Active: true}
			}
			rows = &out
		case taxonomy.KindFacilities:
			out := make([]models.Facility, len(entries))
			for i, e := range entries {
				out[i] = models.Facility{PropertyID: propertyID, Type: e.Type, Category: e.Category, Active: true}
			}
			rows = &out
		case taxonomy.KindViews:
			out := make([]models.View, len(entries))
			for i, e := range entries {
				out[i] = models.View{PropertyID: propertyID, Type: e.Type, Active: true}
			}
			rows = &out
		case taxonomy.KindHighlights:
			out := make([]models.Highlight, len(entries))
			for i, e := range entries {
				out[i] = models.Highlight{PropertyID: propertyID, Type: e.Type, Active: true}
			}
			rows = &out
		case taxonomy.KindLabels:
			out := make([]models.Label, len(entries))
			for i, e := range entries {
				out[i] = models.Label{PropertyID: propertyID, Type: e.Type, Active: true}
			}
			rows = &out
		case taxonomy.KindNearby:
			out := make([]models.NearbyPlace, len(entries))
			for i, e := range entries {
				out[i] = models.NearbyPlace{PropertyID: propertyID, Type: e.Type, Distance: e.Distance, Active: true}
			}
			rows = &out
		}
		if err := tx.Create(rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// taxonomyModels maps each kind to its row model.
var taxonomyModels = map[taxonomy.Kind]interface{}{
	taxonomy.KindFeatures:   &models.Feature{},
	taxonomy.KindAmenities:  &models.Amenity{},
	taxonomy.KindFacilities: &models.Facility{},
	taxonomy.KindViews:      &models.View{},
	taxonomy.KindHighlights: &models.Highlight{},
	taxonomy.KindLabels:     &models.Label{},
	taxonomy.KindNearby:     &models.NearbyPlace{},
}

// buildImages applies list order as the default sort order and keeps exactly
// one featured image: the first one flagged, else the first one.
func buildImages(propertyID uint, in []MediaInput) []models.Image {
	images := make([]models.Image, 0, len(in))
	featured := -1
	for i, m := range in {
		if m.URL == "" {
			continue
		}
		img := models.Image{
			PropertyID: propertyID,
			URL:        m.URL,
			Caption:    m.Caption,
			SortOrder:  sortOrder(m.SortOrder, i),
		}
		if m.IsFeatured && featured < 0 {
			featured = len(images)
		}
		images = append(images, img)
	}
	if len(images) > 0 {
		if featured < 0 {
			featured = 0
		}
		images[featured].IsFeatured = true
	}
	return images
}

func buildFloorPlans(propertyID uint, in []MediaInput) []models.FloorPlan {
	plans := make([]models.FloorPlan, 0, len(in))
	for i, m := range in {
		if m.URL == "" {
			continue
		}
		plans = append(plans, models.FloorPlan{
			PropertyID: propertyID,
			URL:        m.URL,
			Title:      orDefault(m.Title, m.Caption),
			SortOrder:  sortOrder(m.SortOrder, i),
		})
	}
	return plans
}

func buildUnitPlans(propertyID uint, in []MediaInput) []models.UnitPlan {
	plans := make([]models.UnitPlan, 0, len(in))
	for i, m := range in {
		if m.URL == "" {
			continue
		}
		plans = append(plans, models.UnitPlan{
			PropertyID: propertyID,
			URL:        m.URL,
			Title:      orDefault(m.Title, m.Caption),
			SortOrder:  sortOrder(m.SortOrder, i),
		})
	}
	return plans
}

// mediaAssets adapts stored media rows for the relocator.
func mediaAssets[T any, PT interface {
	*T
	media.Asset
}](rows []T) []media.Asset {
	out := make([]media.Asset, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out
}

func sortOrder(explicit *int, position int) int {
	if explicit != nil {
		return *explicit
	}
	return position
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
