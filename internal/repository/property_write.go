// property_write.go
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

	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Guard authorizes a mutation against the locked property row. It runs
// inside the transaction before anything is written; an error aborts it.
type Guard func(*models.Property) error

// lockProperty selects the property FOR UPDATE where the dialect supports
// row locks, then applies guard.
func lockProperty(tx *gorm.DB, id uint, guard Guard) (*models.Property, error) {
	var p models.Property
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(&p); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// Update applies column changes to a property under a row lock.
func (r *PropertyRepository) Update(ctx context.Context, id uint, guard Guard, changes map[string]interface{}) (*models.Property, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProperty(tx, id, guard)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(p).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// ReplaceTaxonomy replaces the attribute rows of every kind present in raw;
// kinds that were not submitted keep their rows.
func (r *PropertyRepository) ReplaceTaxonomy(ctx context.Context, id uint, guard Guard, raw taxonomy.Raw) (*models.Property, error) {
	set := r.normalizer.Normalize(raw)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProperty(tx, id, guard); err != nil {
			return err
		}
		for kind := range set {
			if err := tx.Where("property_id = ?", id).Delete(taxonomyModels[kind]).Error; err != nil {
				return err
			}
		}
		return insertTaxonomy(tx, id, set)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// ownedRows are deleted explicitly with their property; the foreign keys
// cascade too but SQLite only honours that with the pragma enabled.
var ownedRows = []interface{}{
	&models.Message{},
	&models.Listing{},
	&models.Image{},
	&models.FloorPlan{},
	&models.UnitPlan{},
	&models.Feature{},
	&models.Amenity{},
	&models.Facility{},
	&models.View{},
	&models.Highlight{},
	&models.Label{},
	&models.NearbyPlace{},
}

// Delete removes a property with everything it owns, including inquiries.
func (r *PropertyRepository) Delete(ctx context.Context, id uint, guard Guard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProperty(tx, id, guard)
		if err != nil {
			return err
		}
		for _, model := range ownedRows {
			if err := tx.Where("property_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(p).Error
	})
}

// AddImage appends an image. A featured image takes over the flag; the
// first image of a property is always featured. A staged file is moved into
// the property directory after commit.
func (r *PropertyRepository) AddImage(ctx context.Context, propertyID uint, guard Guard, in MediaInput) (*models.Image, error) {
	img := models.Image{PropertyID: propertyID, URL: in.URL, Caption: in.Caption}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProperty(tx, propertyID, guard); err != nil {
			return err
		}

		var stats struct {
			Count   int64
			MaxSort *int
		}
		err := tx.Model(&models.Image{}).
			Select("COUNT(*) AS count, MAX(sort_order) AS max_sort").
			Where("property_id = ?", propertyID).
			Scan(&stats).Error
		if err != nil {
			return err
		}

		switch {
		case in.SortOrder != nil:
			img.SortOrder = *in.SortOrder
		case stats.MaxSort != nil:
			img.SortOrder = *stats.MaxSort + 1
		}

		img.IsFeatured = in.IsFeatured || stats.Count == 0
		if img.IsFeatured && stats.Count > 0 {
			err := tx.Model(&models.Image{}).
				Where("property_id = ? AND is_featured = ?", propertyID, true).
				Update("is_featured", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&img).Error
	})
	if err != nil {
		return nil, err
	}

	r.relocator.Place(ctx, r.db, propertyID, media.KindImages, []media.Asset{&img})
	return &img, nil
}

// FindImage loads an image by id.
func (r *PropertyRepository) FindImage(ctx context.Context, id uint) (*models.Image, error) {
	var img models.Image
	if err := r.db.WithContext(ctx).First(&img, id).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteImage removes an image. When it was the featured one the next image
// in sort order is promoted.
func (r *PropertyRepository) DeleteImage(ctx context.Context, imageID uint, guard Guard) (*models.Image, error) {
	var img models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&img, imageID).Error; err != nil {
			return err
		}
		if _, err := lockProperty(tx, img.PropertyID, guard); err != nil {
			return err
		}
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}
		if !img.IsFeatured {
			return nil
		}

		var next models.Image
		err := tx.Where("property_id = ?", img.PropertyID).
			Order("sort_order ASC").Order("id ASC").
			Limit(1).Find(&next).Error
		if err != nil || next.ID == 0 {
			return err
		}
		return tx.Model(&next).Update("is_featured", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// AddFeature attaches a single canonical feature. Adding one the property
// already has returns the existing row.
func (r *PropertyRepository) AddFeature(ctx context.Context, propertyID uint, guard Guard, featureType string) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProperty(tx, propertyID, guard); err != nil {
			return err
		}
		return tx.Where(models.Feature{PropertyID: propertyID, Type: featureType}).
			Attrs(models.Feature{Active: true}).
			FirstOrCreate(&feature).Error
	})
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

// DeleteFeature removes a feature row.
func (r *PropertyRepository) DeleteFeature(ctx context.Context, featureID uint, guard Guard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var feature models.Feature
		if err := tx.First(&feature, featureID).Error; err != nil {
			return err
		}
		if _, err := lockProperty(tx, feature.PropertyID, guard); err != nil {
			return err
		}
		return tx.Delete(&feature).Error
	})
}

// ResolveFeature maps a submitted feature name to its canonical type.
func (r *PropertyRepository) ResolveFeature(name string) (string, bool) {
	e, ok := r.normalizer.Resolve(taxonomy.KindFeatures, name)
	return e.Type, ok
}
