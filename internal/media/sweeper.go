// sweeper.go
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

package media

import (
	"context"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/metrics"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepResult counts the rows a sweep looked at and fixed.
type SweepResult struct {
	Pending int `json:"pending"`
	Placed  int `json:"placed"`
}

// Invalidator drops cached responses that may still carry staging URLs.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Sweeper re-runs relocation for stored media rows still pointing at staging,
// finishing placements that failed or were interrupted after their property
// was committed.
type Sweeper struct {
	db        *gorm.DB
	relocator *Relocator
	cache     Invalidator
	logger    *zap.Logger
}

// NewSweeper builds a sweeper; cache may be nil.
func NewSweeper(db *gorm.DB, relocator *Relocator, cache Invalidator, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{db: db, relocator: relocator, cache: cache, logger: logger}
}

// Sweep makes one reconcile pass over images, floor plans and unit plans.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	pattern := "%" + stagingMarker + "%"
	db := s.db.WithContext(ctx)

	var images []models.Image
	if err := db.Where("url LIKE ?", pattern).Order("property_id").Find(&images).Error; err != nil {
		metrics.MediaSweeps.WithLabelValues("error").Inc()
		return result, err
	}
	var floorPlans []models.FloorPlan
	if err := db.Where("url LIKE ?", pattern).Order("property_id").Find(&floorPlans).Error; err != nil {
		metrics.MediaSweeps.WithLabelValues("error").Inc()
		return result, err
	}
	var unitPlans []models.UnitPlan
	if err := db.Where("url LIKE ?", pattern).Order("property_id").Find(&unitPlans).Error; err != nil {
		metrics.MediaSweeps.WithLabelValues("error").Inc()
		return result, err
	}

	result.Pending = len(images) + len(floorPlans) + len(unitPlans)
	if result.Pending == 0 {
		metrics.MediaSweeps.WithLabelValues("clean").Inc()
		return result, nil
	}

	imageGroups := map[uint][]Asset{}
	for i := range images {
		imageGroups[images[i].PropertyID] = append(imageGroups[images[i].PropertyID], &images[i])
	}
	floorGroups := map[uint][]Asset{}
	for i := range floorPlans {
		floorGroups[floorPlans[i].PropertyID] = append(floorGroups[floorPlans[i].PropertyID], &floorPlans[i])
	}
	unitGroups := map[uint][]Asset{}
	for i := range unitPlans {
		unitGroups[unitPlans[i].PropertyID] = append(unitGroups[unitPlans[i].PropertyID], &unitPlans[i])
	}

	for kind, groups := range map[Kind]map[uint][]Asset{
		KindImages:     imageGroups,
		KindFloorPlans: floorGroups,
		KindUnitPlans:  unitGroups,
	} {
		for propertyID, assets := range groups {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Placed += s.relocator.Place(ctx, s.db, propertyID, kind, assets)
		}
	}

	if result.Placed > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation after media sweep failed", zap.Error(err))
		}
	}

	s.logger.Info("media sweep finished", zap.Int("pending", result.Pending), zap.Int("placed", result.Placed))
	metrics.MediaSweeps.WithLabelValues("fixed").Inc()
	return result, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("media sweep failed", zap.Error(err))
			}
		}
	}
}
