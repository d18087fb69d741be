// property_service.go
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

package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/export"
	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/query"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"go.uber.org/zap"
)

const (
	// DefaultRandomCount is the size of the random feed when no count is given.
	DefaultRandomCount = 4
	maxRandomCount     = 50
	exportLimit        = 5000
)

// PropertyService implements the property operations of the API.
type PropertyService struct {
	repo    *repository.PropertyRepository
	store   *media.Store
	cache   cache.Cache
	catalog *Catalog
	baseURL string
	logger  *zap.Logger
}

func NewPropertyService(repo *repository.PropertyRepository, store *media.Store, c cache.Cache, catalog *Catalog, baseURL string, logger *zap.Logger) *PropertyService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		repo:    repo,
		store:   store,
		cache:   c,
		catalog: catalog,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// RandomProperty is a feed entry with absolute media URLs.
type RandomProperty struct {
	models.Property
	FeaturedImage *string `json:"featuredImage"`
}

// TypeSummary is a catalog entry with the number of active properties.
type TypeSummary struct {
	PropertyTypeInfo
	Count int64 `json:"count"`
}

// PriceTypeSummary is a catalog entry with active listing price statistics.
type PriceTypeSummary struct {
	PropertyTypeInfo
	Count    int64   `json:"count"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	AvgPrice float64 `json:"avgPrice"`
}

// List returns one page of properties matching the query string.
func (s *PropertyService) List(ctx context.Context, q map[string]string) (*query.Page[models.Property], error) {
	key := s.cache.Key(ctx, "properties", q)
	var cached query.Page[models.Property]
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	params := query.ParseListParams(q)
	rows, total, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, types.FromStorage(err, "Properties")
	}
	page := &query.Page[models.Property]{Data: nonNil(rows), Meta: query.NewMeta(total, params.Page, params.Limit)}
	s.remember(ctx, key, page)
	return page, nil
}

// Search is List for search result cards: images featured first with
// absolute URLs.
func (s *PropertyService) Search(ctx context.Context, q map[string]string) (*query.Page[models.Property], error) {
	params := query.ParseListParams(q)
	rows, total, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, types.FromStorage(err, "Search results")
	}
	for i := range rows {
		s.absolutize(&rows[i])
	}
	return &query.Page[models.Property]{Data: nonNil(rows), Meta: query.NewMeta(total, params.Page, params.Limit)}, nil
}

// ByZone lists the properties filed under a zone.
func (s *PropertyService) ByZone(ctx context.Context, zoneID uint, q map[string]string) (*query.Page[models.Property], error) {
	params := query.ParseListParams(q)
	params.ZoneID = &zoneID
	rows, total, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, types.FromStorage(err, "Zone properties")
	}
	return &query.Page[models.Property]{Data: nonNil(rows), Meta: query.NewMeta(total, params.Page, params.Limit)}, nil
}

// Random returns up to count properties for the public feed.
func (s *PropertyService) Random(ctx context.Context, count int) ([]RandomProperty, error) {
	if count < 1 {
		count = DefaultRandomCount
	}
	if count > maxRandomCount {
		count = maxRandomCount
	}
	rows, err := s.repo.GetRandom(ctx, count)
	if err != nil {
		return nil, types.FromStorage(err, "Random properties")
	}
	out := make([]RandomProperty, len(rows))
	for i := range rows {
		s.absolutize(&rows[i])
		out[i] = RandomProperty{Property: rows[i]}
		if img := rows[i].FeaturedImage(); img != nil {
			url := img.URL
			out[i].FeaturedImage = &url
		}
	}
	return out, nil
}

// Get returns the complete property and counts the view.
func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", id))
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to count property view", zap.Uint("property_id", id), zap.Error(err))
	} else {
		p.ViewCount++
	}
	return p, nil
}

// Create stores a new property owned by the actor.
func (s *PropertyService) Create(ctx context.Context, actor Actor, payload PropertyPayload) (*models.Property, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in, err := payload.ToInput(actor.ID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, in)
	switch {
	case errors.Is(err, repository.ErrNoListings):
		return nil, types.BadRequest("At least one listing is required")
	case errors.Is(err, repository.ErrReservedCode):
		return nil, types.BadRequest(fmt.Sprintf("Property code %q is reserved for generated codes", in.PropertyCode))
	case errors.Is(err, repository.ErrCodeSpaceExhausted):
		return nil, types.Conflict("No property codes are left to assign")
	case err != nil:
		return nil, types.FromStorage(err, "Property")
	}

	s.invalidate(ctx)
	s.logger.Info("property created",
		zap.Uint("property_id", p.ID), zap.String("property_code", p.PropertyCode), zap.Uint("user_id", actor.ID))
	return p, nil
}

// Update changes scalar fields of a property.
func (s *PropertyService) Update(ctx context.Context, actor Actor, id uint, update PropertyUpdate) (*models.Property, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	changes, err := update.Changes()
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, OwnerOrAdmin(actor, "update this property"), changes)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", id))
	}
	s.invalidate(ctx)
	return p, nil
}

// ReplaceTaxonomy replaces the attribute collections present in raw.
func (s *PropertyService) ReplaceTaxonomy(ctx context.Context, actor Actor, id uint, raw taxonomy.Raw) (*models.Property, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	p, err := s.repo.ReplaceTaxonomy(ctx, id, OwnerOrAdmin(actor, "update this property"), raw)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", id))
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes a property with everything it owns. Its media directory is
// removed afterwards; a failure there is only logged.
func (s *PropertyService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, OwnerOrAdmin(actor, "delete this property")); err != nil {
		return types.FromStorage(err, fmt.Sprintf("Property with ID %d", id))
	}
	if err := s.store.RemovePropertyDir(id); err != nil {
		s.logger.Warn("failed to remove property media", zap.Uint("property_id", id), zap.Error(err))
	}
	s.invalidate(ctx)
	return nil
}

// AddImage attaches an image to a property.
func (s *PropertyService) AddImage(ctx context.Context, actor Actor, propertyID uint, payload MediaPayload) (*models.Image, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	in := payload.input()
	if in.URL == "" {
		return nil, types.BadRequest("Image URL or file is required")
	}
	img, err := s.repo.AddImage(ctx, propertyID, OwnerOrAdmin(actor, "add images to this property"), in)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", propertyID))
	}
	s.invalidate(ctx)
	return img, nil
}

// DeleteImage removes an image and its file.
func (s *PropertyService) DeleteImage(ctx context.Context, actor Actor, imageID uint) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	img, err := s.repo.DeleteImage(ctx, imageID, OwnerOrAdmin(actor, "delete this image"))
	if err != nil {
		return types.FromStorage(err, fmt.Sprintf("Image with ID %d", imageID))
	}
	if err := s.store.RemoveByURL(img.URL); err != nil {
		s.logger.Warn("failed to remove image file", zap.Uint("image_id", imageID), zap.Error(err))
	}
	s.invalidate(ctx)
	return nil
}

// AddFeature attaches a feature given by any recognised name.
func (s *PropertyService) AddFeature(ctx context.Context, actor Actor, propertyID uint, name string) (*models.Feature, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	featureType, ok := s.repo.ResolveFeature(name)
	if !ok {
		return nil, types.BadRequest(fmt.Sprintf("Unknown feature %q", name))
	}
	f, err := s.repo.AddFeature(ctx, propertyID, OwnerOrAdmin(actor, "add features to this property"), featureType)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Property with ID %d", propertyID))
	}
	s.invalidate(ctx)
	return f, nil
}

// DeleteFeature removes a feature row.
func (s *PropertyService) DeleteFeature(ctx context.Context, actor Actor, featureID uint) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteFeature(ctx, featureID, OwnerOrAdmin(actor, "delete this feature")); err != nil {
		return types.FromStorage(err, fmt.Sprintf("Feature with ID %d", featureID))
	}
	s.invalidate(ctx)
	return nil
}

// MyProperties pages through the actor's own properties of any status.
func (s *PropertyService) MyProperties(ctx context.Context, actor Actor, q map[string]string) (*query.Page[repository.OwnedProperty], error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	params := ownerParams(q)
	rows, total, err := s.repo.FindByUser(ctx, actor.ID, params)
	if err != nil {
		return nil, types.FromStorage(err, "Properties")
	}
	for i := range rows {
		s.absolutize(&rows[i].Property)
	}
	return &query.Page[repository.OwnedProperty]{Data: nonNil(rows), Meta: query.NewMeta(total, params.Page, params.Limit)}, nil
}

// Export renders the actor's properties matching q as a workbook.
func (s *PropertyService) Export(ctx context.Context, actor Actor, q map[string]string) ([]byte, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	params := ownerParams(q)
	params.Page, params.Limit = 1, exportLimit
	rows, _, err := s.repo.FindByUser(ctx, actor.ID, params)
	if err != nil {
		return nil, types.FromStorage(err, "Properties")
	}
	data, err := export.Properties(rows)
	if err != nil {
		return nil, types.Internal("Error generating export", err)
	}
	return data, nil
}

// Types lists the catalog with the number of active properties per type.
func (s *PropertyService) Types(ctx context.Context) ([]TypeSummary, error) {
	key := s.cache.Key(ctx, "types", nil)
	var cached []TypeSummary
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	counts, err := s.repo.TypeCounts(ctx)
	if err != nil {
		return nil, types.FromStorage(err, "Property types")
	}
	byType := make(map[string]int64, len(counts))
	for _, c := range counts {
		byType[c.PropertyType] = c.Count
	}

	catalog := s.catalog.Types()
	out := make([]TypeSummary, len(catalog))
	for i, info := range catalog {
		out[i] = TypeSummary{PropertyTypeInfo: info, Count: byType[info.Value]}
	}
	s.remember(ctx, key, out)
	return out, nil
}

// PriceTypes lists the catalog with active listing price statistics.
func (s *PropertyService) PriceTypes(ctx context.Context) ([]PriceTypeSummary, error) {
	key := s.cache.Key(ctx, "price-types", nil)
	var cached []PriceTypeSummary
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	stats, err := s.repo.PriceStats(ctx)
	if err != nil {
		return nil, types.FromStorage(err, "Property price types")
	}
	byType := make(map[string]repository.PriceStat, len(stats))
	for _, st := range stats {
		byType[st.PropertyType] = st
	}

	catalog := s.catalog.Types()
	out := make([]PriceTypeSummary, len(catalog))
	for i, info := range catalog {
		st := byType[info.Value]
		out[i] = PriceTypeSummary{
			PropertyTypeInfo: info,
			Count:            st.Count,
			MinPrice:         st.MinPrice,
			MaxPrice:         st.MaxPrice,
			AvgPrice:         st.AvgPrice,
		}
	}
	s.remember(ctx, key, out)
	return out, nil
}

// StageUploads saves uploaded files into staging and returns their URLs.
func (s *PropertyService) StageUploads(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.store.SaveStaged(fh)
		if err != nil {
			return nil, types.Wrap(err, "Error storing upload")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// AbsoluteURL resolves a stored media URL against the public base URL.
func (s *PropertyService) AbsoluteURL(url string) string {
	if url == "" || strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return s.baseURL + "/" + strings.TrimPrefix(url, "/")
}

func (s *PropertyService) absolutize(p *models.Property) {
	for i := range p.Images {
		p.Images[i].URL = s.AbsoluteURL(p.Images[i].URL)
	}
	for i := range p.FloorPlans {
		p.FloorPlans[i].URL = s.AbsoluteURL(p.FloorPlans[i].URL)
	}
	for i := range p.UnitPlans {
		p.UnitPlans[i].URL = s.AbsoluteURL(p.UnitPlans[i].URL)
	}
}

func (s *PropertyService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if key == "" {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *PropertyService) remember(ctx context.Context, key string, value interface{}) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

// ownerParams parses a backoffice query; without a status filter every
// status is listed.
func ownerParams(q map[string]string) query.ListParams {
	params := query.ParseListParams(q)
	if strings.TrimSpace(q["status"]) == "" {
		params.Status = "ALL"
	}
	return params
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
