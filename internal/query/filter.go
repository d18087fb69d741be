// filter.go
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

package query

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// searchColumns are matched case-insensitively, any one matching.
var searchColumns = []string{
	"properties.title",
	"properties.description",
	"properties.address",
	"properties.city",
}

// sortColumns maps accepted sort fields to order expressions. Anything else
// falls back to the newest first.
var sortColumns = map[string]string{
	"createdAt":    "properties.created_at",
	"created_at":   "properties.created_at",
	"updatedAt":    "properties.updated_at",
	"updated_at":   "properties.updated_at",
	"title":        "properties.title",
	"propertyCode": "properties.property_code",
	"propertyType": "properties.property_type",
	"bedrooms":     "properties.bedrooms",
	"bathrooms":    "properties.bathrooms",
	"area":         "properties.area",
	"viewCount":    "properties.view_count",
	"city":         "properties.city",
	"price":        "(SELECT MIN(listings.price) FROM listings WHERE listings.property_id = properties.id)",
	"id":           "properties.id",
}

// Filter scopes a property query to the rows matching p. Listing predicates
// require one listing to satisfy all of them.
func Filter(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Status != "" && p.Status != "ALL" {
			db = db.Where("properties.status = ?", p.Status)
		}
		if p.PropertyType != "" {
			db = db.Where("properties.property_type = ?", p.PropertyType)
		}
		if p.City != "" {
			db = db.Where("properties.city = ?", p.City)
		}
		if p.Province != "" {
			db = db.Where("properties.province = ?", p.Province)
		}
		if p.ZoneID != nil {
			db = db.Where("properties.zone_id = ?", *p.ZoneID)
		}
		if p.UserID != nil {
			db = db.Where("properties.user_id = ?", *p.UserID)
		}
		if p.Bedrooms != nil {
			db = db.Where("properties.bedrooms = ?", *p.Bedrooms)
		}
		if p.Bathrooms != nil {
			db = db.Where("properties.bathrooms = ?", *p.Bathrooms)
		}

		if p.Search != "" {
			term := "%" + strings.ToLower(p.Search) + "%"
			conds := make([]string, len(searchColumns))
			args := make([]interface{}, len(searchColumns))
			for i, col := range searchColumns {
				conds[i] = "LOWER(" + col + ") LIKE ?"
				args[i] = term
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}

		if p.ListingType != "" || p.MinPrice != nil || p.MaxPrice != nil {
			sub := db.Session(&gorm.Session{NewDB: true}).
				Table("listings").
				Select("1").
				Where("listings.property_id = properties.id")
			if p.ListingType != "" {
				sub = sub.Where("listings.listing_type = ?", p.ListingType)
			}
			if p.MinPrice != nil {
				sub = sub.Where("listings.price >= ?", *p.MinPrice)
			}
			if p.MaxPrice != nil {
				sub = sub.Where("listings.price <= ?", *p.MaxPrice)
			}
			db = db.Where("EXISTS (?)", sub)
		}
		return db
	}
}

// Sort orders by the whitelisted field, descending unless "asc" is given.
// The id breaks ties so pages are stable.
func Sort(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[p.SortBy]
		if !ok {
			column = sortColumns["createdAt"]
		}
		desc := p.SortOrder != "asc"
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "properties.id", Raw: true}, Desc: desc})
	}
}

// Paginate limits a query to the page in p.
func Paginate(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}
