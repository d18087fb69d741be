package query

import (
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewMeta(t *testing.T) {
	meta := NewMeta(25, 2, 10)
	assert.Equal(t, Meta{Total: 25, Page: 2, Limit: 10, TotalPages: 3, HasNext: true, HasPrev: true}, meta)

	meta = NewMeta(0, 1, 10)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)

	meta = NewMeta(30, 3, 10)
	assert.False(t, meta.HasNext)
}

func TestParseListParamsDefaults(t *testing.T) {
	p := ParseListParams(map[string]string{})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, models.StatusActive, p.Status)
	assert.Nil(t, p.MinPrice)

	p = ParseListParams(map[string]string{
		"page": "3", "limit": "500", "sort": "price", "order": "ASC",
		"minPrice": "1000", "bedrooms": "x", "zoneId": "4", "propertyType": "condo",
	})
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
	assert.Equal(t, "price", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
	require.NotNil(t, p.MinPrice)
	assert.Equal(t, 1000.0, *p.MinPrice)
	assert.Nil(t, p.Bedrooms)
	require.NotNil(t, p.ZoneID)
	assert.Equal(t, uint(4), *p.ZoneID)
	assert.Equal(t, "CONDO", p.PropertyType)
}

func seedProperty(t *testing.T, db *gorm.DB, code, title string, prices ...float64) models.Property {
	t.Helper()
	var user models.User
	if err := db.First(&user).Error; err != nil {
		user = models.User{Name: "Agent", Email: "agent@example.com", Password: "x", Role: models.RoleAgent}
		require.NoError(t, db.Create(&user).Error)
	}
	p := models.Property{
		PropertyCode: code,
		PropertyType: models.TypeCondo,
		Title:        title,
		City:         "Bangkok",
		Status:       models.StatusActive,
		UserID:       user.ID,
	}
	require.NoError(t, db.Create(&p).Error)
	for _, price := range prices {
		require.NoError(t, db.Create(&models.Listing{PropertyID: p.ID, ListingType: models.ListingSale, Price: price}).Error)
	}
	return p
}

func findIDs(t *testing.T, db *gorm.DB, p ListParams) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&models.Property{}).Scopes(Filter(p), Sort(p)).Pluck("properties.id", &ids).Error)
	return ids
}

func TestPriceFilterMatchesAnyListing(t *testing.T) {
	db := testdb.NewSQLite(t)
	p := seedProperty(t, db, "DP00001", "Two listings", 100, 200)

	assert.Equal(t, []uint{p.ID}, findIDs(t, db, ParseListParams(map[string]string{"minPrice": "150"})))
	assert.Empty(t, findIDs(t, db, ParseListParams(map[string]string{"maxPrice": "90"})))
	assert.Empty(t, findIDs(t, db, ParseListParams(map[string]string{"minPrice": "150", "listingType": "RENT"})))
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	db := testdb.NewSQLite(t)
	match := seedProperty(t, db, "DP00001", "Riverside Condo", 100)
	seedProperty(t, db, "DP00002", "Hillside House", 100)

	ids := findIDs(t, db, ParseListParams(map[string]string{"search": "RIVER"}))
	assert.Equal(t, []uint{match.ID}, ids)
}

func TestSortWhitelist(t *testing.T) {
	db := testdb.NewSQLite(t)
	cheap := seedProperty(t, db, "DP00001", "Cheap", 100)
	dear := seedProperty(t, db, "DP00002", "Dear", 900)

	asc := findIDs(t, db, ParseListParams(map[string]string{"sortBy": "price", "sortOrder": "asc"}))
	assert.Equal(t, []uint{cheap.ID, dear.ID}, asc)

	// unknown sort fields fall back to newest first
	ids := findIDs(t, db, ParseListParams(map[string]string{"sortBy": "password; DROP TABLE users"}))
	assert.Len(t, ids, 2)
}

func TestPagination(t *testing.T) {
	db := testdb.NewSQLite(t)
	for i := 0; i < 25; i++ {
		seedProperty(t, db, "DP"+string(rune('A'+i)), "P", 100)
	}
	p := ParseListParams(map[string]string{"page": "2", "limit": "10"})

	var total int64
	require.NoError(t, db.Model(&models.Property{}).Scopes(Filter(p)).Count(&total).Error)
	var rows []models.Property
	require.NoError(t, db.Scopes(Filter(p), Sort(p), Paginate(p)).Find(&rows).Error)

	assert.Len(t, rows, 10)
	assert.Equal(t, Meta{Total: 25, Page: 2, Limit: 10, TotalPages: 3, HasNext: true, HasPrev: true}, NewMeta(total, p.Page, p.Limit))
}
