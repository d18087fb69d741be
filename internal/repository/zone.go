package repository

import (
	"context"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ZoneRepository reads zones and icons, the reference data the listing
// screens filter and decorate with.
type ZoneRepository struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// ZoneFilter narrows a zone listing. Sort is one of name, nameEn, nameTh,
// city, province or createdAt.
type ZoneFilter struct {
	City     string
	Province string
	Search   string
	Sort     string
	Order    string
}

var zoneSortColumns = map[string]string{
	"name":      "name",
	"nameEn":    "name_en",
	"nameTh":    "name_th",
	"city":      "city",
	"province":  "province",
	"createdAt": "created_at",
	"id":        "id",
}

func (r *ZoneRepository) FindAll(ctx context.Context, f ZoneFilter) ([]models.Zone, error) {
	db := r.db.WithContext(ctx)
	if f.City != "" {
		db = db.Where("city = ?", f.City)
	}
	if f.Province != "" {
		db = db.Where("province = ?", f.Province)
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(name_en) LIKE ? OR LOWER(name_th) LIKE ? OR LOWER(description) LIKE ?)",
			term, term, term, term)
	}

	column, ok := zoneSortColumns[f.Sort]
	if !ok {
		column = "name"
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: strings.EqualFold(f.Order, "desc")})

	var zones []models.Zone
	err := db.Find(&zones).Error
	return zones, err
}

func (r *ZoneRepository) FindByID(ctx context.Context, id uint) (*models.Zone, error) {
	var z models.Zone
	if err := r.db.WithContext(ctx).First(&z, id).Error; err != nil {
		return nil, err
	}
	return &z, nil
}

// ByCity lists zones ordered by city then name.
func (r *ZoneRepository) ByCity(ctx context.Context) ([]models.Zone, error) {
	var zones []models.Zone
	err := r.db.WithContext(ctx).Order("city ASC").Order("name ASC").Find(&zones).Error
	return zones, err
}

// Upsert inserts zones, updating the descriptive columns of those whose name
// is already stored. It returns the number of rows written.
func (r *ZoneRepository) Upsert(ctx context.Context, zones []models.Zone) (int64, error) {
	if len(zones) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"name_en", "name_th", "names", "description", "city", "province", "updated_at"}),
	}).Create(&zones)
	return res.RowsAffected, res.Error
}

// ActiveIcons lists active icons, optionally for a single prefix.
func (r *ZoneRepository) ActiveIcons(ctx context.Context, prefix string) ([]models.Icon, error) {
	db := r.db.WithContext(ctx).Where("active = ?", true)
	if prefix != "" {
		db = db.Where("prefix = ?", prefix).Order("name ASC")
	} else {
		db = db.Order("prefix ASC").Order("name ASC")
	}
	var icons []models.Icon
	err := db.Find(&icons).Error
	return icons, err
}

func (r *ZoneRepository) FindIcon(ctx context.Context, id uint) (*models.Icon, error) {
	var icon models.Icon
	if err := r.db.WithContext(ctx).First(&icon, id).Error; err != nil {
		return nil, err
	}
	return &icon, nil
}
