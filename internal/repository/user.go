package repository

import (
	"context"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"gorm.io/gorm"
)

// UserRepository stores accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string
	Role   string
	Offset int
	Limit  int
}

func (r *UserRepository) FindAll(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			term := "%" + strings.ToLower(f.Search) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", term, term)
		}
		if f.Role != "" {
			db = db.Where("role = ?", f.Role)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail matches the address case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Create(u).Error
}

// Update writes the given columns and returns the stored user.
func (r *UserRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email, ok := changes["email"].(string); ok {
		changes["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if len(changes) > 0 {
		if err := r.db.WithContext(ctx).Model(u).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes a user. Users that still own properties are refused by the
// foreign key.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
