package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/query"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInput creates or updates an account. Absent fields are left unchanged
// on update.
type UserInput struct {
	Name        *string             `json:"name"`
	Email       *string             `json:"email"`
	Password    *string             `json:"password"`
	Phone       *string             `json:"phone"`
	Role        *string             `json:"role"`
	SocialMedia *models.SocialMedia `json:"socialMedia"`
}

// PasswordChange is a request to replace the caller's password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserService manages accounts.
type UserService struct {
	users  *repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users *repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// List pages through accounts. q accepts search, role, page and limit.
func (s *UserService) List(ctx context.Context, actor Actor, q map[string]string) (*query.Page[models.User], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	params := query.ParseListParams(q)
	rows, total, err := s.users.FindAll(ctx, repository.UserFilter{
		Search: strings.TrimSpace(q["search"]),
		Role:   strings.ToUpper(strings.TrimSpace(q["role"])),
		Offset: params.Offset(),
		Limit:  params.Limit,
	})
	if err != nil {
		return nil, types.FromStorage(err, "Users")
	}
	return &query.Page[models.User]{Data: nonNil(rows), Meta: query.NewMeta(total, params.Page, params.Limit)}, nil
}

func (s *UserService) Get(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("User with ID %d", id))
	}
	return u, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, actor Actor, in UserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, email, password := deref(in.Name), deref(in.Email), deref(in.Password)
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, types.BadRequest("Name, email and password are required")
	}
	role := models.RoleUser
	if in.Role != nil {
		role = strings.ToUpper(strings.TrimSpace(*in.Role))
		if !models.ValidRole(role) {
			return nil, types.BadRequest("Invalid role. Must be one of: " + strings.Join(models.Roles, ", "))
		}
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Phone:    strings.TrimSpace(deref(in.Phone)),
		Role:     role,
	}
	if in.SocialMedia != nil {
		u.SetSocial(*in.SocialMedia)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, s.classify(err, "User")
	}
	s.logger.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", u.Role), zap.Uint("by", actor.ID))
	return u, nil
}

// Update changes the given fields of an account.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint, in UserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, types.BadRequest("Name cannot be empty")
		}
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, types.BadRequest("Email cannot be empty")
		}
		changes["email"] = *in.Email
	}
	if in.Phone != nil {
		changes["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*in.Role))
		if !models.ValidRole(role) {
			return nil, types.BadRequest("Invalid role. Must be one of: " + strings.Join(models.Roles, ", "))
		}
		changes["role"] = role
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		changes["password"] = hash
	}
	if in.SocialMedia != nil {
		changes["facebook"] = in.SocialMedia.Facebook
		changes["line_id"] = in.SocialMedia.Line
		changes["wechat_id"] = in.SocialMedia.WeChat
		changes["whats_app"] = in.SocialMedia.WhatsApp
	}

	u, err := s.users.Update(ctx, id, changes)
	if err != nil {
		return nil, s.classify(err, fmt.Sprintf("User with ID %d", id))
	}
	return u, nil
}

// Delete removes an account that owns no properties.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return types.BadRequest("You cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return types.Conflict("User still owns properties")
		}
		return types.FromStorage(err, fmt.Sprintf("User with ID %d", id))
	}
	s.logger.Info("user deleted", zap.Uint("user_id", id), zap.Uint("by", actor.ID))
	return nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, types.FromStorage(err, "User")
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, in PasswordChange) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return types.BadRequest("Current and new password are required")
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return types.FromStorage(err, "User")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.CurrentPassword)) != nil {
		return types.Unauthorized("Current password is incorrect")
	}
	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, actor.ID, map[string]interface{}{"password": hash}); err != nil {
		return types.FromStorage(err, "User")
	}
	return nil
}

func (s *UserService) classify(err error, subject string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.Conflict("Email is already registered")
	}
	return types.FromStorage(err, subject)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
