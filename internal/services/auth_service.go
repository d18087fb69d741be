package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Claims are the JWT claims issued at login.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user and returns it with its expiry.
func (t *TokenIssuer) Issue(u *models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns the actor it identifies.
func (t *TokenIssuer) Parse(token string) (Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Actor{}, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Actor{}, fmt.Errorf("invalid token subject %q", claims.Subject)
	}
	return Actor{ID: uint(id), Role: claims.Role}, nil
}

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginInput is an email and password pair.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	users  *repository.UserRepository
	tokens *TokenIssuer
	logger *zap.Logger
}

func NewAuthService(users *repository.UserRepository, tokens *TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Register creates a USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, types.BadRequest("Name, email and password are required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Name: name, Email: email, Password: hash, Phone: strings.TrimSpace(in.Phone), Role: models.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.Conflict("Email is already registered")
		}
		return nil, types.FromStorage(err, "User")
	}
	s.logger.Info("user registered", zap.Uint("user_id", u.ID))
	return s.result(u)
}

// Login verifies the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, types.BadRequest("Email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.Unauthorized("Invalid email or password")
		}
		return nil, types.FromStorage(err, "User")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, types.Unauthorized("Invalid email or password")
	}
	return s.result(u)
}

func (s *AuthService) result(u *models.User) (*AuthResult, error) {
	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, types.Internal("Error issuing token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expires, User: u}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", types.BadRequest(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", types.Internal("Error hashing password", err)
	}
	return string(hash), nil
}
