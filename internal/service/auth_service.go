package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/config"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
}

// Student returns the student identity carried by the token.
func (c *Claims) Student() model.Student {
	return model.Student{ID: c.UserID, Username: c.Username}
}

// Admin returns the admin identity carried by the token.
func (c *Claims) Admin() model.Admin {
	return model.Admin{ID: c.UserID, Username: c.Username}
}

// AuthService handles accounts, password checks and JWT issuance.
type AuthService struct {
	cfg      *config.Config
	accounts *repository.AccountRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, accounts *repository.AccountRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		accounts: accounts,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// BootstrapAdmin registers the configured admin account. It is skipped with a
// warning when no password hash is configured.
func (s *AuthService) BootstrapAdmin(ctx context.Context) error {
	if s.cfg.AdminPasswordHash == "" {
		s.log.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin login disabled")
		return nil
	}
	if _, err := bcrypt.Cost([]byte(s.cfg.AdminPasswordHash)); err != nil {
		return fmt.Errorf("admin password hash: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Username:     s.cfg.AdminUsername,
		Role:         model.RoleAdmin,
		PasswordHash: s.cfg.AdminPasswordHash,
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info().Str("username", account.Username).Msg("Admin account ready")
	return nil
}

// CreateStudent registers a new student account.
func (s *AuthService) CreateStudent(ctx context.Context, req *model.CreateStudentRequest) (*model.Account, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		Role:         model.RoleStudent,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.log.Info().Str("username", account.Username).Msg("Student account created")
	return account, nil
}

// ListStudents returns every student account.
func (s *AuthService) ListStudents(ctx context.Context) []*model.Account {
	return s.accounts.ListByRole(ctx, model.RoleStudent)
}

// Login checks credentials for an account of the given role and issues a token.
// Unknown users, wrong passwords and role mismatches are indistinguishable.
func (s *AuthService) Login(ctx context.Context, role model.Role, req *model.LoginRequest) (*model.LoginResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account.Role != role {
		return nil, ErrInvalidCredentials
	}
	if err := s.CheckPassword(account.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(account)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, Account: *account}, nil
}

// GenerateToken creates a signed JWT for account.
func (s *AuthService) GenerateToken(account *model.Account) (string, error) {
	now := time.Now()

	tokenType := TokenTypeStudent
	if account.Role == model.RoleAdmin {
		tokenType = TokenTypeAdmin
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    account.ID,
		Username:  account.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
