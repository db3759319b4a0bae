package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/middleware"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/repository"
	"github.com/trangpham2601/group-task-manager/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
)

const accessTokenTTL = 24 * time.Hour

// AuthService issues the identity every other operation resolves the
// acting user from.
type AuthService struct {
	userRepo repository.UserRepositoryInterface
}

func NewAuthService(userRepo repository.UserRepositoryInterface) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) Register(username, email, password, displayName string) (*models.User, error) {
	username = validation.NormalizeUsername(username)
	email = validation.NormalizeEmail(email)

	if !validation.ValidateUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !validation.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.ValidatePassword(password) {
		return nil, ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:             username,
		Email:                email,
		PasswordHash:         string(hash),
		DisplayName:          validation.TrimAndLimit(displayName, validation.MaxDisplayNameLength),
		NotificationsEnabled: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apperr.Transient("user lookup", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SetNotificationsEnabled toggles the permission proxy the presenter
// consults before showing a notification.
func (s *AuthService) SetNotificationsEnabled(userID uint, enabled bool) error {
	return s.userRepo.SetNotificationsEnabled(userID, enabled)
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
