package service

import (
	"errors"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/trangpham2601/group-task-manager/internal/middleware"
	"github.com/trangpham2601/group-task-manager/internal/models"
)

func TestRegisterValidation(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"bad username", "a", "user@example.com", "longenoughpassword", ErrInvalidUsername},
		{"bad email", "alice", "not-an-email", "longenoughpassword", ErrInvalidEmail},
		{"short password", "alice", "user@example.com", "short", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(tt.username, tt.email, tt.password, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := newFakeUserRepo(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"})
	service := NewAuthService(userRepo)

	_, err := service.Register("alice2", "alice@example.com", "longenoughpassword", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := NewAuthService(userRepo)

	user, err := service.Register("alice", "alice@example.com", "longenoughpassword", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.PasswordHash == "longenoughpassword" {
		t.Fatal("password stored in the clear")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenoughpassword")) != nil {
		t.Error("stored hash does not verify against the original password")
	}
	if !user.NotificationsEnabled {
		t.Error("new accounts should start with notifications enabled")
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	hash, _ := bcrypt.GenerateFromPassword([]byte("longenoughpassword"), bcrypt.MinCost)
	userRepo := newFakeUserRepo(&models.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	})
	service := NewAuthService(userRepo)

	user, token, err := service.Login("Alice@Example.com", "longenoughpassword")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != 1 {
		t.Errorf("logged in user ID = %d, want 1", user.ID)
	}

	parsed, err := jwt.ParseWithClaims(token, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := parsed.Claims.(*middleware.Claims)
	if claims.UserID != 1 || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v, want user 1 alice@example.com", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("longenoughpassword"), bcrypt.MinCost)
	userRepo := newFakeUserRepo(&models.User{
		ID:           1,
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	})
	service := NewAuthService(userRepo)

	if _, _, err := service.Login("alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	if _, _, err := service.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}
