package services_test

import (
	"errors"
	"testing"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(ttl time.Duration) *services.AuthServiceImpl {
	return services.NewAuthService(config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   ttl,
		BCryptCost: bcrypt.MinCost,
	})
}

func TestSignupAndSignin(t *testing.T) {
	db := setupTestDB(t)
	auth := newTestAuthService(time.Hour)

	user, err := auth.SignupUser(db, "a@x.com", "pw123456")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("Expected a generated user id")
	}
	if user.Email != "a@x.com" {
		t.Errorf("Expected email 'a@x.com', got '%s'", user.Email)
	}
	if user.Password == "pw123456" {
		t.Error("Password was stored in plaintext")
	}

	signedIn, err := auth.LoginUser(db, "a@x.com", "pw123456")
	if err != nil {
		t.Fatalf("Signin failed: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Errorf("Expected user id %d, got %d", user.ID, signedIn.ID)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	auth := newTestAuthService(time.Hour)

	if _, err := auth.SignupUser(db, "a@x.com", "pw123456"); err != nil {
		t.Fatalf("First signup failed: %v", err)
	}

	_, err := auth.SignupUser(db, "a@x.com", "different-pw")
	if !errors.Is(err, services.ErrEmailTaken) {
		t.Fatalf("Expected ErrEmailTaken, got %v", err)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one user row, got %d", count)
	}
}

func TestSignup_NormalizesEmail(t *testing.T) {
	db := setupTestDB(t)
	auth := newTestAuthService(time.Hour)

	user, err := auth.SignupUser(db, "  A@X.com ", "pw123456")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Errorf("Expected normalized email 'a@x.com', got '%s'", user.Email)
	}

	if _, err := auth.SignupUser(db, "a@x.com", "pw123456"); !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("Expected normalized duplicate to be rejected, got %v", err)
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	auth := newTestAuthService(time.Hour)

	if _, err := auth.SignupUser(db, "a@x.com", "pw123456"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	_, err := auth.LoginUser(db, "a@x.com", "wrong-password")
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignin_UnknownEmail(t *testing.T) {
	db := setupTestDB(t)
	auth := newTestAuthService(time.Hour)

	_, err := auth.LoginUser(db, "nobody@x.com", "pw123456")
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	auth := newTestAuthService(time.Hour)

	token, err := auth.GenerateToken(42, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Expected email 'a@x.com', got '%s'", claims.Email)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	auth := newTestAuthService(-time.Hour)

	token, err := auth.GenerateToken(42, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := auth.VerifyToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issuer := newTestAuthService(time.Hour)
	verifier := services.NewAuthService(config.AuthConfig{
		JWTSecret:  "another-secret",
		TokenTTL:   time.Hour,
		BCryptCost: bcrypt.MinCost,
	})

	token, err := issuer.GenerateToken(42, "a@x.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := verifier.VerifyToken(token); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	auth := newTestAuthService(time.Hour)

	if _, err := auth.VerifyToken("not-a-jwt"); err == nil {
		t.Error("Expected malformed token to be rejected")
	}
}
