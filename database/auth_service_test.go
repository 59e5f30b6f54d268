package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"billboard-service/models"
)

func TestCreateUser(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT COUNT(.+) FROM users WHERE email = (.+)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "Ana", "ana@example.com", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		service := NewAuthService(db, "secret")
		user, err := service.CreateUser(context.Background(), models.RegisterRequest{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "correct-horse",
		})
		if err != nil {
			t.Fatalf("CreateUser: unexpected error: %v", err)
		}
		if !strings.HasPrefix(user.ID, "user_") {
			t.Errorf("CreateUser: unexpected user id %q", user.ID)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("CreateUser: unmet expectations: %v", err)
		}
	})
}

func TestCreateUserDuplicate(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT COUNT(.+) FROM users WHERE email = (.+)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		service := NewAuthService(db, "secret")
		_, err := service.CreateUser(context.Background(), models.RegisterRequest{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "correct-horse",
		})
		if !errors.Is(err, ErrUserExists) {
			t.Errorf("CreateUser: expected ErrUserExists, got %v", err)
		}
	})
}

func TestLoginAndValidateToken(t *testing.T) {
	it(func() {
		hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		mock.ExpectQuery("SELECT id, name, password_hash FROM users WHERE email = (.+)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash"}).
				AddRow("user_42", "Ana", string(hash)))

		service := NewAuthService(db, "secret")
		token, err := service.Login(context.Background(), models.LoginRequest{
			Email:    "ana@example.com",
			Password: "correct-horse",
		})
		if err != nil {
			t.Fatalf("Login: unexpected error: %v", err)
		}

		userID, err := service.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: unexpected error: %v", err)
		}
		if userID != "user_42" {
			t.Errorf("ValidateToken: expected user_42, got %q", userID)
		}
	})
}

func TestLoginWrongPassword(t *testing.T) {
	it(func() {
		hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		mock.ExpectQuery("SELECT id, name, password_hash FROM users WHERE email = (.+)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash"}).
				AddRow("user_42", "Ana", string(hash)))

		service := NewAuthService(db, "secret")
		_, err := service.Login(context.Background(), models.LoginRequest{
			Email:    "ana@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login: expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestLoginUnknownUser(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT id, name, password_hash FROM users WHERE email = (.+)").
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash"}))

		service := NewAuthService(db, "secret")
		_, err := service.Login(context.Background(), models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "whatever",
		})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Login: expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestValidateTokenWrongSecret(t *testing.T) {
	it(func() {
		hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		mock.ExpectQuery("SELECT id, name, password_hash FROM users WHERE email = (.+)").
			WithArgs("ana@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash"}).
				AddRow("user_42", "Ana", string(hash)))

		issuer := NewAuthService(db, "secret")
		token, err := issuer.Login(context.Background(), models.LoginRequest{
			Email:    "ana@example.com",
			Password: "correct-horse",
		})
		if err != nil {
			t.Fatalf("Login: unexpected error: %v", err)
		}

		verifier := NewAuthService(db, "other-secret")
		if _, err := verifier.ValidateToken(token); err == nil {
			t.Error("ValidateToken: expected error for token signed with a different secret")
		}
	})
}
