package auth

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
)

// Authenticate проверяет логин и пароль сотрудника. Возвращает одну и ту же
// ошибку для «нет такого логина» и «пароль не подошёл», чтобы не раскрывать
// существование учётной записи.
func Authenticate(ctx context.Context, database *sql.DB, username, password string) (*models.User, error) {
	u, err := db.GetUserByUsername(ctx, database, username)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Role.IsStaff() {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveAccount
	}
	return u, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
