package db

import (
	"context"
	"database/sql"

	"golang.org/x/crypto/bcrypt"

	"github.com/anonmektep/portal/internal/models"
)

// SeedSuperAdmin создаёт первую учётную запись, если таблица пуста.
// Самостоятельной регистрации в системе нет.
func SeedSuperAdmin(ctx context.Context, database *sql.DB, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	var count int
	if err := database.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	u := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.SuperAdmin,
		IsActive:     true,
	}
	if err := CreateUser(ctx, database, u); err != nil {
		return false, err
	}
	return true, nil
}
