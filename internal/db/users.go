package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/anonmektep/portal/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	u.id, u.username, u.password_hash, u.full_name, u.role, u.school_id,
	COALESCE(s.name, ''), u.telegram_chat_id, u.is_active, u.created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role,
		&u.SchoolID, &u.SchoolName, &u.TelegramChatID, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, database *sql.DB, id int64) (*models.User, error) {
	return scanUser(database.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN schools s ON s.id = u.school_id
		WHERE u.id = $1
	`, id))
}

func GetUserByUsername(ctx context.Context, database *sql.DB, username string) (*models.User, error) {
	return scanUser(database.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN schools s ON s.id = u.school_id
		WHERE u.username = $1
	`, username))
}

func GetUserByChatID(ctx context.Context, database *sql.DB, chatID int64) (*models.User, error) {
	return scanUser(database.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN schools s ON s.id = u.school_id
		WHERE u.telegram_chat_id = $1
	`, chatID))
}

func ListUsers(ctx context.Context, database *sql.DB) ([]models.User, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN schools s ON s.id = u.school_id
		ORDER BY u.username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func CreateUser(ctx context.Context, database *sql.DB, u *models.User) error {
	return database.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, full_name, role, school_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Username, u.PasswordHash, u.FullName, string(u.Role), u.SchoolID, u.IsActive).
		Scan(&u.ID, &u.CreatedAt)
}

// UpdateUser не трогает пароль: смена пароля — отдельная операция.
func UpdateUser(ctx context.Context, database *sql.DB, u *models.User) error {
	res, err := database.ExecContext(ctx, `
		UPDATE users
		SET username = $1, full_name = $2, role = $3, school_id = $4, is_active = $5
		WHERE id = $6
	`, u.Username, u.FullName, string(u.Role), u.SchoolID, u.IsActive, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func SetUserPassword(ctx context.Context, database *sql.DB, id int64, passwordHash string) error {
	res, err := database.ExecContext(ctx, `
		UPDATE users SET password_hash = $1 WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func DeleteUser(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BindChatID привязывает Telegram-чат к учётной записи.
// Последняя авторизация выигрывает: прежний владелец чата отвязывается.
func BindChatID(ctx context.Context, database *sql.DB, userID, chatID int64) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET telegram_chat_id = NULL
		WHERE telegram_chat_id = $1 AND id <> $2
	`, chatID, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET telegram_chat_id = $1 WHERE id = $2
	`, chatID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return tx.Commit()
}

// UnbindChatID отвязывает чат от любой учётной записи.
func UnbindChatID(ctx context.Context, database *sql.DB, chatID int64) error {
	_, err := database.ExecContext(ctx, `
		UPDATE users SET telegram_chat_id = NULL WHERE telegram_chat_id = $1
	`, chatID)
	return err
}

// NotifyTargets — получатели уведомления о новом обращении: активные
// учителя школы (для общих обращений — никто), все активные сотрудники
// районного отдела и все активные супер-админы. Только с привязанным чатом.
func NotifyTargets(ctx context.Context, database *sql.DB, schoolID *int64) ([]models.User, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN schools s ON s.id = u.school_id
		WHERE u.is_active
		  AND u.telegram_chat_id IS NOT NULL
		  AND (u.role IN ($1, $2) OR (u.role = $3 AND $4::bigint IS NOT NULL AND u.school_id = $4))
	`, string(models.SuperAdmin), string(models.DistrictAdmin), string(models.Teacher), schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
