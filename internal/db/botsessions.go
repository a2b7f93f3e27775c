package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Состояния диалога в боте. Хранятся в Postgres, а не в памяти процесса:
// рестарт бота не обрывает авторизацию на середине.
const (
	BotStateAwaitingUsername = "awaiting_username"
	BotStateAwaitingPassword = "awaiting_password"
	BotStateAuthenticated    = "authenticated"
	BotStateAwaitingComment  = "awaiting_comment"
)

type BotSession struct {
	ChatID    int64
	State     string
	Username  string // заполнен на шаге ввода пароля
	ReportID  int64  // заполнен в состоянии awaiting_comment
	Page      int
	UpdatedAt time.Time
}

func GetBotSession(ctx context.Context, database *sql.DB, chatID int64) (*BotSession, error) {
	var s BotSession
	err := database.QueryRowContext(ctx, `
		SELECT chat_id, state, username, report_id, page, updated_at
		FROM bot_sessions WHERE chat_id = $1
	`, chatID).Scan(&s.ChatID, &s.State, &s.Username, &s.ReportID, &s.Page, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func SaveBotSession(ctx context.Context, database *sql.DB, s *BotSession) error {
	_, err := database.ExecContext(ctx, `
		INSERT INTO bot_sessions (chat_id, state, username, report_id, page, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (chat_id) DO UPDATE
		SET state = excluded.state, username = excluded.username,
		    report_id = excluded.report_id, page = excluded.page, updated_at = now()
	`, s.ChatID, s.State, s.Username, s.ReportID, s.Page)
	return err
}

func DeleteBotSession(ctx context.Context, database *sql.DB, chatID int64) error {
	_, err := database.ExecContext(ctx, `DELETE FROM bot_sessions WHERE chat_id = $1`, chatID)
	return err
}

// CleanupBotSessions удаляет незавершённые диалоги старше ttl.
// Авторизация живёт в users.telegram_chat_id и от чистки не страдает.
func CleanupBotSessions(ctx context.Context, database *sql.DB, ttl time.Duration) (int64, error) {
	res, err := database.ExecContext(ctx, `
		DELETE FROM bot_sessions WHERE updated_at < now() - make_interval(secs => $1)
	`, ttl.Seconds())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
