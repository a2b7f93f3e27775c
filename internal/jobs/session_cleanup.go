package jobs

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/anonmektep/portal/internal/db"
)

const sessionTTL = 24 * time.Hour

// SessionCleanup выбрасывает брошенные на середине диалоги бота.
// Привязка чата живёт в users и от чистки не страдает.
func SessionCleanup(database *sql.DB, log *zap.SugaredLogger) Job {
	return func(ctx context.Context) error {
		n, err := db.CleanupBotSessions(ctx, database, sessionTTL)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Infow("чистка сессий бота", "removed", n)
		}
		return nil
	}
}
