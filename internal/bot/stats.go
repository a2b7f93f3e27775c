package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

// handleStats — stats:all (администраторы) и stats:school (учитель).
func (d *Dispatcher) handleStats(ctx context.Context, chatID int64, msgID int, user *models.User, parts []string) {
	if len(parts) < 2 {
		return
	}
	back := tgbotapi.NewInlineKeyboardMarkup(backToMenuRow())

	switch parts[1] {
	case "all":
		if !models.SeesAllSchools(user) {
			d.edit(chatID, msgID, "🚫 Нет доступа", back)
			return
		}
		stats, err := db.CountReports(ctx, d.DB, nil)
		if err != nil {
			d.Log.Errorw("общая статистика в боте", "err", err)
			return
		}
		d.edit(chatID, msgID, statsText("📊 <b>Общая статистика</b>", stats), back)

	case "school":
		if user.SchoolID == nil {
			d.edit(chatID, msgID, "❌ Школа не назначена", back)
			return
		}
		stats, err := db.CountReports(ctx, d.DB, user.SchoolID)
		if err != nil {
			d.Log.Errorw("статистика школы в боте", "err", err)
			return
		}
		title := fmt.Sprintf("📊 <b>Статистика школы: %s</b>", user.SchoolName)
		d.edit(chatID, msgID, statsText(title, stats), back)
	}
}

func statsText(title string, stats *db.ReportStats) string {
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	fmt.Fprintf(&sb, "🔴 Новых: %d\n", stats.ByStatus[models.StatusNew])
	fmt.Fprintf(&sb, "🟡 В работе: %d\n", stats.ByStatus[models.StatusInProgress])
	fmt.Fprintf(&sb, "🟢 Решено: %d\n", stats.ByStatus[models.StatusResolved])
	fmt.Fprintf(&sb, "🚫 Спам: %d\n", stats.ByStatus[models.StatusSpam])
	fmt.Fprintf(&sb, "📈 Всего: %d\n", stats.Total)
	sb.WriteString("\n📋 <b>По типам проблем:</b>\n")
	for _, pt := range models.AllProblemTypes() {
		fmt.Fprintf(&sb, "• %s: %d\n", pt.Label(), stats.ByProblem[pt])
	}
	return sb.String()
}
