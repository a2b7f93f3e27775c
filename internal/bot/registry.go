package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anonmektep/portal/internal/db"
	"github.com/anonmektep/portal/internal/models"
)

// Реестры школ и сотрудников в боте только для чтения, правки идут
// через кабинет.

func (d *Dispatcher) handleSchools(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, parts []string) {
	if !models.CanManageSchools(user) {
		d.answer(cb.ID, "Нет доступа")
		return
	}
	d.answer(cb.ID, "")
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	page := pageArg(parts, 1)

	schools, err := db.ListSchools(ctx, d.DB)
	if err != nil {
		d.Log.Errorw("список школ в боте", "err", err)
		return
	}
	if len(schools) == 0 {
		d.edit(chatID, msgID, "🏫 <b>Школы</b>\n\nПока ни одной школы не добавлено.",
			tgbotapi.NewInlineKeyboardMarkup(backToMenuRow()))
		return
	}

	pages := totalPages(len(schools), botPageSize)
	if page > pages {
		page = pages
	}
	from := (page - 1) * botPageSize
	to := from + botPageSize
	if to > len(schools) {
		to = len(schools)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏫 <b>Школы (%d)</b>\n", len(schools))
	if pages > 1 {
		fmt.Fprintf(&sb, "Страница %d из %d\n", page, pages)
	}
	sb.WriteString("\n")
	for i := from; i < to; i++ {
		s := &schools[i]
		fmt.Fprintf(&sb, "• <b>%s</b>\n  Код: <code>%s</code>\n", s.Name, s.UniqueCode)
		if s.Address != "" {
			fmt.Fprintf(&sb, "  %s\n", s.Address)
		}
		sb.WriteString("\n")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if pr := pagerRow("schools", page, pages); len(pr) > 0 {
		rows = append(rows, pr)
	}
	rows = append(rows, backToMenuRow())
	d.edit(chatID, msgID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (d *Dispatcher) handleUsers(ctx context.Context, cb *tgbotapi.CallbackQuery, user *models.User, parts []string) {
	if !models.CanManageUsers(user) {
		d.answer(cb.ID, "Нет доступа")
		return
	}
	d.answer(cb.ID, "")
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	page := pageArg(parts, 1)

	users, err := db.ListUsers(ctx, d.DB)
	if err != nil {
		d.Log.Errorw("список сотрудников в боте", "err", err)
		return
	}
	if len(users) == 0 {
		d.edit(chatID, msgID, "👥 <b>Сотрудники</b>\n\nПока никого нет.",
			tgbotapi.NewInlineKeyboardMarkup(backToMenuRow()))
		return
	}

	pages := totalPages(len(users), botPageSize)
	if page > pages {
		page = pages
	}
	from := (page - 1) * botPageSize
	to := from + botPageSize
	if to > len(users) {
		to = len(users)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>Сотрудники (%d)</b>\n", len(users))
	if pages > 1 {
		fmt.Fprintf(&sb, "Страница %d из %d\n", page, pages)
	}
	sb.WriteString("\n")
	for i := from; i < to; i++ {
		u := &users[i]
		mark := "✅"
		if !u.IsActive {
			mark = "🚫"
		}
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		fmt.Fprintf(&sb, "%s <b>%s</b> — %s\n", mark, name, u.Role.Label())
		if u.SchoolName != "" {
			fmt.Fprintf(&sb, "  🏫 %s\n", u.SchoolName)
		}
		sb.WriteString("\n")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if pr := pagerRow("users", page, pages); len(pr) > 0 {
		rows = append(rows, pr)
	}
	rows = append(rows, backToMenuRow())
	d.edit(chatID, msgID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}
