package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anonmektep/portal/internal/models"
)

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

// mainMenuKeyboard собирает меню по роли. Учитель видит только свою
// школу, администраторы дополнительно районные обращения и реестры.
func mainMenuKeyboard(user *models.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if user.Role == models.Teacher {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("📊 Статистика школы", "stats:school")),
		)
	} else {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(btn("📊 Общая статистика", "stats:all")),
			tgbotapi.NewInlineKeyboardRow(btn("🏢 Обращения в районный отдел", "list:general:1")),
		)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(btn("📝 Новые", "list:new:1")),
		tgbotapi.NewInlineKeyboardRow(btn("⏳ В работе", "list:in_progress:1")),
		tgbotapi.NewInlineKeyboardRow(btn("✅ Решенные", "list:resolved:1")),
	)

	if models.CanManageSchools(user) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🏫 Школы", "schools:1")))
	}
	if models.CanManageUsers(user) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("👥 Сотрудники", "users:1")))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn("🔄 Обновить", "menu")))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backToMenuRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(btn("🔙 Назад", "menu"))
}

// pagerRow — строка листания. Страницы с единицы, пустая строка при
// единственной странице.
func pagerRow(prefix string, page, pages int) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, btn("⬅️", callbackPage(prefix, page-1)))
	}
	if page < pages {
		row = append(row, btn("➡️", callbackPage(prefix, page+1)))
	}
	return row
}
